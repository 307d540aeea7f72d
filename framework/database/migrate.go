package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pressly/goose/v3"

	"github.com/km-arc/go-laravel-db/framework/logger"
)

// Migrate applies every pending goose migration found in dir. fsys may be
// nil to read from the OS filesystem (e.g. an embed.FS in production, a
// directory during development). Each call uses its own goose provider, so
// clients with different dialects can migrate concurrently.
//
// Applied migrations are logged through the logger carried by ctx.
func Migrate(ctx context.Context, db *sql.DB, dialect string, fsys fs.FS, dir string) error {
	if db == nil {
		return errors.New("migration error: db is nil")
	}

	switch goose.Dialect(dialect) {
	case goose.DialectPostgres, goose.DialectSQLite3:
	default:
		return fmt.Errorf("migration error setting dialect for db: unsupported dialect %q", dialect)
	}

	var migrations fs.FS
	if fsys == nil {
		migrations = os.DirFS(dir)
	} else {
		sub, err := fs.Sub(fsys, dir)
		if err != nil {
			return fmt.Errorf("migration error opening %s: %w", dir, err)
		}
		migrations = sub
	}

	provider, err := goose.NewProvider(goose.Dialect(dialect), db, migrations)
	if err != nil {
		if errors.Is(err, goose.ErrNoMigrations) {
			return fmt.Errorf("migration error: %w in %s", ErrNoMigrations, dir)
		}
		return fmt.Errorf("migration error: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	log := logger.FromContext(ctx)
	for _, r := range results {
		log.Info().Str("func", "Migrate").
			Int64("version", r.Source.Version).
			Str("path", r.Source.Path).
			Dur("duration", r.Duration).
			Msg("migration applied")
	}
	return nil
}
