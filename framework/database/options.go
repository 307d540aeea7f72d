package database

import (
	"fmt"
	"io/fs"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Supported drivers, as registered with database/sql.
const (
	DriverPgx    = "pgx"
	DriverSQLite = "sqlite3"
)

// ClientOptions configures a Client. The zero value of every numeric field
// leaves the database/sql default in place.
type ClientOptions struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Models maps a model name to its table, e.g. {"user": "users"}.
	// An empty table defaults to the model name.
	Models map[string]string

	// MigrationsDir, when set, is applied with goose on Connect. Migrations
	// is the filesystem it is read from; nil means the OS filesystem.
	MigrationsDir string
	Migrations    fs.FS

	// LogQueries makes the client log every statement at debug level.
	LogQueries bool
}

func (o ClientOptions) dialect() (string, error) {
	switch o.Driver {
	case DriverPgx:
		return "postgres", nil
	case DriverSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, o.Driver)
	}
}

func (o ClientOptions) placeholder() sq.PlaceholderFormat {
	if o.Driver == DriverPgx {
		return sq.Dollar
	}
	return sq.Question
}
