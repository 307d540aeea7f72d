package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Sentinel errors returned by the client. Match them with errors.Is.
var (
	// ErrUnsupportedDriver is returned by New for a driver other than
	// DriverPgx or DriverSQLite.
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	// ErrNotConnected is returned by Ping before Connect or after Disconnect.
	ErrNotConnected = errors.New("database client is not connected")

	// ErrUnknownModel is returned by Client.Model for a name missing from
	// ClientOptions.Models.
	ErrUnknownModel = errors.New("unknown model")

	// ErrRecordNotFound is returned by FindFirst when nothing matches.
	ErrRecordNotFound = errors.New("record not found")

	// ErrUniqueViolation wraps driver errors for unique and primary key
	// constraint violations.
	ErrUniqueViolation = errors.New("unique constraint violation")

	// ErrUnexpectedResult is returned when a middleware replaces a result
	// with a value of the wrong type.
	ErrUnexpectedResult = errors.New("unexpected query result type")

	// ErrInvalidColumn is returned before any SQL is built when a column in
	// Args is not a plain identifier.
	ErrInvalidColumn = errors.New("invalid column name")

	// ErrNoMigrations is returned by Migrate when dir holds no migration files.
	ErrNoMigrations = errors.New("no migrations found")
)

// Low-level errors wrapped around driver failures.
var (
	ErrConnecting     = errors.New("error connecting database")
	ErrBuildingQuery  = errors.New("error building sql query")
	ErrExecutingQuery = errors.New("error executing sql query")
	ErrScanningRows   = errors.New("error scanning rows")
)

// classify maps driver errors onto the sentinel errors above, keeping the
// original error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", ErrRecordNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
		}
	}

	return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
}
