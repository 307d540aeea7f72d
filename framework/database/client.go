package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"maps"
	"slices"
	"sync"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/km-arc/go-laravel-db/framework/logger"
)

// Client is a small database client over database/sql. It owns one *sql.DB,
// an ordered middleware chain and one Model accessor per configured model.
//
// Model operations connect on first use when Connect has not been called,
// so a client can be started lazily.
type Client struct {
	opts   ClientOptions
	logger *logger.Logger

	open    func(driver, dsn string) (*sql.DB, error)
	migrate func(ctx context.Context, db *sql.DB, dialect string, fsys fs.FS, dir string) error

	mu          sync.RWMutex
	db          *sql.DB
	middlewares []Middleware
	models      map[string]*Model
	builder     sq.StatementBuilderType
}

// New builds a Client without connecting.
func New(opts ClientOptions, log *logger.Logger) (*Client, error) {
	if _, err := opts.dialect(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	c := &Client{
		opts:    opts,
		logger:  log.Component("database"),
		open:    sql.Open,
		migrate: Migrate,
		models:  make(map[string]*Model, len(opts.Models)),
		builder: sq.StatementBuilder.PlaceholderFormat(opts.placeholder()),
	}
	for name, table := range opts.Models {
		if table == "" {
			table = name
		}
		c.models[name] = &Model{client: c, name: name, table: table}
	}
	return c, nil
}

// NewFromDB builds a Client over a pool opened elsewhere. Connect pings it
// and applies migrations; Disconnect closes it, after which the client
// cannot reconnect.
func NewFromDB(db *sql.DB, opts ClientOptions, log *logger.Logger) (*Client, error) {
	c, err := New(opts, log)
	if err != nil {
		return nil, err
	}
	c.open = func(string, string) (*sql.DB, error) { return db, nil }
	return c, nil
}

// Connect opens the connection, pings it and applies migrations when
// configured. Calling Connect on a connected client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked(ctx)
}

func (c *Client) connectLocked(ctx context.Context) error {
	if c.db != nil {
		return nil
	}

	db, err := c.open(c.opts.Driver, c.opts.DSN)
	if err != nil {
		c.logger.Err(err).Str("func", "*Client.Connect").Msg("error opening database")
		return fmt.Errorf("%w: %w", ErrConnecting, err)
	}
	if c.opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.opts.MaxOpenConns)
	}
	if c.opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.opts.MaxIdleConns)
	}
	if c.opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(c.opts.ConnMaxLifetime)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		c.logger.Err(err).Str("func", "*Client.Connect").Msg("error connecting database (ping)")
		return fmt.Errorf("%w: %w", ErrConnecting, err)
	}

	if c.opts.MigrationsDir != "" {
		dialect, _ := c.opts.dialect()
		migrateCtx := c.logger.Component("migrations").WithContext(ctx)
		if err = c.migrate(migrateCtx, db, dialect, c.opts.Migrations, c.opts.MigrationsDir); err != nil {
			_ = db.Close()
			c.logger.Err(err).Str("func", "*Client.Connect").Msg("error applying migrations")
			return err
		}
	}

	c.db = db
	c.logger.Info().Str("func", "*Client.Connect").Str("driver", c.opts.Driver).Msg("connected to database successfully")
	return nil
}

// Disconnect closes the connection. Calling it on a disconnected client is a no-op.
func (c *Client) Disconnect(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	if err != nil {
		c.logger.Err(err).Str("func", "*Client.Disconnect").Msg("error closing database")
		return fmt.Errorf("error closing database: %w", err)
	}
	c.logger.Info().Str("func", "*Client.Disconnect").Msg("disconnected from database")
	return nil
}

// Connected reports whether the client holds an open connection.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db != nil
}

// Ping checks the connection without connecting lazily.
func (c *Client) Ping(ctx context.Context) error {
	c.mu.RLock()
	db := c.db
	c.mu.RUnlock()
	if db == nil {
		return ErrNotConnected
	}
	return db.PingContext(ctx)
}

// Use appends mw to the middleware chain. It applies to operations started
// after the call.
func (c *Client) Use(mw Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middlewares = append(c.middlewares, mw)
}

// ModelNames returns the configured model names, sorted.
func (c *Client) ModelNames() []string {
	return slices.Sorted(maps.Keys(c.models))
}

// Model returns the accessor for name.
func (c *Client) Model(name string) (*Model, error) {
	m, ok := c.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	return m, nil
}

// conn returns the open *sql.DB, connecting on first use.
func (c *Client) conn(ctx context.Context) (*sql.DB, error) {
	c.mu.RLock()
	db := c.db
	c.mu.RUnlock()
	if db != nil {
		return db, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.connectLocked(ctx); err != nil {
		return nil, err
	}
	return c.db, nil
}

// dispatch runs final behind the middleware chain registered at call time.
func (c *Client) dispatch(ctx context.Context, p *Params, final Handler) (any, error) {
	c.mu.RLock()
	mws := slices.Clone(c.middlewares)
	c.mu.RUnlock()
	return chain(mws, final)(ctx, p)
}

func (c *Client) queryRecords(ctx context.Context, q sq.Sqlizer) ([]Record, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingQuery, err)
	}
	c.logQuery(query, args)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	records := make([]Record, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err = rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}

		rec := make(Record, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				rec[col] = string(b)
				continue
			}
			rec[col] = values[i]
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, classify(err)
	}
	return records, nil
}

func (c *Client) exec(ctx context.Context, q sq.Sqlizer) (int64, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return 0, err
	}
	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingQuery, err)
	}
	c.logQuery(query, args)

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classify(err)
	}
	return res.RowsAffected()
}

func (c *Client) logQuery(query string, args []any) {
	if c.opts.LogQueries {
		c.logger.Debug().Str("sql", query).Interface("args", args).Msg("executing statement")
	}
}
