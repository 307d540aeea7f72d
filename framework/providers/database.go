package providers

import (
	"context"
	"io/fs"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/km-arc/go-laravel-db/framework/config"
	"github.com/km-arc/go-laravel-db/framework/container"
	"github.com/km-arc/go-laravel-db/framework/database"
	"github.com/km-arc/go-laravel-db/framework/dbcomponent"
	"github.com/km-arc/go-laravel-db/framework/routing"
)

// DatabaseServiceProvider wires the database component into the application.
//
// Bound abstracts:
//   - "database.options"     → dbcomponent.Options (from DB_* config, locked after boot)
//   - "database.client"      → dbcomponent.Client (locked after boot)
//   - "database.component"   → *dbcomponent.Component
//   - "database.models.<m>"  → *database.Model, one per DB_MODELS entry
//   - "database.middleware.logging" / ".metrics" → built-in middleware
//
// Routes (when a router is bound):
//   - GET  /health/database
//   - GET  /database/models, /database/models/{model}, /database/models/{model}/count
//   - POST /database/models/{model}
//
// Register resolves "config", so ConfigServiceProvider must be registered first.
type DatabaseServiceProvider struct {
	container.BaseProvider

	// Client, when set, is used instead of a client built from config.
	Client dbcomponent.Client
	// Options are merged over the values read from config.
	Options dbcomponent.Options
	// Migrations is the filesystem DB_MIGRATIONS_DIR is read from; nil
	// means the OS filesystem.
	Migrations fs.FS
	// MetricsNamespace prefixes the query metrics; "app" when empty.
	MetricsNamespace string

	component *dbcomponent.Component
}

// OptionsFromConfig maps DB_* settings onto component options.
func OptionsFromConfig(cfg config.DBConfig) dbcomponent.Options {
	return dbcomponent.Options{
		Client: database.ClientOptions{
			Driver:          cfg.Driver,
			DSN:             cfg.DSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			Models:          cfg.Models,
			MigrationsDir:   cfg.MigrationsDir,
			LogQueries:      cfg.LogQueries,
		},
		LazyConnect: dbcomponent.Bool(cfg.LazyConnect),
		Models: dbcomponent.ModelOptions{
			Namespace: cfg.ModelNamespace,
			Tag:       cfg.ModelTag,
		},
	}
}

func (p *DatabaseServiceProvider) Register(app *container.Container) error {
	cfg, err := container.TryResolve[*config.Config](app, "config")
	if err != nil {
		return err
	}

	if !app.Bound(dbcomponent.OptionsKey) {
		fromConfig := OptionsFromConfig(cfg.DB)
		fromConfig.Client.Migrations = p.Migrations
		if err = app.Instance(dbcomponent.OptionsKey, fromConfig); err != nil {
			return err
		}
	}

	log := loggerOrNop(app)

	comp, err := dbcomponent.New(app, p.Client, p.Options, dbcomponent.WithLogger(log))
	if err != nil {
		return err
	}
	p.component = comp
	return app.Instance(dbcomponent.ComponentKey, comp)
}

// Boot contributes the built-in middleware, initializes the component and
// mounts the database routes.
func (p *DatabaseServiceProvider) Boot(ctx context.Context, app *container.Container) error {
	log := loggerOrNop(app)
	if err := dbcomponent.RegisterMiddleware(app, "logging", database.LoggingMiddleware(log.Component("database"))); err != nil {
		return err
	}

	if reg, err := container.TryResolve[*prometheus.Registry](app, MetricsRegistryKey); err == nil {
		ns := p.MetricsNamespace
		if ns == "" {
			ns = "app"
		}
		mw, err := database.MetricsMiddleware(reg, ns)
		if err != nil {
			return err
		}
		if err = dbcomponent.RegisterMiddleware(app, "metrics", mw); err != nil {
			return err
		}
	}

	if err := p.component.Init(ctx); err != nil {
		return err
	}

	if router, err := container.TryResolve[*routing.Router](app, "router"); err == nil {
		newDatabaseController(app, p.component).routes(router)
	}
	return nil
}

// Start connects the database unless DB_LAZY_CONNECT is set.
func (p *DatabaseServiceProvider) Start(ctx context.Context) error {
	return p.component.Start(ctx)
}

// Stop disconnects the database.
func (p *DatabaseServiceProvider) Stop(ctx context.Context) error {
	return p.component.Stop(ctx)
}

// Component returns the component created by Register.
func (p *DatabaseServiceProvider) Component() *dbcomponent.Component { return p.component }
