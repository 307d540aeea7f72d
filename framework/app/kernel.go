// Package app is the application kernel: an IoC container plus the provider
// registry, booted and served the way Laravel's bootstrap/app.php does.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/km-arc/go-laravel-db/framework/config"
	"github.com/km-arc/go-laravel-db/framework/container"
	"github.com/km-arc/go-laravel-db/framework/dbcomponent"
	"github.com/km-arc/go-laravel-db/framework/logger"
	"github.com/km-arc/go-laravel-db/framework/providers"
	"github.com/km-arc/go-laravel-db/framework/routing"
)

// Version is reported by Application.Version.
const Version = "0.2.0"

// Application is the top-level application container.
// It embeds the IoC Container and ProviderRegistry so user code can
// call app.Bind(), app.Singleton(), app.Register() directly,
// exactly like $app in Laravel's bootstrap/app.php.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
}

// New creates the application and registers the core providers
// (config, logger, metrics, router). envFiles are passed to config.Load.
func New(envFiles ...string) (*Application, error) {
	c := container.New()
	registry := container.NewProviderRegistry(c)

	app := &Application{
		Container: c,
		Providers: registry,
	}

	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{EnvFiles: envFiles},
		&providers.LoggerServiceProvider{},
		&providers.MetricsServiceProvider{},
		&providers.RoutingServiceProvider{},
	} {
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot(ctx context.Context) error {
	return a.Providers.Boot(ctx)
}

// Start boots the application if needed and starts every Lifecycle provider.
func (a *Application) Start(ctx context.Context) error {
	if !a.Providers.Booted() {
		if err := a.Boot(ctx); err != nil {
			return err
		}
	}
	return a.Providers.Start(ctx)
}

// Stop stops Lifecycle providers in reverse order.
func (a *Application) Stop(ctx context.Context) error {
	return a.Providers.Stop(ctx)
}

// Run starts the application and serves HTTP on APP_PORT until ctx is done.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+a.Config().App.Port)
	if err != nil {
		return fmt.Errorf("error listening: %w", err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener. On return the server has shut down
// and the providers have been stopped, both within APP_SHUTDOWN_TIMEOUT.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	if err := a.Start(ctx); err != nil {
		_ = ln.Close()
		return err
	}

	cfg := a.Config()
	log := a.Logger()
	srv := &http.Server{
		Handler:           a.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()
	log.Info().Str("func", "*Application.Serve").
		Str("addr", ln.Addr().String()).
		Str("env", cfg.App.Env).
		Msgf("%s running", cfg.App.Name)

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Err(err).Str("func", "*Application.Serve").Msg("error shutting down http server")
		runErr = errors.Join(runErr, err)
	}
	if err := a.Stop(shutdownCtx); err != nil {
		log.Err(err).Str("func", "*Application.Serve").Msg("error stopping providers")
		runErr = errors.Join(runErr, err)
	}
	log.Info().Str("func", "*Application.Serve").Msg("application stopped")
	return runErr
}

// ── Typed accessors ───────────────────────────────────────────────────────────

// Config resolves *config.Config from the container.
func (a *Application) Config() *config.Config {
	return container.Resolve[*config.Config](a.Container, "config")
}

// Logger resolves *logger.Logger from the container.
func (a *Application) Logger() *logger.Logger {
	return container.Resolve[*logger.Logger](a.Container, "logger")
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() *routing.Router {
	return container.Resolve[*routing.Router](a.Container, "router")
}

// Database resolves the database component registered by
// providers.DatabaseServiceProvider.
func (a *Application) Database() *dbcomponent.Component {
	return container.Resolve[*dbcomponent.Component](a.Container, dbcomponent.ComponentKey)
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Config().IsProduction() }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config().App.Debug }
func (a *Application) Version() string     { return Version }
