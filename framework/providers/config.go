package providers

import (
	"github.com/km-arc/go-laravel-db/framework/config"
	"github.com/km-arc/go-laravel-db/framework/container"
)

// ConfigServiceProvider loads the application configuration from .env and
// the environment and binds it into the container as "config".
//
// Bound abstracts:
//   - "config"         → *config.Config
//   - "configuration"  → alias of "config"
//
// Laravel equivalent:
//
//	// Illuminate\Foundation\Bootstrap\LoadConfiguration
//	$app->singleton('config', fn() => new Repository($items));
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

// Register loads the configuration eagerly so parse errors surface here.
func (p *ConfigServiceProvider) Register(app *container.Container) error {
	cfg, err := config.Load(p.EnvFiles...)
	if err != nil {
		return err
	}
	if err = app.Instance("config", cfg); err != nil {
		return err
	}
	return app.Alias("config", "configuration")
}
