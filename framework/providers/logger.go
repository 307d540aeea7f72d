package providers

import (
	"io"

	"github.com/km-arc/go-laravel-db/framework/config"
	"github.com/km-arc/go-laravel-db/framework/container"
	"github.com/km-arc/go-laravel-db/framework/logger"
)

// LoggerServiceProvider binds the application logger.
//
// Bound abstracts:
//   - "logger"  → *logger.Logger, role APP_NAME, debug level when APP_DEBUG
//
// Laravel equivalent:
//
//	// Illuminate\Log\LogServiceProvider
//	$app->singleton('log', fn($app) => new LogManager($app));
type LoggerServiceProvider struct {
	container.BaseProvider
	// Writer receives log output; stdout when nil.
	Writer io.Writer
}

func (p *LoggerServiceProvider) Register(app *container.Container) error {
	w := p.Writer
	return app.Singleton("logger", func(c *container.Container) any {
		cfg := container.Resolve[*config.Config](c, "config")
		if w == nil {
			return logger.NewLogger(cfg.App.Name, cfg.App.Debug)
		}
		return logger.New(w, cfg.App.Name, cfg.App.Debug)
	})
}
