package providers

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/go-laravel-db/framework/container"
	"github.com/km-arc/go-laravel-db/framework/logger"
	"github.com/km-arc/go-laravel-db/framework/routing"
)

// MetricsRegistryKey is where MetricsServiceProvider binds its registry.
const MetricsRegistryKey = "metrics.registry"

// MetricsServiceProvider binds a Prometheus registry and serves it at
// /metrics. It is deferred: nothing is registered until MetricsRegistryKey
// is first resolved, e.g. by DatabaseServiceProvider.
//
// Bound abstracts:
//   - "metrics.registry"  → *prometheus.Registry
type MetricsServiceProvider struct {
	container.BaseProvider
}

func (p *MetricsServiceProvider) Register(app *container.Container) error {
	return app.Singleton(MetricsRegistryKey, func(c *container.Container) any {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		return reg
	})
}

// Boot mounts /metrics when a router is bound.
func (p *MetricsServiceProvider) Boot(_ context.Context, app *container.Container) error {
	router, err := container.TryResolve[*routing.Router](app, "router")
	if err != nil {
		return nil
	}
	reg, err := container.TryResolve[*prometheus.Registry](app, MetricsRegistryKey)
	if err != nil {
		return err
	}
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		ErrorLog:      promLogger{loggerOrNop(app)},
		ErrorHandling: promhttp.ContinueOnError,
	}))
	return nil
}

func (p *MetricsServiceProvider) Provides() []string { return []string{MetricsRegistryKey} }
func (p *MetricsServiceProvider) IsDeferred() bool   { return true }

// promLogger implements promhttp.Logger.
type promLogger struct {
	log *logger.Logger
}

func (l promLogger) Println(v ...any) {
	l.log.Error().Str("component", "metrics").Msgf("%v", v)
}

func loggerOrNop(app *container.Container) *logger.Logger {
	log, err := container.TryResolve[*logger.Logger](app, "logger")
	if err != nil {
		return logger.Nop()
	}
	return log
}
