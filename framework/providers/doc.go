// Package providers holds the framework's core service providers.
//
// Register them in this order; later providers resolve bindings of the
// earlier ones:
//
//	ConfigServiceProvider    "config"            *config.Config
//	LoggerServiceProvider    "logger"            *logger.Logger
//	MetricsServiceProvider   "metrics.registry"  *prometheus.Registry (deferred)
//	RoutingServiceProvider   "router"            *routing.Router
//	DatabaseServiceProvider  "database.component" *dbcomponent.Component
package providers
