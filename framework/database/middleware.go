package database

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/km-arc/go-laravel-db/framework/logger"
)

// Action names the model operation being executed.
type Action string

const (
	ActionFindMany  Action = "findMany"
	ActionFindFirst Action = "findFirst"
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionDelete    Action = "delete"
	ActionCount     Action = "count"
)

// Args carries the arguments of a model operation. Middleware may rewrite
// them before calling next.
type Args struct {
	Where   map[string]any
	Data    map[string]any
	Select  []string
	OrderBy []string
	Take    uint64
	Skip    uint64
}

// Params describes one model operation travelling through the middleware chain.
type Params struct {
	ID     string
	Model  string
	Action Action
	Args   Args
}

// Handler executes an operation; the innermost Handler runs the SQL.
type Handler func(ctx context.Context, p *Params) (any, error)

// Middleware wraps every model operation. It must call next to continue
// the chain, and may inspect or replace the result. Middleware registered
// first runs outermost.
type Middleware func(ctx context.Context, p *Params, next Handler) (any, error)

// chain folds mws around final.
func chain(mws []Middleware, final Handler) Handler {
	h := final
	for i := len(mws) - 1; i >= 0; i-- {
		mw, next := mws[i], h
		h = func(ctx context.Context, p *Params) (any, error) {
			return mw(ctx, p, next)
		}
	}
	return h
}

// ── Built-in middleware ──────────────────────────────────────────────────────

// LoggingMiddleware logs every operation with its duration. Failures are
// logged at error level, successes at debug level.
func LoggingMiddleware(log *logger.Logger) Middleware {
	return func(ctx context.Context, p *Params, next Handler) (any, error) {
		start := time.Now()
		res, err := next(ctx, p)

		ev := log.Debug()
		if err != nil && !errors.Is(err, ErrRecordNotFound) {
			ev = log.Err(err)
		}
		ev.Str("query_id", p.ID).
			Str("model", p.Model).
			Str("action", string(p.Action)).
			Dur("duration", time.Since(start)).
			Msg("database query")
		return res, err
	}
}

// MetricsMiddleware counts operations by model, action and outcome and
// observes their latency. Collectors already registered on reg under the
// same names are reused.
func MetricsMiddleware(reg prometheus.Registerer, namespace string) (Middleware, error) {
	queries := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "queries_total",
			Help:      "Total number of database model operations",
		},
		[]string{"model", "action", "outcome"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database model operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"model", "action"},
	)

	var err error
	if queries, err = registerOrReuse(reg, queries); err != nil {
		return nil, err
	}
	if duration, err = registerOrReuse(reg, duration); err != nil {
		return nil, err
	}

	return func(ctx context.Context, p *Params, next Handler) (any, error) {
		start := time.Now()
		res, err := next(ctx, p)

		duration.WithLabelValues(p.Model, string(p.Action)).Observe(time.Since(start).Seconds())
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		queries.WithLabelValues(p.Model, string(p.Action), outcome).Inc()
		return res, err
	}, nil
}

func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}
