package dbcomponent

import (
	"context"
	"fmt"

	"github.com/km-arc/go-laravel-db/framework/container"
	"github.com/km-arc/go-laravel-db/framework/database"
)

// RegisterMiddleware contributes mw to the database middleware extension
// point under MiddlewareKey(name). Before Init it is queued and attached in
// registration order; after Init it is attached right away. Either way the
// binding ends up locked.
//
//	err := dbcomponent.RegisterMiddleware(app, "audit", func(ctx context.Context, p *database.Params, next database.Handler) (any, error) {
//	    audit.Record(p.Model, p.Action)
//	    return next(ctx, p)
//	})
func RegisterMiddleware(app *container.Container, name string, mw database.Middleware) error {
	key := MiddlewareKey(name)
	if err := app.Instance(key, mw); err != nil {
		return err
	}
	return app.Tag([]string{key}, MiddlewareExtensionPoint)
}

func asMiddleware(v any) (database.Middleware, bool) {
	switch mw := v.(type) {
	case database.Middleware:
		return mw, mw != nil
	case func(context.Context, *database.Params, database.Handler) (any, error):
		return mw, mw != nil
	default:
		return nil, false
	}
}

func resolveMiddleware(app *container.Container, key string) (database.Middleware, error) {
	v, err := app.Get(key)
	if err != nil {
		return nil, err
	}
	mw, ok := asMiddleware(v)
	if !ok {
		return nil, fmt.Errorf("%w: [%s] resolved to %T", ErrNotMiddleware, key, v)
	}
	return mw, nil
}
