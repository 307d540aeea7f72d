package dbcomponent

import (
	"errors"
	"fmt"

	"github.com/km-arc/go-laravel-db/framework/container"
)

var (
	// ErrClientConflict is returned by New when the client passed in differs
	// from the one already bound at ClientKey.
	ErrClientConflict = errors.New("dbcomponent: a different database client is already bound")

	// ErrClientBindingNotConstant is returned by Init when ClientKey is bound
	// with a transient factory.
	ErrClientBindingNotConstant = errors.New("dbcomponent: database client binding must be a singleton or constant")

	// ErrMiddlewareBindingNotConstant is returned when a middleware binding
	// is transient. The client is left untouched.
	ErrMiddlewareBindingNotConstant = errors.New("dbcomponent: middleware binding must be a singleton or constant")

	// ErrInvalidOptions wraps validation failures of merged Options.
	ErrInvalidOptions = errors.New("dbcomponent: invalid options")

	// ErrNotMiddleware is returned when a binding on the extension point does
	// not resolve to a database.Middleware.
	ErrNotMiddleware = errors.New("dbcomponent: binding is not a database middleware")
)

// BindingScopeError reports a binding registered with the wrong scope.
//
//	var scopeErr *dbcomponent.BindingScopeError
//	if errors.As(err, &scopeErr) { log.Printf("%s is %s", scopeErr.Key, scopeErr.Scope) }
type BindingScopeError struct {
	Key   string
	Scope container.Scope
	Err   error
}

func (e *BindingScopeError) Error() string {
	return fmt.Sprintf("%v: [%s] is bound as %s", e.Err, e.Key, e.Scope)
}

func (e *BindingScopeError) Unwrap() error { return e.Err }
