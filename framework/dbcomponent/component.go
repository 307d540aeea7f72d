package dbcomponent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/km-arc/go-laravel-db/framework/container"
	"github.com/km-arc/go-laravel-db/framework/logger"
)

// Component coordinates the database client with the container: it creates
// the client and its options exactly once, locks their bindings and attaches
// middleware contributed through the extension point.
//
// Bind handlers run on the goroutine that tagged the middleware and take the
// component's mutex, so middleware must not be registered from inside a
// Client call made by the component.
type Component struct {
	app       *container.Container
	logger    *logger.Logger
	newClient ClientFactory

	mu       sync.Mutex
	state    State
	options  Options
	client   Client
	view     *container.View
	cancel   func()
	attached map[string]bool
}

// Option customises a Component at construction.
type Option func(*Component)

// WithClientFactory replaces the factory Init uses when no client is bound.
func WithClientFactory(f ClientFactory) Option {
	return func(c *Component) { c.newClient = f }
}

// WithLogger sets the logger. By default the "logger" binding is used when
// present, otherwise logging is discarded.
func WithLogger(log *logger.Logger) Option {
	return func(c *Component) { c.logger = log.Component("dbcomponent") }
}

// New creates a Component over app.
//
// When client is non-nil it must be the value bound at ClientKey, if any;
// otherwise it is bound there as a constant. opts is merged over the options
// already bound at OptionsKey, which are merged over DefaultOptions. The
// result is validated and bound at OptionsKey.
func New(app *container.Container, client Client, opts Options, options ...Option) (*Component, error) {
	if app == nil {
		return nil, errors.New("dbcomponent: container is nil")
	}

	c := &Component{
		app:       app,
		logger:    loggerFrom(app),
		newClient: NewDatabaseClient,
		attached:  make(map[string]bool),
	}
	for _, o := range options {
		o(c)
	}

	if client != nil {
		if err := c.adoptClient(client); err != nil {
			return nil, err
		}
	}

	layers := make([]Options, 0, 2)
	bound, err := container.TryResolve[Options](app, OptionsKey)
	switch {
	case err == nil:
		layers = append(layers, bound)
	case !errors.Is(err, container.ErrNotBound):
		return nil, fmt.Errorf("resolving %s: %w", OptionsKey, err)
	}
	merged, err := mergeOptions(append(layers, opts)...)
	if err != nil {
		return nil, err
	}
	if err = merged.Validate(); err != nil {
		return nil, err
	}
	if err = app.Instance(OptionsKey, merged); err != nil {
		return nil, err
	}
	c.options = merged

	c.view = app.View(MiddlewareExtensionPoint)
	c.cancel = c.view.OnBind(c.onMiddlewareBind)

	c.logger.Debug().Str("func", "New").
		Str("driver", merged.Client.Driver).
		Bool("lazy_connect", merged.Lazy()).
		Msg("database component created")
	return c, nil
}

func (c *Component) adoptClient(client Client) error {
	if _, ok := c.app.GetBinding(ClientKey); !ok {
		return c.app.Instance(ClientKey, client)
	}
	v, err := c.app.Get(ClientKey)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", ClientKey, err)
	}
	if bound, ok := v.(Client); !ok || bound != client {
		return ErrClientConflict
	}
	return nil
}

// Init resolves or builds the client, locks the options and client
// bindings, attaches pending middleware in registration order and binds the
// model accessors. It is a no-op once the component is initialized.
func (c *Component) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initLocked(ctx)
}

func (c *Component) initLocked(_ context.Context) error {
	if c.state.Initialized() {
		return nil
	}

	client, err := c.resolveClient()
	if err != nil {
		c.logger.Err(err).Str("func", "*Component.Init").Msg("error resolving database client")
		return err
	}
	for _, key := range []string{OptionsKey, ClientKey} {
		if err = c.app.Lock(key); err != nil {
			return err
		}
	}
	c.client = client

	for _, key := range c.view.Keys() {
		info, ok := c.app.GetBinding(key)
		if !ok {
			continue
		}
		if err = c.attachLocked(info); err != nil {
			c.logger.Err(err).Str("func", "*Component.Init").Str("key", key).Msg("error attaching middleware")
			return err
		}
	}

	for _, name := range client.ModelNames() {
		model, err := client.Model(name)
		if err != nil {
			return fmt.Errorf("resolving model %q: %w", name, err)
		}
		if err = BindModel(c.app, name, model, c.options.Models); err != nil {
			return err
		}
	}

	c.state = StateInitialized
	c.logger.Info().Str("func", "*Component.Init").
		Int("middleware", len(c.attached)).
		Strs("models", client.ModelNames()).
		Msg("database component initialized")
	return nil
}

func (c *Component) resolveClient() (Client, error) {
	if info, ok := c.app.GetBinding(ClientKey); ok {
		if !info.Scope.Shared() {
			return nil, &BindingScopeError{Key: ClientKey, Scope: info.Scope, Err: ErrClientBindingNotConstant}
		}
		return container.TryResolve[Client](c.app, ClientKey)
	}

	client, err := c.newClient(c.options.Client, c.logger)
	if err != nil {
		return nil, fmt.Errorf("creating database client: %w", err)
	}
	if err = c.app.Instance(ClientKey, client); err != nil {
		return nil, err
	}
	return client, nil
}

// onMiddlewareBind runs for every binding that joins the extension point.
// Before Init the binding is only locked; it is attached when Init drains
// the view.
func (c *Component) onMiddlewareBind(info container.BindingInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Initialized() {
		return c.app.Lock(info.Key)
	}
	if err := c.attachLocked(info); err != nil {
		c.logger.Err(err).Str("func", "*Component.onMiddlewareBind").Str("key", info.Key).Msg("rejected middleware")
		return err
	}
	return nil
}

// attachLocked checks, resolves, attaches and locks one middleware binding.
// Nothing reaches the client unless every check passed.
func (c *Component) attachLocked(info container.BindingInfo) error {
	if c.attached[info.Key] {
		return nil
	}
	if !info.Scope.Shared() {
		return &BindingScopeError{Key: info.Key, Scope: info.Scope, Err: ErrMiddlewareBindingNotConstant}
	}
	mw, err := resolveMiddleware(c.app, info.Key)
	if err != nil {
		return err
	}

	c.client.Use(mw)
	c.attached[info.Key] = true
	c.logger.Debug().Str("key", info.Key).Msg("database middleware attached")
	return c.app.Lock(info.Key)
}

// Start initializes the component if needed and connects the client unless
// LazyConnect is set. A stopped component may be started again.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.initLocked(ctx); err != nil {
		return err
	}
	if c.options.Lazy() {
		c.state = StateStarted
		c.logger.Info().Str("func", "*Component.Start").Msg("lazy connect enabled, deferring connection")
		return nil
	}
	if err := c.client.Connect(ctx); err != nil {
		return err
	}
	c.state = StateStarted
	return nil
}

// Stop disconnects the client. It is a no-op before Init.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Initialized() {
		return nil
	}
	if err := c.client.Disconnect(ctx); err != nil {
		return err
	}
	c.state = StateStopped
	return nil
}

// Close unsubscribes the component from the middleware extension point.
// Middleware registered afterwards is neither locked nor attached.
func (c *Component) Close() {
	c.cancel()
	c.view.Close()
}

// State returns the current lifecycle state.
func (c *Component) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Client returns the managed client, or nil before Init.
func (c *Component) Client() Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client
}

// Options returns the merged options.
func (c *Component) Options() Options {
	return c.options
}

func loggerFrom(app *container.Container) *logger.Logger {
	log, err := container.TryResolve[*logger.Logger](app, "logger")
	if err != nil || log == nil {
		return logger.Nop()
	}
	return log.Component("dbcomponent")
}
