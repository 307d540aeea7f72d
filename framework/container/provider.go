package container

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider mirrors Laravel's Illuminate\Support\ServiceProvider.
//
// Register() binds services. Boot() is called after ALL providers have been
// registered, making it safe to resolve other bindings inside Boot().
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) error {
//	    return app.Singleton("mailer", func(c *container.Container) any {
//	        return mail.New(container.Resolve[*config.Config](c, "config"))
//	    })
//	}
//
//	func (p *AppServiceProvider) Boot(ctx context.Context, app *container.Container) error {
//	    logger := container.Resolve[*logger.Logger](app, "logger")
//	    logger.Info().Msg("application booted")
//	    return nil
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	// Do NOT resolve other bindings here. Use Boot() for that.
	Register(app *Container) error

	// Boot is called after all providers are registered.
	// Safe to resolve and use any binding here.
	Boot(ctx context.Context, app *Container) error

	// Provides returns the list of abstract keys this provider registers.
	// Used for deferred (lazy) provider loading.
	//
	//	// Laravel: public function provides(): array { return [Cache::class]; }
	Provides() []string

	// IsDeferred returns true if this provider should be loaded lazily,
	// only when one of its Provides() abstracts is first resolved.
	//
	//	// Laravel: protected $defer = true;
	IsDeferred() bool
}

// Lifecycle is implemented by eager providers that own long-lived resources
// (connections, workers). The registry starts them in registration order
// and stops them in reverse order.
type Lifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot(), Provides(), and IsDeferred().
//
//	type MyProvider struct{ container.BaseProvider }
//	func (p *MyProvider) Register(app *container.Container) error { ... }
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ context.Context, _ *Container) error { return nil }
func (p *BaseProvider) Provides() []string                        { return nil }
func (p *BaseProvider) IsDeferred() bool                          { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration, booting and start/stop of
// ServiceProviders, including deferred (lazy) providers.
//
// It mirrors the behaviour of Laravel's Application::registerConfiguredProviders
// and Application::bootProviders.
type ProviderRegistry struct {
	app        *Container
	eager      []ServiceProvider
	deferred   map[string]ServiceProvider // abstract → provider
	registered map[ServiceProvider]bool
	started    []Lifecycle
	booted     bool
	bootCtx    context.Context
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		deferred:   make(map[string]ServiceProvider),
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method (unless deferred).
// A provider registered after Boot() is booted immediately.
//
//	// Laravel: $app->register(new AppServiceProvider($app))
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		for _, abstract := range provider.Provides() {
			r.deferred[abstract] = provider
		}
		return r.interceptDeferred(provider)
	}

	if err := provider.Register(r.app); err != nil {
		return fmt.Errorf("registering %T: %w", provider, err)
	}
	r.eager = append(r.eager, provider)

	if r.booted {
		if err := provider.Boot(r.bootCtx, r.app); err != nil {
			return fmt.Errorf("booting %T: %w", provider, err)
		}
	}
	return nil
}

// interceptDeferred registers a lazy binding for each deferred abstract.
// The first Make() call triggers real registration + boot. Factories cannot
// return errors, so a failing deferred provider panics on first use.
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) error {
	for _, abstract := range provider.Provides() {
		abs := abstract
		err := r.app.Bind(abs, func(c *Container) any {
			if _, pending := r.deferred[abs]; pending {
				for _, other := range provider.Provides() {
					delete(r.deferred, other)
				}
				if err := provider.Register(c); err != nil {
					panic(fmt.Sprintf("container: deferred provider %T: %v", provider, err))
				}
				if r.booted {
					if err := provider.Boot(r.bootCtx, c); err != nil {
						panic(fmt.Sprintf("container: deferred provider %T: %v", provider, err))
					}
				}
			}
			return c.Make(abs)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Boot calls Boot() on all eager providers, in registration order.
// Must be called after ALL providers have been registered.
//
//	// Laravel: $app->boot()
func (r *ProviderRegistry) Boot(ctx context.Context) error {
	if r.booted {
		return nil
	}
	r.booted = true
	r.bootCtx = ctx
	for _, provider := range r.eager {
		if err := provider.Boot(ctx, r.app); err != nil {
			return fmt.Errorf("booting %T: %w", provider, err)
		}
	}
	return nil
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.eager }

// Start starts every eager provider implementing Lifecycle. On failure the
// providers already started are stopped again before the error is returned.
func (r *ProviderRegistry) Start(ctx context.Context) error {
	for _, provider := range r.eager {
		lc, ok := provider.(Lifecycle)
		if !ok || slices.Contains(r.started, lc) {
			continue
		}
		if err := lc.Start(ctx); err != nil {
			return errors.Join(fmt.Errorf("starting %T: %w", provider, err), r.Stop(ctx))
		}
		r.started = append(r.started, lc)
	}
	return nil
}

// Stop stops started providers in reverse start order and joins their errors.
func (r *ProviderRegistry) Stop(ctx context.Context) error {
	var errs []error
	for i := len(r.started) - 1; i >= 0; i-- {
		if err := r.started[i].Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stopping %T: %w", r.started[i], err))
		}
	}
	r.started = nil
	return errors.Join(errs...)
}
