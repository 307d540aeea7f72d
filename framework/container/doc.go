// Package container provides a Laravel-compatible IoC (Inversion of Control)
// container and Service Provider system for Go.
//
// # Overview
//
// The container manages the instantiation and lifecycle of your application's
// dependencies. It supports transient bindings, singletons, constants
// (pre-built instances), aliases, tags, extension points and decoration.
// Because Go has no runtime constructor reflection, auto-wiring is replaced
// by explicit factory functions.
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot(ctx), after which everything resolves
//  4. Start: registry.Start(ctx), Lifecycle providers connect
//  5. Serve requests
//  6. Stop: registry.Stop(ctx), in reverse order
//
// # Bindings
//
//	// Transient: new instance every Make()
//	c.Bind("Foo", func(c *container.Container) any { return &Foo{} })
//
//	// Singleton: created once, reused
//	c.Singleton("cache", func(c *container.Container) any {
//	    return cache.NewRedis(container.Resolve[*Config](c, "config"))
//	})
//
//	// Constant
//	c.Instance("config", myConfig)
//
// Registration methods return an error: a locked binding cannot be
// rebound, and bind handlers of an extension point may reject a binding.
//
// # Locks
//
//	c.Instance("database.options", opts)
//	c.Lock("database.options")
//	err := c.Instance("database.options", other) // errors.Is(err, container.ErrBindingLocked)
//
// # Resolving
//
//	raw := c.Make("cache")                          // panics when unbound
//	raw, err := c.Get("cache")                      // ErrNotBound when unbound
//	cache := container.Resolve[*RedisCache](c, "cache")
//
// # Tags and extension points
//
//	c.Tag([]string{"CpuReport", "MemReport"}, "reports")
//	reports, err := c.Tagged("reports")
//
//	view := c.View("reports")
//	view.OnBind(func(info container.BindingInfo) error {
//	    // called when a new binding is tagged "reports"
//	    return nil
//	})
//
// # Service Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool   { return true }
//	func (p *HeavyProvider) Provides() []string { return []string{"heavy"} }
//	func (p *HeavyProvider) Register(app *container.Container) error {
//	    return app.Singleton("heavy", func(c *container.Container) any {
//	        return heavySetup() // only called on first app.Make("heavy")
//	    })
//	}
package container
