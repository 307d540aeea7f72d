package container

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// Factory is a function that builds a concrete value from the container.
type Factory func(c *Container) any

// binding holds a registered factory, its scope and its lock flag.
// Constant bindings have a nil factory; their value lives in instances.
type binding struct {
	factory Factory
	scope   Scope
	locked  bool
}

// extender wraps an already-resolved instance with decorator logic.
type extender func(instance any, c *Container) any

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC container. Mirrors Laravel's Illuminate\Container\Container.
//
// It supports:
//   - Bind / Singleton / Instance / Alias
//   - Make / Get / Resolve (generic)
//   - Binding locks (immutable bindings after a lifecycle point)
//   - Tags and tag Views with bind events (extension points)
//   - Extend (decorate / wrap resolved instances)
//   - Rebound and resolved event callbacks
type Container struct {
	mu sync.RWMutex

	// abstract → binding
	bindings map[string]*binding

	// abstract → resolved singleton or constant instance
	instances map[string]any

	// alias → abstract (canonical key)
	aliases map[string]string

	// abstract → extender funcs
	extenders map[string][]extender

	// tag → []abstract, in tagging order
	tags map[string][]string

	// tag → live views
	views map[string][]*View

	// rebound callbacks: abstract → []func(any)
	reboundCallbacks map[string][]func(any)

	// resolved callbacks: []func(abstract, instance)
	afterResolving []func(string, any)
}

// New creates an empty container.
func New() *Container {
	c := &Container{
		bindings:         make(map[string]*binding),
		instances:        make(map[string]any),
		aliases:          make(map[string]string),
		extenders:        make(map[string][]extender),
		tags:             make(map[string][]string),
		views:            make(map[string][]*View),
		reboundCallbacks: make(map[string][]func(any)),
	}
	// Bind the container to itself, like Laravel's $app->instance()
	_ = c.Instance("container", c)
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient (new instance each Make) factory.
// It fails with ErrBindingLocked when the abstract is locked, or with the
// first error returned by a View bind handler.
//
//	// Laravel: $app->bind(UserRepository::class, fn($app) => new EloquentUserRepository($app))
//	err := c.Bind("UserRepository", func(c *container.Container) any {
//	    return &EloquentUserRepository{DB: Resolve[*sql.DB](c, "db")}
//	})
func (c *Container) Bind(abstract string, factory Factory) error {
	return c.bind(abstract, factory, ScopeTransient)
}

// Singleton registers a factory whose result is cached after first resolution.
//
//	// Laravel: $app->singleton(Cache::class, fn($app) => new RedisCache($app))
//	err := c.Singleton("cache", func(c *container.Container) any {
//	    return cache.NewRedisCache(Resolve[*config.Config](c, "config"))
//	})
func (c *Container) Singleton(abstract string, factory Factory) error {
	return c.bind(abstract, factory, ScopeSingleton)
}

// Instance registers a pre-built value as a constant.
//
//	// Laravel: $app->instance(Config::class, $config)
//	err := c.Instance("config", myConfig)
func (c *Container) Instance(abstract string, instance any) error {
	c.mu.Lock()
	key := c.canonical(abstract)
	if b, ok := c.bindings[key]; ok && b.locked {
		c.mu.Unlock()
		return locked(key)
	}
	c.bindings[key] = &binding{scope: ScopeConstant}
	c.instances[key] = instance
	c.mu.Unlock()

	c.fireRebound(key, instance)
	return c.fireBind(key, c.tagsOf(key))
}

// bind is the internal registration helper for factory bindings.
func (c *Container) bind(abstract string, factory Factory, scope Scope) error {
	c.mu.Lock()
	key := c.canonical(abstract)
	if b, ok := c.bindings[key]; ok && b.locked {
		c.mu.Unlock()
		return locked(key)
	}

	// Drop existing singleton instance so it's rebuilt with the new factory
	wasResolved := c.instances[key] != nil
	delete(c.instances, key)

	c.bindings[key] = &binding{factory: factory, scope: scope}
	c.mu.Unlock()

	if wasResolved {
		if inst, err := c.get(key); err == nil {
			c.fireRebound(key, inst)
		}
	}
	return c.fireBind(key, c.tagsOf(key))
}

// Alias registers an alternative name for an abstract. The alias name must
// not itself be bound, and an alias whose current target is locked cannot
// be re-pointed.
//
//	// Laravel: $app->alias(Cache::class, 'cache')
//	err := c.Alias("cache", "cacheManager")
func (c *Container) Alias(abstract, alias string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	target := c.canonical(abstract)
	if abstract == alias || target == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", abstract))
	}
	if b, ok := c.bindings[alias]; ok {
		if b.locked {
			return locked(alias)
		}
		return fmt.Errorf("%w: [%s]", ErrAliasConflict, alias)
	}
	if current, ok := c.aliases[alias]; ok && current != target {
		if b, bound := c.bindings[current]; bound && b.locked {
			return locked(current)
		}
	}
	c.aliases[alias] = target
	return nil
}

// ── Locks ─────────────────────────────────────────────────────────────────────

// Lock marks a binding immutable. Rebinding, extending or forgetting a
// locked abstract fails with ErrBindingLocked. Locking twice is a no-op.
func (c *Container) Lock(abstract string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	b, ok := c.bindings[key]
	if !ok {
		return notBound(key)
	}
	b.locked = true
	return nil
}

// Locked reports whether abstract is bound and locked.
func (c *Container) Locked(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.bindings[c.canonical(abstract)]
	return ok && b.locked
}

// GetBinding returns a snapshot of the binding registered for abstract.
//
//	// Laravel: $app->getBindings()[Cache::class]
//	info, ok := c.GetBinding("cache")
//	if ok && !info.Scope.Shared() { ... }
func (c *Container) GetBinding(abstract string) (BindingInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := c.canonical(abstract)
	b, ok := c.bindings[key]
	if !ok {
		return BindingInfo{}, false
	}
	return BindingInfo{
		Key:    key,
		Scope:  b.scope,
		Locked: b.locked,
		Tags:   c.tagsOfLocked(key),
	}, true
}

// ── Extend ────────────────────────────────────────────────────────────────────

// Extend decorates the resolved instance of an abstract.
//
//	// Laravel: $app->extend(Logger::class, fn($logger, $app) => new TimestampLogger($logger))
//	err := c.Extend("logger", func(instance any, c *container.Container) any {
//	    return logging.NewTimestampWrapper(instance.(*Logger))
//	})
func (c *Container) Extend(abstract string, fn func(instance any, c *Container) any) error {
	c.mu.Lock()
	key := c.canonical(abstract)
	if b, ok := c.bindings[key]; ok && b.locked {
		c.mu.Unlock()
		return locked(key)
	}
	c.extenders[key] = append(c.extenders[key], fn)

	// If already resolved as singleton, apply the new extender and refire rebound
	inst, ok := c.instances[key]
	if !ok {
		c.mu.Unlock()
		return nil
	}
	extended := fn(inst, c)
	c.instances[key] = extended
	c.mu.Unlock()

	c.fireRebound(key, extended)
	return nil
}

// ── Tags ──────────────────────────────────────────────────────────────────────

// Tag associates multiple abstracts under a named group. Abstracts that are
// already bound fire the bind event of every View on tag, in order; the
// first handler error is returned.
//
//	// Laravel: $app->tag([CpuReport::class, MemoryReport::class], 'reports')
//	err := c.Tag([]string{"CpuReport", "MemoryReport"}, "reports")
func (c *Container) Tag(abstracts []string, tag string) error {
	c.mu.Lock()
	added := make([]string, 0, len(abstracts))
	for _, abs := range abstracts {
		key := c.canonical(abs)
		if slices.Contains(c.tags[tag], key) {
			continue
		}
		c.tags[tag] = append(c.tags[tag], key)
		if _, bound := c.bindings[key]; bound {
			added = append(added, key)
		}
	}
	c.mu.Unlock()

	for _, key := range added {
		if err := c.fireBind(key, []string{tag}); err != nil {
			return err
		}
	}
	return nil
}

// Tagged resolves all bound abstracts registered under a tag, in tagging order.
//
//	// Laravel: $app->tagged('reports')
//	reports, err := c.Tagged("reports")  // []any
func (c *Container) Tagged(tag string) ([]any, error) {
	keys := c.taggedKeys(tag)
	result := make([]any, 0, len(keys))
	for _, key := range keys {
		inst, err := c.get(key)
		if err != nil {
			return nil, err
		}
		result = append(result, inst)
	}
	return result, nil
}

// taggedKeys returns the bound members of tag in tagging order.
func (c *Container) taggedKeys(tag string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.tags[tag]))
	for _, key := range c.tags[tag] {
		if _, ok := c.bindings[key]; ok {
			keys = append(keys, key)
		}
	}
	return keys
}

func (c *Container) tagsOf(key string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tagsOfLocked(key)
}

// tagsOfLocked must be called with mu held.
func (c *Container) tagsOfLocked(key string) []string {
	var out []string
	for tag, keys := range c.tags {
		if slices.Contains(keys, key) {
			out = append(out, tag)
		}
	}
	slices.Sort(out)
	return out
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Make resolves an abstract from the container and panics when it is not
// bound. Use Get when a missing binding is an expected condition.
//
//	// Laravel: $app->make(UserRepository::class)
//	repo := c.Make("UserRepository")
func (c *Container) Make(abstract string) any {
	inst, err := c.get(abstract)
	if err != nil {
		panic(err.Error())
	}
	return inst
}

// Get resolves an abstract, returning ErrNotBound when nothing is registered.
func (c *Container) Get(abstract string) (any, error) {
	return c.get(abstract)
}

// get is the internal resolver (no outer lock; individual ops lock as needed).
func (c *Container) get(abstract string) (any, error) {
	c.mu.RLock()
	key := c.canonical(abstract)
	if inst, ok := c.instances[key]; ok {
		c.mu.RUnlock()
		return inst, nil
	}
	b, ok := c.bindings[key]
	c.mu.RUnlock()

	if !ok || b.factory == nil {
		return nil, notBound(key)
	}
	return c.runFactory(key, b.factory, b.scope == ScopeSingleton), nil
}

// runFactory executes a factory, optionally caching the result.
func (c *Container) runFactory(key string, f Factory, singleton bool) any {
	instance := f(c)

	c.mu.RLock()
	exts := slices.Clone(c.extenders[key])
	c.mu.RUnlock()
	for _, ext := range exts {
		instance = ext(instance, c)
	}

	if singleton {
		c.mu.Lock()
		c.instances[key] = instance
		c.mu.Unlock()
	}

	c.fireAfterResolving(key, instance)
	return instance
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound returns true if an abstract has been registered.
//
//	// Laravel: $app->bound(UserRepository::class)
func (c *Container) Bound(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.bindings[c.canonical(abstract)]
	return ok
}

// Resolved returns true if the abstract holds a cached instance.
//
//	// Laravel: $app->resolved(Cache::class)
func (c *Container) Resolved(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[c.canonical(abstract)]
	return ok
}

// Forget removes all registrations for an abstract (binding + instance).
//
//	// Laravel: $app->forgetInstance(Cache::class)
func (c *Container) Forget(abstract string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	if b, ok := c.bindings[key]; ok && b.locked {
		return locked(key)
	}
	delete(c.bindings, key)
	delete(c.instances, key)
	return nil
}

// Flush resets the entire container, locks and views included.
func (c *Container) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings = make(map[string]*binding)
	c.instances = make(map[string]any)
	c.aliases = make(map[string]string)
	c.extenders = make(map[string][]extender)
	c.tags = make(map[string][]string)
	c.views = make(map[string][]*View)
}

// Bindings returns the sorted list of registered abstract keys (for debugging).
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.bindings))
	for k := range c.bindings {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// canonical resolves an alias to its canonical key.
func (c *Container) canonical(abstract string) string {
	if target, ok := c.aliases[abstract]; ok {
		return target
	}
	return abstract
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// Rebinding registers a callback to be called whenever an abstract is re-bound.
//
//	// Laravel: $app->rebinding(UserRepository::class, fn($app, $repo) => ...)
func (c *Container) Rebinding(abstract string, cb func(any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	c.reboundCallbacks[key] = append(c.reboundCallbacks[key], cb)
}

// AfterResolving registers a callback fired after any factory-built abstract is resolved.
//
//	// Laravel: $app->afterResolving(fn($object, $app) => ...)
func (c *Container) AfterResolving(cb func(abstract string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) fireRebound(key string, instance any) {
	c.mu.RLock()
	cbs := slices.Clone(c.reboundCallbacks[key])
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(instance)
	}
}

func (c *Container) fireAfterResolving(key string, instance any) {
	c.mu.RLock()
	cbs := slices.Clone(c.afterResolving)
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(key, instance)
	}
}

// fireBind notifies the views of tags that key joined (or was rebound in).
// Handlers run outside the container lock and may call back into it.
func (c *Container) fireBind(key string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	info, ok := c.GetBinding(key)
	if !ok {
		return nil
	}

	c.mu.RLock()
	var views []*View
	for _, tag := range tags {
		views = append(views, c.views[tag]...)
	}
	c.mu.RUnlock()

	for _, v := range views {
		if err := v.notify(info); err != nil {
			return err
		}
	}
	return nil
}

// ── Reflect helpers ───────────────────────────────────────────────────────────

// TypeKey returns the package-qualified type name of v, useful as a stable
// abstract key when working with interfaces.
//
//	key := container.TypeKey((*UserRepository)(nil))  // "main.UserRepository"
//	c.Singleton(key, factory)
//	repo := container.Resolve[UserRepository](c, key)
func TypeKey(v any) string {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.PkgPath() + "." + t.Name()
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve is a generic helper that calls Make and type-asserts the result.
// It panics when the abstract is unbound or of another type.
//
//	// Instead of: db := c.Make("db").(*sql.DB)
//	// Write:      db := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](c *Container, abstract string) T {
	instance := c.Make(abstract)
	typed, ok := instance.(T)
	if !ok {
		panic(fmt.Sprintf("container: Resolve[%T]: [%s] resolved to %T", *new(T), abstract, instance))
	}
	return typed
}

// TryResolve is like Resolve but reports failures as errors.
func TryResolve[T any](c *Container, abstract string) (T, error) {
	var zero T
	instance, err := c.Get(abstract)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("container: [%s] resolved to %T, want %T", abstract, instance, zero)
	}
	return typed, nil
}
