package container

import (
	"slices"
	"sync"
)

// BindHandler is invoked synchronously when a binding joins a View, or when
// a member of the View is rebound. A non-nil error is returned to the caller
// of the Bind/Singleton/Instance/Tag call that triggered it.
type BindHandler func(info BindingInfo) error

// View is a live window over the bindings carrying a tag. It is the
// container's extension point: contributors tag their bindings, the owner
// of the extension point reads them through the View and subscribes to
// arrivals with OnBind.
//
//	v := c.View("greeters")
//	cancel := v.OnBind(func(info container.BindingInfo) error {
//	    log.Printf("new greeter %s", info.Key)
//	    return nil
//	})
//	defer cancel()
type View struct {
	c   *Container
	tag string

	mu       sync.Mutex
	nextID   int
	handlers []viewHandler
}

type viewHandler struct {
	id int
	fn BindHandler
}

// View creates a View over tag and registers it with the container.
func (c *Container) View(tag string) *View {
	v := &View{c: c, tag: tag}
	c.mu.Lock()
	c.views[tag] = append(c.views[tag], v)
	c.mu.Unlock()
	return v
}

// Tag returns the tag the View watches.
func (v *View) Tag() string { return v.tag }

// Keys returns the bound member keys in tagging order.
func (v *View) Keys() []string {
	return v.c.taggedKeys(v.tag)
}

// Values resolves every member in tagging order.
func (v *View) Values() ([]any, error) {
	return v.c.Tagged(v.tag)
}

// OnBind subscribes fn to bind events and returns a func that unsubscribes it.
func (v *View) OnBind(fn BindHandler) (cancel func()) {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.handlers = append(v.handlers, viewHandler{id: id, fn: fn})
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.handlers = slices.DeleteFunc(v.handlers, func(h viewHandler) bool { return h.id == id })
	}
}

// Close detaches the View from the container; no further events are delivered.
func (v *View) Close() {
	v.c.mu.Lock()
	v.c.views[v.tag] = slices.DeleteFunc(v.c.views[v.tag], func(o *View) bool { return o == v })
	v.c.mu.Unlock()

	v.mu.Lock()
	v.handlers = nil
	v.mu.Unlock()
}

func (v *View) notify(info BindingInfo) error {
	v.mu.Lock()
	handlers := slices.Clone(v.handlers)
	v.mu.Unlock()

	for _, h := range handlers {
		if err := h.fn(info); err != nil {
			return err
		}
	}
	return nil
}
