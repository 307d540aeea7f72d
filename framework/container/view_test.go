package container_test

import (
	"errors"
	"testing"

	"github.com/km-arc/go-laravel-db/framework/container"
)

func TestView_OnBind_FiresWhenTaggingBoundKey(t *testing.T) {
	c := container.New()
	v := c.View("plugins")

	var keys []string
	v.OnBind(func(info container.BindingInfo) error {
		keys = append(keys, info.Key)
		return nil
	})

	_ = c.Instance("p1", "one")
	_ = c.Instance("p2", "two")
	_ = c.Tag([]string{"p1"}, "plugins")
	_ = c.Tag([]string{"p2"}, "plugins")

	if len(keys) != 2 || keys[0] != "p1" || keys[1] != "p2" {
		t.Errorf("events: got %v, want [p1 p2]", keys)
	}
	if got := v.Keys(); len(got) != 2 || got[0] != "p1" {
		t.Errorf("Keys(): got %v", got)
	}
}

func TestView_OnBind_FiresWhenBindingTaggedKey(t *testing.T) {
	c := container.New()
	v := c.View("plugins")

	var infos []container.BindingInfo
	v.OnBind(func(info container.BindingInfo) error {
		infos = append(infos, info)
		return nil
	})

	// Tag first, bind later: the event fires once the key is bound.
	_ = c.Tag([]string{"late"}, "plugins")
	if len(infos) != 0 {
		t.Fatalf("no event expected for an unbound key, got %v", infos)
	}
	_ = c.Singleton("late", func(*container.Container) any { return "x" })

	if len(infos) != 1 {
		t.Fatalf("events: got %d, want 1", len(infos))
	}
	if infos[0].Scope != container.ScopeSingleton || !infos[0].HasTag("plugins") {
		t.Errorf("event info: got %+v", infos[0])
	}
}

func TestView_OnBind_ErrorPropagatesToCaller(t *testing.T) {
	c := container.New()
	rejected := errors.New("transient plugins are not allowed")
	c.View("plugins").OnBind(func(info container.BindingInfo) error {
		if !info.Scope.Shared() {
			return rejected
		}
		return nil
	})

	_ = c.Bind("p", func(*container.Container) any { return "x" })
	if err := c.Tag([]string{"p"}, "plugins"); !errors.Is(err, rejected) {
		t.Errorf("Tag: got %v, want %v", err, rejected)
	}
	if err := c.Instance("p", "x"); err != nil {
		t.Errorf("Instance: got %v, want nil", err)
	}
}

func TestView_Cancel_StopsEvents(t *testing.T) {
	c := container.New()
	v := c.View("plugins")
	calls := 0
	cancel := v.OnBind(func(container.BindingInfo) error {
		calls++
		return nil
	})
	cancel()

	_ = c.Instance("p", 1)
	_ = c.Tag([]string{"p"}, "plugins")
	if calls != 0 {
		t.Errorf("handler calls after cancel: got %d", calls)
	}
}

func TestView_Close_Detaches(t *testing.T) {
	c := container.New()
	v := c.View("plugins")
	calls := 0
	v.OnBind(func(container.BindingInfo) error {
		calls++
		return nil
	})
	v.Close()

	_ = c.Instance("p", 1)
	_ = c.Tag([]string{"p"}, "plugins")
	if calls != 0 {
		t.Errorf("handler calls after Close: got %d", calls)
	}
}

func TestView_Values(t *testing.T) {
	c := container.New()
	_ = c.Instance("a", 1)
	_ = c.Instance("b", 2)
	_ = c.Tag([]string{"a", "b"}, "nums")

	vals, err := c.View("nums").Values()
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	if len(vals) != 2 || vals[0] != 1 || vals[1] != 2 {
		t.Errorf("Values: got %v", vals)
	}
}
