package container

import (
	"errors"
	"fmt"
)

// ── Scopes ────────────────────────────────────────────────────────────────────

// Scope describes how a binding produces its value.
type Scope int

const (
	// ScopeTransient runs the factory on every resolution (Bind).
	ScopeTransient Scope = iota
	// ScopeSingleton runs the factory once and caches the result (Singleton).
	ScopeSingleton
	// ScopeConstant holds a pre-built value (Instance).
	ScopeConstant
)

// String returns the scope name as used in log and error messages.
func (s Scope) String() string {
	switch s {
	case ScopeTransient:
		return "transient"
	case ScopeSingleton:
		return "singleton"
	case ScopeConstant:
		return "constant"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// Shared reports whether every resolution of the binding yields the same value.
func (s Scope) Shared() bool {
	return s == ScopeSingleton || s == ScopeConstant
}

// ── Binding metadata ──────────────────────────────────────────────────────────

// BindingInfo is a read-only snapshot of a registered binding.
type BindingInfo struct {
	Key    string
	Scope  Scope
	Locked bool
	Tags   []string
}

// HasTag reports whether the binding carries tag.
func (b BindingInfo) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ── Errors ────────────────────────────────────────────────────────────────────

var (
	// ErrNotBound is returned when an abstract has no binding or instance.
	ErrNotBound = errors.New("container: no binding registered")

	// ErrBindingLocked is returned when a locked binding is rebound,
	// extended or forgotten.
	ErrBindingLocked = errors.New("container: binding is locked")

	// ErrAliasConflict is returned when an alias name is already bound.
	ErrAliasConflict = errors.New("container: alias name is already bound")
)

func notBound(key string) error {
	return fmt.Errorf("%w for [%s]", ErrNotBound, key)
}

func locked(key string) error {
	return fmt.Errorf("%w: [%s]", ErrBindingLocked, key)
}
