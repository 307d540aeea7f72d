package dbcomponent

import "fmt"

// State is where the Component is in its lifecycle.
//
// Normal life cycle: Uninitialized -> Initialized -> Started -> Stopped.
// A stopped component may be started again.
type State int

const (
	// StateUninitialized is the state after New; nothing is locked yet.
	StateUninitialized State = iota
	// StateInitialized means the client is resolved and its bindings are locked.
	StateInitialized
	// StateStarted means Start returned without error.
	StateStarted
	// StateStopped means Stop disconnected the client.
	StateStopped
)

func (s State) Initialized() bool { return s != StateUninitialized }

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateInitialized:
		return "Initialized"
	case StateStarted:
		return "Started"
	case StateStopped:
		return "Stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
