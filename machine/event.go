package machine

import (
	"sync/atomic"
)

type eventID int32

var lastEventID atomic.Int32

// Event identifies an input event carrying an argument of type A. Events are
// created once, typically as package-level variables, and passed to Handle
// together with the argument.
type Event[A any] struct {
	id eventID
}

// NewEvent assigns a new event identity. Identities are stable for the
// lifetime of the process and never compare equal across distinct calls.
func NewEvent[A any]() Event[A] {
	return Event[A]{
		id: eventID(lastEventID.Add(1)),
	}
}

// None is the argument type of events carrying no payload.
type None struct{}

// Signal is an event carrying no payload.
type Signal = Event[None]

// NewSignal assigns a new identity to an event carrying no payload.
func NewSignal() Signal {
	return NewEvent[None]()
}
