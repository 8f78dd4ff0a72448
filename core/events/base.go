package events

import "time"

// Kind identifies an event type, namespaced by the part of the
// conversation that produces it, e.g. "user_input.transcript".
type Kind string

// Event is what flows through the orchestrator's queue. Every event
// carries its kind and the time it was produced; concrete events add the
// payload their handler needs.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// Base carries the fields shared by every event. Concrete events embed it
// and stamp it through NewBase in their constructor.
type Base struct {
	kind      Kind
	timestamp time.Time
}

// NewBase stamps an event with its kind and the current time.
func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

// Kind reports which event this is.
func (b Base) Kind() Kind {
	return b.kind
}

// Timestamp reports when the event was produced.
func (b Base) Timestamp() time.Time {
	return b.timestamp
}
