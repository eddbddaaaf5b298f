package domain

// Event is a domain event emitted by an aggregate after a state change.
type Event interface {
	Type() string
}

// EventDispatcher delivers domain events to interested subscribers.
// Dispatch failures must not abort the business operation that produced
// the event; services dispatch best-effort.
type EventDispatcher interface {
	Dispatch(event Event) error
}
