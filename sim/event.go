package sim

// VTimeInSec is the time in the simulated space, in seconds.
type VTimeInSec float64

// An Event is something that will happen in the future.
type Event interface {
	// Time returns the time at which the event should happen.
	Time() VTimeInSec

	// Handler returns the handler that should handle the event.
	Handler() Handler
}

// A Handler defines a domain for events. An event can only be scheduled by
// and dispatched to the handler that owns it.
type Handler interface {
	Handle(e Event) error
}

// EventBase provides the common fields and getters for concrete events.
type EventBase struct {
	ID      string
	time    VTimeInSec
	handler Handler
}

// NewEventBase creates a new EventBase.
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	return &EventBase{
		ID:      GetIDGenerator().Generate(),
		time:    t,
		handler: handler,
	}
}

// Time returns the time at which the event will happen.
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// Handler returns the handler that handles the event.
func (e EventBase) Handler() Handler {
	return e.handler
}
