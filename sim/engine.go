package sim

// An Engine drives the simulation by scheduling and dispatching events.
type Engine interface {
	Hookable

	// Schedule registers an event to happen in the future.
	Schedule(e Event)

	// Run dispatches all the scheduled events in time order. It returns the
	// first error returned by an event handler, leaving later events in the
	// queue.
	Run() error

	// CurrentTime returns the time of the most recently dispatched event.
	CurrentTime() VTimeInSec
}
