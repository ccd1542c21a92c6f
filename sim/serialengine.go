package sim

import "log"

// A SerialEngine dispatches events one after another in time order.
type SerialEngine struct {
	HookableBase

	now   VTimeInSec
	queue EventQueue
}

// NewSerialEngine creates a SerialEngine.
func NewSerialEngine() *SerialEngine {
	return &SerialEngine{
		queue: NewEventQueue(),
	}
}

// Schedule registers an event to happen in the future.
func (e *SerialEngine) Schedule(evt Event) {
	if evt.Time() < e.now {
		log.Panicf("scheduling an event at %.10f, earlier than now %.10f",
			evt.Time(), e.now)
	}

	e.queue.Push(evt)
}

// Run dispatches all the scheduled events.
func (e *SerialEngine) Run() error {
	for e.queue.Len() > 0 {
		evt := e.queue.Pop()
		e.now = evt.Time()

		ctx := HookCtx{
			Domain: e,
			Pos:    HookPosBeforeEvent,
			Item:   evt,
		}
		e.InvokeHook(ctx)

		if err := evt.Handler().Handle(evt); err != nil {
			return err
		}

		ctx.Pos = HookPosAfterEvent
		e.InvokeHook(ctx)
	}

	return nil
}

// CurrentTime returns the time of the most recently dispatched event.
func (e *SerialEngine) CurrentTime() VTimeInSec {
	return e.now
}
