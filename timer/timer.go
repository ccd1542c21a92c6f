// Package timer provides the one-shot countdown primitive the receive
// watchdog is built on.
package timer

import (
	"log"
	"reflect"

	"github.com/sarchlab/eqos/sim"
)

// A OneShot arms a single countdown that invokes a callback on expiry.
type OneShot interface {
	// Arm starts the countdown at the given count, replacing any countdown
	// already pending. A zero count disables the timer; it never fires.
	Arm(count uint32)

	// Disarm cancels the pending countdown, if any.
	Disarm()
}

// An EventTimer implements OneShot on top of a sim.Engine. One count is
// one cycle at the configured frequency.
type EventTimer struct {
	engine   sim.Engine
	freq     sim.Freq
	onExpire func()

	// generation invalidates expiry events that were scheduled before the
	// latest Arm or Disarm; the engine cannot unschedule them.
	generation uint64
	armed      bool
}

// NewEventTimer creates an EventTimer that calls onExpire when an armed
// countdown runs out.
func NewEventTimer(
	engine sim.Engine,
	freq sim.Freq,
	onExpire func(),
) *EventTimer {
	return &EventTimer{
		engine:   engine,
		freq:     freq,
		onExpire: onExpire,
	}
}

type expireEvent struct {
	*sim.EventBase
	generation uint64
}

// Arm starts the countdown.
func (t *EventTimer) Arm(count uint32) {
	t.generation++

	if count == 0 {
		t.armed = false
		return
	}

	t.armed = true
	t.engine.Schedule(&expireEvent{
		EventBase: sim.NewEventBase(
			t.freq.NCyclesLater(count, t.engine.CurrentTime()), t),
		generation: t.generation,
	})
}

// Disarm cancels the pending countdown.
func (t *EventTimer) Disarm() {
	t.generation++
	t.armed = false
}

// Handle implements sim.Handler for the expiry events.
func (t *EventTimer) Handle(e sim.Event) error {
	evt, ok := e.(*expireEvent)
	if !ok {
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	if !t.armed || evt.generation != t.generation {
		return nil
	}

	t.armed = false
	t.onExpire()

	return nil
}

// Nop is a OneShot that does nothing. It stands in when no engine drives
// the simulation.
type Nop struct{}

// Arm does nothing.
func (Nop) Arm(count uint32) {}

// Disarm does nothing.
func (Nop) Disarm() {}
