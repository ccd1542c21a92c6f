package dma

import (
	"math"

	"github.com/sarchlab/eqos/irq"
	"github.com/sarchlab/eqos/mem"
	"github.com/sarchlab/eqos/sim"
	"github.com/sarchlab/eqos/timer"
)

// A Builder configures and creates DMA components.
type Builder struct {
	engine       sim.Engine
	freq         sim.Freq
	storage      *mem.Storage
	regs         RegisterFile
	sink         EgressSink
	watchdog     timer.OneShot
	counterLimit uint64
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:         100 * sim.MHz,
		counterLimit: math.MaxUint32,
	}
}

// WithEngine sets the event engine that drives the watchdog timer.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency the watchdog counts at.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithStorage sets the bus memory holding rings and buffers.
func (b Builder) WithStorage(storage *mem.Storage) Builder {
	b.storage = storage
	return b
}

// WithRegisterFile sets the register file the engines consult.
func (b Builder) WithRegisterFile(regs RegisterFile) Builder {
	b.regs = regs
	return b
}

// WithEgressSink sets the receiver of completed outbound frames.
func (b Builder) WithEgressSink(sink EgressSink) Builder {
	b.sink = sink
	return b
}

// WithWatchdog replaces the watchdog timer implementation. When not set,
// an EventTimer on the builder's engine is used, or a no-op timer if there
// is no engine either.
func (b Builder) WithWatchdog(watchdog timer.OneShot) Builder {
	b.watchdog = watchdog
	return b
}

// WithPacketCounterLimit sets the saturation value of the transmit
// good-packet counter.
func (b Builder) WithPacketCounterLimit(limit uint64) Builder {
	b.counterLimit = limit
	return b
}

// Build creates the component.
func (b Builder) Build(name string) *Comp {
	c := &Comp{
		name:         name,
		mem:          b.storage,
		regs:         b.regs,
		sink:         b.sink,
		intr:         irq.NewController(),
		counterLimit: b.counterLimit,
	}

	if c.mem == nil {
		c.mem = mem.NewStorage(16 * mem.MB)
	}
	if c.regs == nil {
		c.regs = &Regs{}
	}
	if c.sink == nil {
		c.sink = discardSink{}
	}

	switch {
	case b.watchdog != nil:
		c.watchdog = b.watchdog
	case b.engine != nil:
		c.watchdog = timer.NewEventTimer(b.engine, b.freq, c.watchdogExpired)
	default:
		c.watchdog = timer.Nop{}
	}

	return c
}
