package dma

import (
	"log"

	"github.com/sarchlab/eqos/datarecording"
	"github.com/sarchlab/eqos/eth"
	"github.com/sarchlab/eqos/sim"
)

// Hook positions of the DMA component.
var (
	HookPosDescriptorFetched   = &sim.HookPos{Name: "DescriptorFetched"}
	HookPosDescriptorWriteBack = &sim.HookPos{Name: "DescriptorWriteBack"}
	HookPosFrameDelivered      = &sim.HookPos{Name: "FrameDelivered"}
	HookPosFrameSent           = &sim.HookPos{Name: "FrameSent"}
	HookPosInterruptLine       = &sim.HookPos{Name: "InterruptLine"}
)

// A DescriptorTrace is the Detail attached to descriptor hook invocations.
type DescriptorTrace struct {
	Direction string
	Addr      uint64
}

func (c *Comp) hookDescriptor(
	pos *sim.HookPos,
	direction string,
	addr uint64,
	item interface{},
) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   item,
		Detail: DescriptorTrace{Direction: direction, Addr: addr},
	})
}

// A descriptorLogger prints one line per descriptor and frame event, for
// verbose tracing.
type descriptorLogger struct {
	*log.Logger
}

// NewDescriptorLogger returns a hook that logs the traffic on both rings.
func NewDescriptorLogger(logger *log.Logger) sim.Hook {
	return &descriptorLogger{Logger: logger}
}

// Func implements sim.Hook.
func (l *descriptorLogger) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case HookPosDescriptorFetched, HookPosDescriptorWriteBack:
		trace := ctx.Detail.(DescriptorTrace)
		l.Printf("%s, %s, %s @ %#x, %+v",
			ctx.Domain.(*Comp).Name(), ctx.Pos.Name,
			trace.Direction, trace.Addr, ctx.Item)
	case HookPosFrameDelivered, HookPosFrameSent:
		f := ctx.Item.(*eth.Frame)
		l.Printf("%s, %s, frame %s, %d bytes",
			ctx.Domain.(*Comp).Name(), ctx.Pos.Name, f.ID, f.Length())
	case HookPosInterruptLine:
		l.Printf("%s, %s, %v",
			ctx.Domain.(*Comp).Name(), ctx.Pos.Name, ctx.Item)
	}
}

// frameTableEntry is one row of the recorded frame table.
type frameTableEntry struct {
	FrameID   string
	Direction string
	Length    int
	EtherType uint16
}

// A frameRecorder stores one row per completed frame in a data recorder.
type frameRecorder struct {
	recorder  datarecording.DataRecorder
	tableName string
}

// NewFrameRecorder returns a hook that records every delivered and
// transmitted frame into the given recorder.
func NewFrameRecorder(recorder datarecording.DataRecorder) sim.Hook {
	r := &frameRecorder{
		recorder:  recorder,
		tableName: "eqos_frames",
	}
	recorder.CreateTable(r.tableName, frameTableEntry{})
	return r
}

// Func implements sim.Hook.
func (r *frameRecorder) Func(ctx sim.HookCtx) {
	var direction string
	switch ctx.Pos {
	case HookPosFrameDelivered:
		direction = "rx"
	case HookPosFrameSent:
		direction = "tx"
	default:
		return
	}

	f := ctx.Item.(*eth.Frame)
	r.recorder.InsertData(r.tableName, frameTableEntry{
		FrameID:   f.ID,
		Direction: direction,
		Length:    f.Length(),
		EtherType: f.LengthOrType(),
	})
}
