// Package dma models the descriptor-ring DMA core of a Synopsys-style
// Quality-of-Service Ethernet MAC: the receive and transmit ring engines,
// the frame assembler with TCP segmentation offload, and the interrupt
// aggregation in front of the single interrupt line.
package dma

import (
	"github.com/sarchlab/eqos/eth"
	"github.com/sarchlab/eqos/irq"
	"github.com/sarchlab/eqos/mem"
	"github.com/sarchlab/eqos/sim"
	"github.com/sarchlab/eqos/timer"
)

// An EgressSink receives the frames the transmit engine completes, one
// call per assembled frame or TSO segment.
type EgressSink interface {
	FrameReady(f *eth.Frame)
}

// transmitContext is the parameter block carried by the most recent
// transmit context descriptor. present is false until one has been seen.
type transmitContext struct {
	mss     uint32
	present bool
}

// A Comp is the DMA core. All of its entry points run synchronously on the
// caller: a run loops until the ring blocks or drains, then returns. There
// is no concurrency inside the component.
type Comp struct {
	sim.HookableBase

	name     string
	mem      *mem.Storage
	regs     RegisterFile
	sink     EgressSink
	intr     *irq.Controller
	watchdog timer.OneShot

	rx ring
	tx ring

	// inbound is the FIFO of received frames awaiting delivery. rxOffset
	// is how many bytes of the head frame have already been written out.
	inbound  []*eth.Frame
	rxOffset int

	txContext transmitContext
	asm       *assembler

	goodPackets  uint64
	counterLimit uint64

	lineLevel bool
}

// Name returns the component name.
func (c *Comp) Name() string {
	return c.name
}

// OnFrameArrived queues an inbound frame and lets the receive engine run.
// Frames arriving while the engine is stopped stay queued.
func (c *Comp) OnFrameArrived(f *eth.Frame) {
	c.inbound = append(c.inbound, f)
	c.runRx()
}

// NotifyRegisterWrite re-evaluates both engines after software changed the
// control registers. The returned error is only non-nil for the fatal
// corrupt-transmit-ring condition.
func (c *Comp) NotifyRegisterWrite() error {
	c.runRx()
	return c.runTx()
}

// Reset returns both rings to Stopped, drops queued and in-flight frames,
// and deasserts every interrupt cause.
func (c *Comp) Reset() {
	c.rx = ring{}
	c.tx = ring{}
	c.inbound = nil
	c.rxOffset = 0
	c.txContext = transmitContext{}
	c.asm = nil
	c.goodPackets = 0

	c.regs.SetRxProcessStopped(false)
	c.regs.SetTxProcessStopped(false)
	c.regs.SetRxBufferUnavailable(false)
	c.regs.SetTxBufferUnavailable(false)

	c.watchdog.Disarm()
	c.intr.Reset()
	c.updateLine()
}

// InterruptLine returns the current level of the interrupt output.
func (c *Comp) InterruptLine() bool {
	return c.intr.Line()
}

// InterruptController exposes the aggregator so software can program the
// enable bits and inspect pending causes.
func (c *Comp) InterruptController() *irq.Controller {
	return c.intr
}

// AcknowledgeInterrupt clears one raw cause and re-evaluates the line.
func (c *Comp) AcknowledgeInterrupt(cause irq.Cause) {
	c.intr.Clear(cause)
	c.updateLine()
}

// RxStatus returns the receive engine status flags.
func (c *Comp) RxStatus() EngineStatus {
	return c.rx.status
}

// TxStatus returns the transmit engine status flags.
func (c *Comp) TxStatus() EngineStatus {
	return c.tx.status
}

// TransmitGoodPackets returns the saturating good-packet counter.
func (c *Comp) TransmitGoodPackets() uint64 {
	return c.goodPackets
}

// PendingInbound returns the number of frames queued for delivery.
func (c *Comp) PendingInbound() int {
	return len(c.inbound)
}

// updateLine recomputes the interrupt output and fires the line-change
// hook on an edge.
func (c *Comp) updateLine() {
	level := c.intr.Line()
	if level == c.lineLevel {
		return
	}

	c.lineLevel = level
	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosInterruptLine,
		Item:   level,
	})
}

// watchdogExpired forces the completion report for frames that were
// delivered without interrupt-on-completion.
func (c *Comp) watchdogExpired() {
	c.intr.Assert(irq.ReceiveComplete)
	c.updateLine()
}

// emitFrame hands one completed outbound frame to the sink and advances
// the saturating good-packet counter.
func (c *Comp) emitFrame(f *eth.Frame) {
	c.sink.FrameReady(f)

	if c.goodPackets < c.counterLimit {
		c.goodPackets++
	}
	if c.goodPackets == c.counterLimit || c.goodPackets == c.counterLimit/2 {
		c.intr.Assert(irq.TxPacketCounterThreshold)
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosFrameSent,
		Item:   f,
	})
}

type discardSink struct{}

func (discardSink) FrameReady(f *eth.Frame) {}
