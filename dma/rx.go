package dma

import (
	"log"

	"github.com/sarchlab/eqos/descriptor"
	"github.com/sarchlab/eqos/eth"
	"github.com/sarchlab/eqos/irq"
	"github.com/sarchlab/eqos/sim"
)

// runRx walks the receive ring until it blocks: ring exhausted, descriptor
// not owned by the DMA, or no more frame bytes to deliver.
func (c *Comp) runRx() {
	defer c.updateLine()

	if !c.regs.RxEnabled() || !c.regs.RxStarted() {
		c.stopRx()
		return
	}

	if c.rx.status.Stopped() {
		c.rx.restart(c.regs.RxDescListAddr(), c.regs.RxDescRingLength())
	}
	c.rx.status &^= StatusSuspended

	if len(c.inbound) == 0 {
		c.rx.status |= StatusSuspended
		return
	}

	c.rxLoop()

	if !c.regs.RxEnabled() || !c.regs.RxStarted() {
		c.stopRx()
	} else if c.rx.finished || len(c.inbound) > 0 {
		c.rx.status |= StatusSuspended
	}
}

func (c *Comp) rxLoop() {
	for !c.rx.finished && c.regs.RxEnabled() && c.regs.RxStarted() {
		desc, err := descriptor.ReadRx(c.mem, c.rx.cursor)
		if err != nil {
			log.Panic(err)
		}
		c.hookDescriptor(HookPosDescriptorFetched, "rx", c.rx.cursor, desc)

		if !desc.Owned {
			c.regs.SetRxBufferUnavailable(true)
			c.intr.Assert(irq.ReceiveBufferUnavailable)
			c.rx.status |= StatusSuspended
			return
		}

		bufAddr, bufSize, ok := c.rxBuffer(desc)
		if !ok {
			c.intr.Assert(irq.ContextDescriptorError)
			c.writeRxBack(c.rx.cursor, descriptor.RxWriteBack{
				ContextError: true,
			})
			c.rx.advance(descriptor.Width)
			continue
		}

		frame := c.inbound[0]

		if c.rxOffset >= frame.Length() {
			// head frame fully delivered; move on without consuming the
			// descriptor the engine just looked at
			if c.regs.TimestampEnabled() {
				log.Printf("%s: receive timestamping is not supported",
					c.name)
			}
			c.inbound = c.inbound[1:]
			c.rxOffset = 0
			if len(c.inbound) == 0 {
				return
			}
			continue
		}

		if c.rxOffset == 0 {
			c.intr.Assert(irq.EarlyReceive)
		}

		c.rxDeliverChunk(desc, frame, bufAddr, bufSize)
	}
}

// rxBuffer picks the destination buffer of a descriptor, preferring
// buffer 1.
func (c *Comp) rxBuffer(desc descriptor.RxDesc) (uint64, uint32, bool) {
	switch {
	case desc.Buffer1Valid && desc.Buffer1 != 0:
		return desc.Buffer1, c.regs.RxBuffer1Size(), true
	case desc.Buffer2Valid && desc.Buffer2 != 0:
		return desc.Buffer2, c.regs.RxBuffer2Size(), true
	default:
		log.Printf("%s: receive descriptor at %#x has no valid buffer",
			c.name, c.rx.cursor)
		return 0, 0, false
	}
}

// rxDeliverChunk copies the next chunk of the head frame into the
// descriptor's buffer and writes the completion back.
func (c *Comp) rxDeliverChunk(
	desc descriptor.RxDesc,
	frame *eth.Frame,
	bufAddr uint64,
	bufSize uint32,
) {
	n := frame.Length() - c.rxOffset
	if n > int(bufSize) {
		n = int(bufSize)
	}

	err := c.mem.Write(bufAddr, frame.Data[c.rxOffset:c.rxOffset+n])
	if err != nil {
		log.Panic(err)
	}

	first := c.rxOffset == 0
	c.rxOffset += n
	last := c.rxOffset >= frame.Length()

	wb := descriptor.RxWriteBack{
		FirstDescriptor: first,
		LastDescriptor:  last,
		PacketLength:    uint32(frame.Length()),
		LengthOrType:    frame.LengthOrType(),
		LengthTypeClass: frame.LengthTypeClass(),
		IPv4:            frame.IPVersion() == 4,
		IPv6:            frame.IPVersion() == 6,
		Payload:         frame.TransportProto(),
	}
	if !c.regs.CRCCheckDisabled() {
		wb.CRCError = !frame.CheckFCS()
	}
	c.writeRxBack(c.rx.cursor, wb)

	if last && desc.InterruptOnCompletion {
		c.intr.Assert(irq.ReceiveComplete)
		c.watchdog.Disarm()
	} else {
		c.watchdog.Arm(c.regs.RxWatchdogCount())
	}

	if last {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosFrameDelivered,
			Item:   frame,
		})
	}

	c.rx.advance(descriptor.Width)
}

func (c *Comp) writeRxBack(addr uint64, wb descriptor.RxWriteBack) {
	if err := descriptor.WriteRxBack(c.mem, addr, wb); err != nil {
		log.Panic(err)
	}
	c.hookDescriptor(HookPosDescriptorWriteBack, "rx", addr, wb)
}

// stopRx stops the receive engine. A partially delivered head frame is
// dropped so a later restart cannot deliver any of its bytes twice.
func (c *Comp) stopRx() {
	if c.rx.status.Stopped() {
		return
	}

	if c.rxOffset > 0 && len(c.inbound) > 0 {
		c.inbound = c.inbound[1:]
	}
	c.rxOffset = 0

	c.rx.status = 0
	c.regs.SetRxProcessStopped(true)
	c.intr.Assert(irq.ReceiveProcessStopped)
}
