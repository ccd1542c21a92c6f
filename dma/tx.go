package dma

import (
	"errors"
	"fmt"
	"log"

	"github.com/sarchlab/eqos/descriptor"
	"github.com/sarchlab/eqos/irq"
)

// runTx walks the transmit ring until it blocks. The returned error is
// only non-nil when the descriptor stream violates the format contract,
// which is not recoverable.
func (c *Comp) runTx() error {
	defer c.updateLine()

	if !c.regs.TxEnabled() || !c.regs.TxStarted() {
		c.stopTx()
		return nil
	}

	if c.tx.status.Stopped() {
		c.tx.restart(c.regs.TxDescListAddr(), c.regs.TxDescRingLength())
	}
	c.tx.status &^= StatusSuspended

	err := c.txLoop()
	if err != nil {
		c.stopTx()
		return err
	}

	if !c.regs.TxEnabled() || !c.regs.TxStarted() {
		c.stopTx()
	} else if c.tx.finished {
		c.regs.SetTxBufferUnavailable(true)
		c.intr.Assert(irq.TransmitBufferUnavailable)
		c.tx.status |= StatusSuspended
	}

	return nil
}

func (c *Comp) txLoop() error {
	for !c.tx.finished && c.regs.TxEnabled() && c.regs.TxStarted() {
		desc, err := descriptor.ReadTx(c.mem, c.tx.cursor)
		if err != nil {
			if errors.Is(err, descriptor.ErrUnknownKind) {
				return fmt.Errorf("%s: transmit ring corrupt: %w", c.name, err)
			}
			log.Panic(err)
		}
		c.hookDescriptor(HookPosDescriptorFetched, "tx", c.tx.cursor, desc)

		if !desc.Owned {
			c.regs.SetTxBufferUnavailable(true)
			c.intr.Assert(irq.TransmitBufferUnavailable)
			c.tx.status |= StatusSuspended
			return nil
		}

		if desc.Kind == descriptor.TxKindContext {
			c.txContext = transmitContext{
				mss:     desc.MaximumSegmentSize,
				present: true,
			}
			c.writeTxContextBack(c.tx.cursor)
			c.tx.advance(descriptor.Width)
			continue
		}

		if desc.FirstDescriptor {
			c.txBeginFrame(desc)
		} else if c.asm == nil {
			// a continuation descriptor with no frame in flight: the
			// engine cannot assemble anything, so it gives up until the
			// next trigger
			log.Printf(
				"%s: descriptor at %#x continues a frame that never started",
				c.name, c.tx.cursor)
			return nil
		} else {
			c.txPushBuffers(desc)
		}

		if !desc.LastDescriptor {
			c.writeTxIntermediate(c.tx.cursor)
			c.tx.status |= StatusProcessingIntermediate
			c.tx.advance(descriptor.Width)
			continue
		}

		c.txFinishFrame(desc)
	}

	return nil
}

// txBeginFrame starts assembling a new outbound frame at a first
// descriptor.
func (c *Comp) txBeginFrame(desc descriptor.TxDesc) {
	if c.asm != nil {
		log.Printf("%s: first descriptor while a frame is in flight, "+
			"dropping the unfinished frame", c.name)
	}

	tso := desc.TSOEnable && c.regs.TSOEnabled()
	if tso && !c.txContext.present {
		log.Printf("%s: segmentation requested with no transmit context, "+
			"sending unsegmented", c.name)
		tso = false
	}

	if tso {
		c.asm = newTSOAssembler(c.txContext.mss)
		// under TSO the first buffer carries the header template and the
		// payload starts in buffer 2
		c.asm.pushHeader(c.txReadBuffer(desc.Buffer1, desc.Buffer1Length))
		if desc.Buffer2Length > 0 {
			c.asm.push(c.txReadBuffer(desc.Buffer2, desc.Buffer2Length))
		}
	} else {
		c.asm = newPlainAssembler(desc.DisablePad, desc.ChecksumControl)
		c.txPushBuffers(desc)
		return
	}

	c.noteUnderflow(desc)
}

// txPushBuffers feeds a descriptor's buffers to the assembler in order.
func (c *Comp) txPushBuffers(desc descriptor.TxDesc) {
	if desc.Buffer1 != 0 && desc.Buffer1Length > 0 {
		c.asm.push(c.txReadBuffer(desc.Buffer1, desc.Buffer1Length))
	}
	if desc.Buffer2 != 0 && desc.Buffer2Length > 0 {
		c.asm.push(c.txReadBuffer(desc.Buffer2, desc.Buffer2Length))
	}

	c.noteUnderflow(desc)
}

// noteUnderflow records the underflow condition reported on the final
// write-back when a descriptor declared an empty buffer.
func (c *Comp) noteUnderflow(desc descriptor.TxDesc) {
	if desc.Buffer1 == 0 || desc.Buffer1Length == 0 {
		c.asm.underflow = true
	}
}

func (c *Comp) txReadBuffer(addr uint64, length uint32) []byte {
	data, err := c.mem.Read(addr, uint64(length))
	if err != nil {
		log.Panic(err)
	}
	return data
}

// txFinishFrame finalizes the assembler at a last descriptor, emits the
// resulting frames, and applies the second-packet batching policy.
func (c *Comp) txFinishFrame(desc descriptor.TxDesc) {
	underflow := c.asm.underflow
	for _, f := range c.asm.finalize() {
		c.emitFrame(f)
	}
	c.asm = nil
	c.tx.status &^= StatusProcessingIntermediate

	batching := c.regs.OperateOnSecondFrame()
	if batching && !c.tx.status.Has(StatusProcessingSecond) {
		// first frame of a batch: hand the descriptor back without status
		// and hold the interrupt for the second frame
		c.writeTxIntermediate(c.tx.cursor)
		c.tx.status |= StatusProcessingSecond
		c.tx.advance(descriptor.Width)
		return
	}
	c.tx.status &^= StatusProcessingSecond

	wb := descriptor.TxWriteBack{
		FirstDescriptor: desc.FirstDescriptor,
		LastDescriptor:  true,
		Underflow:       underflow,
	}
	if err := descriptor.WriteTxBack(c.mem, c.tx.cursor, wb); err != nil {
		log.Panic(err)
	}
	c.hookDescriptor(HookPosDescriptorWriteBack, "tx", c.tx.cursor, wb)

	if desc.InterruptOnCompletion {
		c.intr.Assert(irq.TransmitComplete)
	}

	c.tx.advance(descriptor.Width)
}

func (c *Comp) writeTxIntermediate(addr uint64) {
	if err := descriptor.WriteTxIntermediate(c.mem, addr); err != nil {
		log.Panic(err)
	}
	c.hookDescriptor(HookPosDescriptorWriteBack, "tx", addr,
		descriptor.TxWriteBack{})
}

func (c *Comp) writeTxContextBack(addr uint64) {
	if err := descriptor.WriteContextBack(c.mem, addr); err != nil {
		log.Panic(err)
	}
	c.hookDescriptor(HookPosDescriptorWriteBack, "tx", addr,
		descriptor.TxWriteBack{})
}

// stopTx stops the transmit engine, discarding any half-assembled frame.
func (c *Comp) stopTx() {
	if c.tx.status.Stopped() {
		return
	}

	c.asm = nil
	c.tx.status = 0
	c.regs.SetTxProcessStopped(true)
	c.intr.Assert(irq.TransmitProcessStopped)
}
