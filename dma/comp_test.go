package dma

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/eqos/descriptor"
	"github.com/sarchlab/eqos/eth"
	"github.com/sarchlab/eqos/irq"
	"github.com/sarchlab/eqos/mem"
	"github.com/sarchlab/eqos/sim"
	"github.com/sarchlab/eqos/timer"
)

type lineRecorder struct {
	levels []bool
}

func (r *lineRecorder) Func(ctx sim.HookCtx) {
	if ctx.Pos == HookPosInterruptLine {
		r.levels = append(r.levels, ctx.Item.(bool))
	}
}

var _ = Describe("DMA Component", func() {
	var (
		storage *mem.Storage
		regs    *Regs
		comp    *Comp
	)

	BeforeEach(func() {
		storage = mem.NewStorage(1 * mem.MB)
		regs = &Regs{
			RxEnable:   true,
			RxStart:    true,
			RxDescList: 0x1000,
			RxRingLen:  4,
			RxBuf1Size: 256,
			RxBuf2Size: 256,
		}
		comp = MakeBuilder().
			WithStorage(storage).
			WithRegisterFile(regs).
			WithWatchdog(timer.Nop{}).
			Build("DMA")
	})

	prepareDesc := func(i int, bufAddr uint64) {
		addr := regs.RxDescList + uint64(i)*descriptor.Width
		Expect(descriptor.EncodeRx(storage, addr, descriptor.RxDesc{
			Owned:                 true,
			Buffer1:               bufAddr,
			Buffer1Valid:          true,
			InterruptOnCompletion: true,
		})).To(Succeed())
	}

	It("should raise the line for an enabled cause and drop it on "+
		"acknowledge", func() {
		comp.InterruptController().SetEnable(irq.ReceiveComplete, true)
		prepareDesc(0, 0x4000)

		comp.OnFrameArrived(eth.NewFrame(testFrameBytes(64)))
		Expect(comp.InterruptLine()).To(BeTrue())

		comp.AcknowledgeInterrupt(irq.ReceiveComplete)
		Expect(comp.InterruptLine()).To(BeFalse())
	})

	It("should fire the line hook only on edges", func() {
		recorder := &lineRecorder{}
		comp.AcceptHook(recorder)
		comp.InterruptController().SetEnable(irq.ReceiveComplete, true)
		prepareDesc(0, 0x4000)
		prepareDesc(1, 0x4100)

		comp.OnFrameArrived(eth.NewFrame(testFrameBytes(64)))
		comp.OnFrameArrived(eth.NewFrame(testFrameBytes(64)))
		Expect(recorder.levels).To(Equal([]bool{true}))

		comp.AcknowledgeInterrupt(irq.ReceiveComplete)
		Expect(recorder.levels).To(Equal([]bool{true, false}))
	})

	It("should return to the power-on state on reset", func() {
		comp.InterruptController().SetEnable(irq.ReceiveComplete, true)
		prepareDesc(0, 0x4000)
		comp.OnFrameArrived(eth.NewFrame(testFrameBytes(64)))
		comp.OnFrameArrived(eth.NewFrame(testFrameBytes(64)))
		comp.goodPackets = 5

		comp.Reset()

		Expect(comp.RxStatus().Stopped()).To(BeTrue())
		Expect(comp.TxStatus().Stopped()).To(BeTrue())
		Expect(comp.PendingInbound()).To(Equal(0))
		Expect(comp.InterruptController().Pending()).To(BeEmpty())
		Expect(comp.InterruptLine()).To(BeFalse())
		Expect(comp.TransmitGoodPackets()).To(Equal(uint64(0)))
		Expect(regs.RxStopped).To(BeFalse())
		Expect(regs.RxBufUnavail).To(BeFalse())

		Expect(comp.InterruptController().Enabled(irq.ReceiveComplete)).
			To(BeTrue())
	})
})
