package irq

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Interrupt Aggregator", func() {
	var c *Controller

	BeforeEach(func() {
		c = NewController()
	})

	It("should keep the line low with no cause asserted", func() {
		for cause := Cause(0); cause < NormalSummary; cause++ {
			c.SetEnable(cause, true)
		}

		Expect(c.Line()).To(BeFalse())
	})

	It("should keep the line low for a disabled cause", func() {
		c.Assert(ReceiveComplete)

		Expect(c.Line()).To(BeFalse())
	})

	It("should flip the line when the enable of a held cause toggles",
		func() {
			for cause := Cause(0); cause < NormalSummary; cause++ {
				c.Assert(cause)

				c.SetEnable(cause, true)
				Expect(c.Line()).To(BeTrue(), "cause %s", cause)

				c.SetEnable(cause, false)
				Expect(c.Line()).To(BeFalse(), "cause %s", cause)

				c.Clear(cause)
			}
		})

	It("should compute the normal summary from its enabled members", func() {
		c.Assert(ReceiveComplete)

		Expect(c.Raw(NormalSummary)).To(BeFalse())

		c.SetEnable(ReceiveComplete, true)
		Expect(c.Raw(NormalSummary)).To(BeTrue())
		Expect(c.Raw(AbnormalSummary)).To(BeFalse())
	})

	It("should compute the abnormal summary from its enabled members",
		func() {
			c.Assert(ReceiveBufferUnavailable)
			c.SetEnable(ReceiveBufferUnavailable, true)

			Expect(c.Raw(AbnormalSummary)).To(BeTrue())
			Expect(c.Raw(NormalSummary)).To(BeFalse())
		})

	It("should gate the summaries by their own enables", func() {
		c.Assert(ReceiveComplete)
		c.SetEnable(ReceiveComplete, true)

		// the individually enabled cause already raises the line
		Expect(c.Line()).To(BeTrue())

		c.SetEnable(ReceiveComplete, false)
		c.SetEnable(NormalSummary, true)

		// summary enabled, but the member is masked, so its summary is low
		Expect(c.Line()).To(BeFalse())

		c.SetEnable(ReceiveComplete, true)
		Expect(c.Line()).To(BeTrue())
	})

	It("should hold the raw flag until cleared", func() {
		c.Assert(TransmitComplete)
		c.SetEnable(TransmitComplete, true)
		Expect(c.Line()).To(BeTrue())

		c.Clear(TransmitComplete)
		Expect(c.Line()).To(BeFalse())
	})

	It("should list pending causes", func() {
		c.Assert(TransmitComplete)
		c.Assert(ContextDescriptorError)

		Expect(c.Pending()).To(
			ConsistOf(TransmitComplete, ContextDescriptorError))
	})

	It("should clear raw flags but keep enables on reset", func() {
		c.Assert(TransmitComplete)
		c.SetEnable(TransmitComplete, true)

		c.Reset()

		Expect(c.Line()).To(BeFalse())
		Expect(c.Enabled(TransmitComplete)).To(BeTrue())
	})

	It("should panic when asserting a summary cause", func() {
		Expect(func() { c.Assert(NormalSummary) }).To(Panic())
	})
})
