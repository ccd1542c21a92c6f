// Package irq aggregates the DMA core's status conditions into summary
// bits and a single interrupt line.
package irq

import "log"

// A Cause is one maskable interrupt condition.
type Cause int

// Interrupt causes. NormalSummary and AbnormalSummary are computed from
// the others and cannot be asserted directly.
const (
	TransmitComplete Cause = iota
	TransmitBufferUnavailable
	ReceiveComplete
	EarlyReceive
	TransmitProcessStopped
	ReceiveProcessStopped
	ReceiveBufferUnavailable
	ContextDescriptorError
	TxPacketCounterThreshold
	NormalSummary
	AbnormalSummary
	numCauses
)

var causeNames = map[Cause]string{
	TransmitComplete:          "TransmitComplete",
	TransmitBufferUnavailable: "TransmitBufferUnavailable",
	ReceiveComplete:           "ReceiveComplete",
	EarlyReceive:              "EarlyReceive",
	TransmitProcessStopped:    "TransmitProcessStopped",
	ReceiveProcessStopped:     "ReceiveProcessStopped",
	ReceiveBufferUnavailable:  "ReceiveBufferUnavailable",
	ContextDescriptorError:    "ContextDescriptorError",
	TxPacketCounterThreshold:  "TxPacketCounterThreshold",
	NormalSummary:             "NormalSummary",
	AbnormalSummary:           "AbnormalSummary",
}

func (c Cause) String() string {
	if name, ok := causeNames[c]; ok {
		return name
	}
	return "UnknownCause"
}

var normalSet = []Cause{
	TransmitComplete,
	TransmitBufferUnavailable,
	ReceiveComplete,
	EarlyReceive,
}

var abnormalSet = []Cause{
	TransmitProcessStopped,
	ReceiveProcessStopped,
	ReceiveBufferUnavailable,
	ContextDescriptorError,
	TxPacketCounterThreshold,
}

// A Controller holds the raw flag and the enable flag of every cause and
// derives the summary bits and the line level from them.
type Controller struct {
	raw    [numCauses]bool
	enable [numCauses]bool
}

// NewController creates a Controller with all causes deasserted and
// disabled.
func NewController() *Controller {
	return &Controller{}
}

// Assert raises the raw flag of a cause. The flag stays up until Clear.
func (c *Controller) Assert(cause Cause) {
	mustNotBeSummary(cause)
	c.raw[cause] = true
}

// Clear lowers the raw flag of a cause.
func (c *Controller) Clear(cause Cause) {
	mustNotBeSummary(cause)
	c.raw[cause] = false
}

// Raw returns the raw flag of a cause. For the summary causes it returns
// the computed summary value.
func (c *Controller) Raw(cause Cause) bool {
	switch cause {
	case NormalSummary:
		return c.summaryOf(normalSet)
	case AbnormalSummary:
		return c.summaryOf(abnormalSet)
	default:
		return c.raw[cause]
	}
}

// SetEnable sets the enable flag of a cause, summaries included.
func (c *Controller) SetEnable(cause Cause, enable bool) {
	c.enable[cause] = enable
}

// Enabled returns the enable flag of a cause.
func (c *Controller) Enabled(cause Cause) bool {
	return c.enable[cause]
}

func (c *Controller) summaryOf(set []Cause) bool {
	for _, cause := range set {
		if c.raw[cause] && c.enable[cause] {
			return true
		}
	}
	return false
}

// Line returns the level of the single interrupt output: the OR of every
// enabled raw cause and of the two summaries gated by their own enables.
func (c *Controller) Line() bool {
	for cause := Cause(0); cause < NormalSummary; cause++ {
		if c.raw[cause] && c.enable[cause] {
			return true
		}
	}

	if c.enable[NormalSummary] && c.summaryOf(normalSet) {
		return true
	}
	if c.enable[AbnormalSummary] && c.summaryOf(abnormalSet) {
		return true
	}

	return false
}

// Pending lists the causes whose raw flag is currently up, enabled or not.
func (c *Controller) Pending() []Cause {
	var pending []Cause
	for cause := Cause(0); cause < NormalSummary; cause++ {
		if c.raw[cause] {
			pending = append(pending, cause)
		}
	}
	return pending
}

// Reset deasserts every raw flag, keeping the enables.
func (c *Controller) Reset() {
	c.raw = [numCauses]bool{}
}

func mustNotBeSummary(cause Cause) {
	if cause == NormalSummary || cause == AbnormalSummary {
		log.Panicf("cause %s is computed and cannot be set directly", cause)
	}
}
