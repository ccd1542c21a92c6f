package dma

// A RegisterFile exposes the control and status fields the DMA engines
// consult. The bit-level register layout belongs to the register block of
// the surrounding MAC model, not to this package; the engines only see
// named fields.
type RegisterFile interface {
	RxEnabled() bool
	RxStarted() bool
	RxDescListAddr() uint64
	RxDescRingLength() uint32
	RxBuffer1Size() uint32
	RxBuffer2Size() uint32
	RxWatchdogCount() uint32
	CRCCheckDisabled() bool
	TimestampEnabled() bool

	TxEnabled() bool
	TxStarted() bool
	TxDescListAddr() uint64
	TxDescRingLength() uint32
	TSOEnabled() bool
	OperateOnSecondFrame() bool

	SetRxProcessStopped(stopped bool)
	SetTxProcessStopped(stopped bool)
	SetRxBufferUnavailable(unavailable bool)
	SetTxBufferUnavailable(unavailable bool)
}

// Regs is a plain-struct RegisterFile for simulations and tests.
type Regs struct {
	RxEnable        bool
	RxStart         bool
	RxDescList      uint64
	RxRingLen       uint32
	RxBuf1Size      uint32
	RxBuf2Size      uint32
	WatchdogCount   uint32
	DisableCRCCheck bool
	TimestampEnable bool

	TxEnable    bool
	TxStart     bool
	TxDescList  uint64
	TxRingLen   uint32
	TSOEnable   bool
	SecondFrame bool

	RxStopped    bool
	TxStopped    bool
	RxBufUnavail bool
	TxBufUnavail bool
}

func (r *Regs) RxEnabled() bool          { return r.RxEnable }
func (r *Regs) RxStarted() bool          { return r.RxStart }
func (r *Regs) RxDescListAddr() uint64   { return r.RxDescList }
func (r *Regs) RxDescRingLength() uint32 { return r.RxRingLen }
func (r *Regs) RxBuffer1Size() uint32    { return r.RxBuf1Size }
func (r *Regs) RxBuffer2Size() uint32    { return r.RxBuf2Size }
func (r *Regs) RxWatchdogCount() uint32  { return r.WatchdogCount }
func (r *Regs) CRCCheckDisabled() bool   { return r.DisableCRCCheck }
func (r *Regs) TimestampEnabled() bool   { return r.TimestampEnable }

func (r *Regs) TxEnabled() bool            { return r.TxEnable }
func (r *Regs) TxStarted() bool            { return r.TxStart }
func (r *Regs) TxDescListAddr() uint64     { return r.TxDescList }
func (r *Regs) TxDescRingLength() uint32   { return r.TxRingLen }
func (r *Regs) TSOEnabled() bool           { return r.TSOEnable }
func (r *Regs) OperateOnSecondFrame() bool { return r.SecondFrame }

func (r *Regs) SetRxProcessStopped(stopped bool)        { r.RxStopped = stopped }
func (r *Regs) SetTxProcessStopped(stopped bool)        { r.TxStopped = stopped }
func (r *Regs) SetRxBufferUnavailable(unavailable bool) { r.RxBufUnavail = unavailable }
func (r *Regs) SetTxBufferUnavailable(unavailable bool) { r.TxBufUnavail = unavailable }
