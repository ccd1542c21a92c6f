// Package descriptor encodes and decodes the fixed-layout DMA ring
// descriptors in bus memory.
//
// Every descriptor is 16 bytes: four little-endian 32-bit words DES0 to
// DES3. Each function performs exactly one Storage access; walking a ring
// is the engines' job.
package descriptor

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/sarchlab/eqos/eth"
	"github.com/sarchlab/eqos/mem"
)

// Width is the size of one descriptor in bus memory.
const Width = 16

// ErrUnknownKind reports a descriptor whose bit pattern matches none of
// the known layouts. This marks the descriptor stream as corrupt and is
// not recoverable by the engines.
var ErrUnknownKind = errors.New("unknown descriptor kind")

// DES3 bits shared by the transmit layouts.
const (
	des3Own      = 1 << 31
	des3Ctxt     = 1 << 30
	des3Last     = 1 << 29
	des3First    = 1 << 28
	des3Reserved = 1 << 27 // must be zero on read descriptors
	des3TSE      = 1 << 18
	des3CICShift = 16
	des3CICMask  = 0x3 << des3CICShift
	des3NoPad    = 1 << 15

	des3ErrSummary = 1 << 15
	des3Underflow  = 1 << 2

	des2IOC      = 1 << 31
	des2B2LShift = 16
	des2LenMask  = 0x3fff

	ctxtDES0MSSMask = 0x3fff
)

// Receive layout bits.
const (
	rdes3IOC       = 1 << 30
	rdes3Buf2Valid = 1 << 25
	rdes3Buf1Valid = 1 << 24

	rdes3CRCErr  = 1 << 24
	rdes3CtxtErr = 1 << 19
	rdes3LenMask = 0x7fff

	rdes1IPv4    = 1 << 4
	rdes1IPv6    = 1 << 5
	rdes1LTShift = 16
	rdes1PTMask  = 0x7
)

type words [4]uint32

func fetch(st *mem.Storage, addr uint64) (words, error) {
	b, err := st.Read(addr, Width)
	if err != nil {
		return words{}, err
	}

	var w words
	for i := range w {
		w[i] = binary.LittleEndian.Uint32(b[i*4 : i*4+4])
	}
	return w, nil
}

func store(st *mem.Storage, addr uint64, w words) error {
	b := make([]byte, Width)
	for i := range w {
		binary.LittleEndian.PutUint32(b[i*4:i*4+4], w[i])
	}
	return st.Write(addr, b)
}

// ChecksumControl is the 2-bit checksum-insertion request of a transmit
// descriptor.
type ChecksumControl uint8

// Checksum-insertion levels.
const (
	ChecksumNone            ChecksumControl = 0
	ChecksumIPHeader        ChecksumControl = 1
	ChecksumIPHeaderPayload ChecksumControl = 2
	ChecksumFull            ChecksumControl = 3
)

// TxDescKind distinguishes the layouts a transmit ring entry can take.
type TxDescKind int

// Transmit descriptor kinds.
const (
	TxKindNormal TxDescKind = iota
	TxKindContext
)

// A TxDesc is the decoded read view of one transmit ring entry.
type TxDesc struct {
	Kind  TxDescKind
	Owned bool // owned by the DMA engine

	// Normal-read fields.
	Buffer1               uint64
	Buffer2               uint64
	Buffer1Length         uint32
	Buffer2Length         uint32
	FirstDescriptor       bool
	LastDescriptor        bool
	InterruptOnCompletion bool
	TSOEnable             bool
	DisablePad            bool
	ChecksumControl       ChecksumControl

	// Context fields.
	MaximumSegmentSize uint32
}

// ReadTx decodes the transmit descriptor at addr.
func ReadTx(st *mem.Storage, addr uint64) (TxDesc, error) {
	w, err := fetch(st, addr)
	if err != nil {
		return TxDesc{}, err
	}

	if w[3]&des3Reserved != 0 {
		return TxDesc{}, fmt.Errorf("descriptor at %#x: %w", addr, ErrUnknownKind)
	}

	d := TxDesc{Owned: w[3]&des3Own != 0}

	if w[3]&des3Ctxt != 0 {
		d.Kind = TxKindContext
		d.MaximumSegmentSize = w[0] & ctxtDES0MSSMask
		return d, nil
	}

	d.Kind = TxKindNormal
	d.Buffer1 = uint64(w[0])
	d.Buffer2 = uint64(w[1])
	d.Buffer1Length = w[2] & des2LenMask
	d.Buffer2Length = (w[2] >> des2B2LShift) & des2LenMask
	d.InterruptOnCompletion = w[2]&des2IOC != 0
	d.FirstDescriptor = w[3]&des3First != 0
	d.LastDescriptor = w[3]&des3Last != 0
	d.TSOEnable = w[3]&des3TSE != 0
	d.DisablePad = w[3]&des3NoPad != 0
	d.ChecksumControl = ChecksumControl((w[3] & des3CICMask) >> des3CICShift)

	return d, nil
}

// EncodeTx serializes a transmit read descriptor at addr. This is the
// software-side producer used when preparing a ring.
func EncodeTx(st *mem.Storage, addr uint64, d TxDesc) error {
	var w words

	if d.Owned {
		w[3] |= des3Own
	}

	if d.Kind == TxKindContext {
		w[3] |= des3Ctxt
		w[0] = d.MaximumSegmentSize & ctxtDES0MSSMask
		return store(st, addr, w)
	}

	w[0] = uint32(d.Buffer1)
	w[1] = uint32(d.Buffer2)
	w[2] = d.Buffer1Length & des2LenMask
	w[2] |= (d.Buffer2Length & des2LenMask) << des2B2LShift
	if d.InterruptOnCompletion {
		w[2] |= des2IOC
	}
	if d.FirstDescriptor {
		w[3] |= des3First
	}
	if d.LastDescriptor {
		w[3] |= des3Last
	}
	if d.TSOEnable {
		w[3] |= des3TSE
	}
	if d.DisablePad {
		w[3] |= des3NoPad
	}
	w[3] |= uint32(d.ChecksumControl) << des3CICShift

	return store(st, addr, w)
}

// EncodeRx serializes a receive read descriptor at addr.
func EncodeRx(st *mem.Storage, addr uint64, d RxDesc) error {
	var w words

	w[0] = uint32(d.Buffer1)
	w[2] = uint32(d.Buffer2)
	if d.Owned {
		w[3] |= des3Own
	}
	if d.Buffer1Valid {
		w[3] |= rdes3Buf1Valid
	}
	if d.Buffer2Valid {
		w[3] |= rdes3Buf2Valid
	}
	if d.InterruptOnCompletion {
		w[3] |= rdes3IOC
	}

	return store(st, addr, w)
}

// A TxWriteBack is the final status written over a processed transmit
// descriptor. Ownership always returns to the application.
type TxWriteBack struct {
	FirstDescriptor bool
	LastDescriptor  bool
	Underflow       bool
}

// WriteTxBack stores the final write-back at addr.
func WriteTxBack(st *mem.Storage, addr uint64, wb TxWriteBack) error {
	var des3 uint32
	if wb.FirstDescriptor {
		des3 |= des3First
	}
	if wb.LastDescriptor {
		des3 |= des3Last
	}
	if wb.Underflow {
		des3 |= des3Underflow | des3ErrSummary
	}
	return store(st, addr, words{0, 0, 0, des3})
}

// ParseTxWriteBack decodes the final status at addr, the way a driver
// would after the descriptor came back.
func ParseTxWriteBack(st *mem.Storage, addr uint64) (TxWriteBack, error) {
	w, err := fetch(st, addr)
	if err != nil {
		return TxWriteBack{}, err
	}

	return TxWriteBack{
		FirstDescriptor: w[3]&des3First != 0,
		LastDescriptor:  w[3]&des3Last != 0,
		Underflow:       w[3]&des3Underflow != 0,
	}, nil
}

// WriteTxIntermediate stores the intermediate write-back at addr. It only
// hands the descriptor back to the application; no status is reported.
func WriteTxIntermediate(st *mem.Storage, addr uint64) error {
	return store(st, addr, words{0, 0, 0, 0})
}

// WriteContextBack hands a consumed context descriptor back to the
// application, keeping its context marker.
func WriteContextBack(st *mem.Storage, addr uint64) error {
	return store(st, addr, words{0, 0, 0, des3Ctxt})
}

// An RxDesc is the decoded read view of one receive ring entry.
type RxDesc struct {
	Owned                 bool
	Buffer1               uint64
	Buffer2               uint64
	Buffer1Valid          bool
	Buffer2Valid          bool
	InterruptOnCompletion bool
}

// ReadRx decodes the receive descriptor at addr.
func ReadRx(st *mem.Storage, addr uint64) (RxDesc, error) {
	w, err := fetch(st, addr)
	if err != nil {
		return RxDesc{}, err
	}

	return RxDesc{
		Owned:                 w[3]&des3Own != 0,
		Buffer1:               uint64(w[0]),
		Buffer2:               uint64(w[2]),
		Buffer1Valid:          w[3]&rdes3Buf1Valid != 0,
		Buffer2Valid:          w[3]&rdes3Buf2Valid != 0,
		InterruptOnCompletion: w[3]&rdes3IOC != 0,
	}, nil
}

// An RxWriteBack is the completion status written over a consumed receive
// descriptor.
type RxWriteBack struct {
	FirstDescriptor bool
	LastDescriptor  bool
	PacketLength    uint32
	LengthOrType    uint16
	LengthTypeClass eth.LengthTypeClass
	IPv4            bool
	IPv6            bool
	Payload         eth.TransportProto
	CRCError        bool
	ContextError    bool
}

// WriteRxBack stores the receive write-back at addr.
func WriteRxBack(st *mem.Storage, addr uint64, wb RxWriteBack) error {
	var w words

	w[0] = uint32(wb.LengthOrType)

	w[1] = uint32(wb.Payload) & rdes1PTMask
	w[1] |= uint32(wb.LengthTypeClass) << rdes1LTShift
	if wb.IPv4 {
		w[1] |= rdes1IPv4
	}
	if wb.IPv6 {
		w[1] |= rdes1IPv6
	}

	w[3] = wb.PacketLength & rdes3LenMask
	if wb.FirstDescriptor {
		w[3] |= des3First
	}
	if wb.LastDescriptor {
		w[3] |= des3Last
	}
	if wb.CRCError {
		w[3] |= rdes3CRCErr | des3ErrSummary
	}
	if wb.ContextError {
		w[3] |= rdes3CtxtErr | des3ErrSummary
	}

	return store(st, addr, w)
}

// ParseRxWriteBack decodes the completion status at addr, the way a
// driver would after the descriptor came back.
func ParseRxWriteBack(st *mem.Storage, addr uint64) (RxWriteBack, error) {
	w, err := fetch(st, addr)
	if err != nil {
		return RxWriteBack{}, err
	}

	return RxWriteBack{
		FirstDescriptor: w[3]&des3First != 0,
		LastDescriptor:  w[3]&des3Last != 0,
		PacketLength:    w[3] & rdes3LenMask,
		LengthOrType:    uint16(w[0]),
		LengthTypeClass: eth.LengthTypeClass((w[1] >> rdes1LTShift) & 0x7),
		IPv4:            w[1]&rdes1IPv4 != 0,
		IPv6:            w[1]&rdes1IPv6 != 0,
		Payload:         eth.TransportProto(w[1] & rdes1PTMask),
		CRCError:        w[3]&rdes3CRCErr != 0,
		ContextError:    w[3]&rdes3CtxtErr != 0,
	}, nil
}
