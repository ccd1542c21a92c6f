package dma

import (
	"encoding/binary"

	"github.com/sarchlab/eqos/descriptor"
	"github.com/sarchlab/eqos/eth"
)

// An assembler accumulates the payload of one outbound frame across the
// descriptors that carry it. Nothing is emitted before finalize.
type assembler struct {
	tso bool

	// plain mode
	disablePad bool
	checksum   descriptor.ChecksumControl

	// TSO mode
	mss    uint32
	header []byte

	parts     [][]byte
	underflow bool
}

func newPlainAssembler(
	disablePad bool,
	checksum descriptor.ChecksumControl,
) *assembler {
	return &assembler{
		disablePad: disablePad,
		checksum:   checksum,
	}
}

func newTSOAssembler(mss uint32) *assembler {
	return &assembler{
		tso: true,
		mss: mss,
	}
}

// pushHeader installs the header template. TSO mode only.
func (a *assembler) pushHeader(b []byte) {
	a.header = b
}

// push appends one payload buffer.
func (a *assembler) push(b []byte) {
	a.parts = append(a.parts, b)
}

func (a *assembler) payload() []byte {
	total := 0
	for _, p := range a.parts {
		total += len(p)
	}

	out := make([]byte, 0, total)
	for _, p := range a.parts {
		out = append(out, p...)
	}
	return out
}

// finalize produces the completed frames: exactly one in plain mode, one
// per segment in TSO mode.
func (a *assembler) finalize() []*eth.Frame {
	if a.tso {
		return a.finalizeTSO()
	}
	return a.finalizePlain()
}

func (a *assembler) finalizePlain() []*eth.Frame {
	data := a.payload()

	if a.checksum >= descriptor.ChecksumIPHeader {
		eth.InsertIPv4HeaderChecksum(data)
	}
	if a.checksum >= descriptor.ChecksumIPHeaderPayload {
		eth.InsertTransportChecksum(
			data, a.checksum == descriptor.ChecksumFull)
	}

	return []*eth.Frame{eth.NewFrame(a.seal(data))}
}

// finalizeTSO splits the payload into segments no larger than the maximum
// segment size, replicating the header template and adjusting its length
// and sequence fields per segment.
func (a *assembler) finalizeTSO() []*eth.Frame {
	payload := a.payload()
	if len(payload) == 0 {
		return nil
	}

	mss := int(a.mss)
	if mss <= 0 {
		mss = len(payload)
	}

	info, parsed := eth.ParseHeaders(a.header)

	var frames []*eth.Frame
	for off := 0; off < len(payload); off += mss {
		end := off + mss
		if end > len(payload) {
			end = len(payload)
		}

		seg := make([]byte, 0, len(a.header)+end-off)
		seg = append(seg, a.header...)
		seg = append(seg, payload[off:end]...)

		if parsed {
			patchSegmentHeaders(seg, info, off, end == len(payload))
		}

		frames = append(frames, eth.NewFrame(a.seal(seg)))
	}

	return frames
}

// seal pads a frame to the minimum length and appends the FCS, unless
// padding is disabled.
func (a *assembler) seal(data []byte) []byte {
	if a.disablePad {
		return data
	}

	for len(data) < eth.MinFrameLength {
		data = append(data, 0)
	}
	return eth.AppendFCS(data)
}

// TCP flag bits in the byte at offset 13 of the TCP header.
const (
	tcpFlagFIN = 1 << 0
	tcpFlagPSH = 1 << 3
)

// patchSegmentHeaders rewrites the per-segment header fields: the IP
// length, the TCP sequence number advanced by the payload offset, and the
// FIN/PSH flags masked off all segments but the last. Checksums are
// reinserted afterwards.
func patchSegmentHeaders(seg []byte, info eth.HeaderInfo, off int, last bool) {
	ip := seg[info.IPOffset:]
	l4Len := len(seg) - info.L4Offset

	switch info.IPVersion {
	case 4:
		binary.BigEndian.PutUint16(ip[2:4], uint16(info.IPHeaderLen+l4Len))
	case 6:
		binary.BigEndian.PutUint16(ip[4:6], uint16(l4Len))
	}

	if info.Proto == eth.ProtoTCP {
		tcp := seg[info.L4Offset:]
		if len(tcp) >= 20 {
			seq := binary.BigEndian.Uint32(tcp[4:8])
			binary.BigEndian.PutUint32(tcp[4:8], seq+uint32(off))

			if !last {
				tcp[13] &^= tcpFlagFIN | tcpFlagPSH
			}
		}
	}

	eth.InsertIPv4HeaderChecksum(seg)
	eth.InsertTransportChecksum(seg, true)
}
