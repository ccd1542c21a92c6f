package eth

import (
	"encoding/binary"
	"hash/crc32"
)

// ComputeFCS returns the CRC-32 frame check sequence over b.
func ComputeFCS(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}

// AppendFCS returns b with its FCS appended. The FCS is stored
// least-significant byte first, matching wire order.
func AppendFCS(b []byte) []byte {
	fcs := make([]byte, FCSBytes)
	binary.LittleEndian.PutUint32(fcs, ComputeFCS(b))
	return append(b, fcs...)
}

// CheckFCS reports whether the last four bytes of the frame are a valid
// FCS over the rest. Frames too short to carry an FCS fail the check.
func (f *Frame) CheckFCS() bool {
	n := len(f.Data)
	if n < HeaderLength+FCSBytes {
		return false
	}

	want := binary.LittleEndian.Uint32(f.Data[n-FCSBytes:])
	return ComputeFCS(f.Data[:n-FCSBytes]) == want
}

// InsertIPv4HeaderChecksum recomputes the IPv4 header checksum of the
// frame in place. Frames that are not IPv4 are left untouched.
func InsertIPv4HeaderChecksum(b []byte) {
	info, ok := ParseHeaders(b)
	if !ok || info.IPVersion != 4 {
		return
	}

	hdr := b[info.IPOffset : info.IPOffset+info.IPHeaderLen]
	hdr[10], hdr[11] = 0, 0
	sum := finishChecksum(sumBytes(0, hdr))
	binary.BigEndian.PutUint16(hdr[10:12], sum)
}

// InsertTransportChecksum recomputes the TCP or UDP checksum of the frame
// in place, covering the transport header and payload. When withPseudo is
// set the IP pseudo-header is included, as required on the wire. Frames
// without a TCP or UDP segment are left untouched.
func InsertTransportChecksum(b []byte, withPseudo bool) {
	info, ok := ParseHeaders(b)
	if !ok {
		return
	}

	var ckOffset int
	switch info.Proto {
	case ProtoTCP:
		ckOffset = 16
	case ProtoUDP:
		ckOffset = 6
	default:
		return
	}

	seg := b[info.L4Offset:]
	if len(seg) < ckOffset+2 {
		return
	}

	seg[ckOffset], seg[ckOffset+1] = 0, 0

	var sum uint32
	if withPseudo {
		sum = pseudoHeaderSum(b, info, uint16(len(seg)))
	}
	sum = sumBytes(sum, seg)

	binary.BigEndian.PutUint16(seg[ckOffset:ckOffset+2], finishChecksum(sum))
}

func pseudoHeaderSum(b []byte, info HeaderInfo, segLen uint16) uint32 {
	ip := b[info.IPOffset:]

	var sum uint32
	switch info.IPVersion {
	case 4:
		sum = sumBytes(sum, ip[12:20]) // src, dst
		sum += uint32(ip[9])           // protocol
	case 6:
		sum = sumBytes(sum, ip[8:40]) // src, dst
		sum += uint32(ip[6])          // next header
	}
	sum += uint32(segLen)

	return sum
}

// sumBytes adds b to a running one's-complement sum of 16-bit words.
func sumBytes(sum uint32, b []byte) uint32 {
	for i := 0; i+1 < len(b); i += 2 {
		sum += uint32(binary.BigEndian.Uint16(b[i : i+2]))
	}
	if len(b)%2 == 1 {
		sum += uint32(b[len(b)-1]) << 8
	}
	return sum
}

func finishChecksum(sum uint32) uint16 {
	for sum > 0xffff {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return ^uint16(sum)
}
