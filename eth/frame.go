// Package eth provides the Ethernet frame representation shared by the
// receive and transmit paths of the MAC model.
package eth

import (
	"encoding/binary"

	"github.com/sarchlab/eqos/sim"
)

// Header geometry, in bytes.
const (
	HeaderLength = 14
	VLANTagBytes = 4
	FCSBytes     = 4

	// MinFrameLength is the shortest valid frame without the FCS. Shorter
	// transmit frames are zero-padded up to this length.
	MinFrameLength = 60
)

// EtherType values the model classifies.
const (
	EtherTypeIPv4       uint16 = 0x0800
	EtherTypeARP        uint16 = 0x0806
	EtherTypeVLAN       uint16 = 0x8100
	EtherTypeIPv6       uint16 = 0x86DD
	EtherTypeMACControl uint16 = 0x8808

	// lengthTypeThreshold separates IEEE 802.3 length fields from
	// EtherTypes. Values below it are payload lengths.
	lengthTypeThreshold uint16 = 0x0600
)

// LengthTypeClass is the classification of a frame's length/type field,
// encoded the way the receive write-back descriptor reports it.
type LengthTypeClass uint8

// Length/type classifications.
const (
	ClassLength     LengthTypeClass = 0
	ClassType       LengthTypeClass = 1
	ClassARP        LengthTypeClass = 3
	ClassVLAN       LengthTypeClass = 4
	ClassMACControl LengthTypeClass = 5
)

// TransportProto is the transport protocol carried by a frame, encoded the
// way the receive write-back descriptor reports it.
type TransportProto uint8

// Transport protocols.
const (
	ProtoUnknown TransportProto = 0
	ProtoUDP     TransportProto = 1
	ProtoTCP     TransportProto = 2
	ProtoICMP    TransportProto = 3
)

// IP protocol numbers.
const (
	ipProtoICMP   = 1
	ipProtoTCP    = 6
	ipProtoUDP    = 17
	ipProtoICMPv6 = 58
)

// A Frame is one Ethernet frame moving through the model. Data holds the
// full on-wire bytes, including the FCS when one is present.
type Frame struct {
	ID   string
	Data []byte
}

// NewFrame wraps the given bytes in a Frame with a fresh ID.
func NewFrame(data []byte) *Frame {
	return &Frame{
		ID:   sim.GetIDGenerator().Generate(),
		Data: data,
	}
}

// Length returns the number of on-wire bytes.
func (f *Frame) Length() int {
	return len(f.Data)
}

// LengthOrType returns the raw 16-bit length/type field, or 0 if the frame
// is shorter than an Ethernet header.
func (f *Frame) LengthOrType() uint16 {
	if len(f.Data) < HeaderLength {
		return 0
	}
	return binary.BigEndian.Uint16(f.Data[12:14])
}

// LengthTypeClass classifies the length/type field.
func (f *Frame) LengthTypeClass() LengthTypeClass {
	lt := f.LengthOrType()

	switch {
	case lt < lengthTypeThreshold:
		return ClassLength
	case lt == EtherTypeARP:
		return ClassARP
	case lt == EtherTypeVLAN:
		return ClassVLAN
	case lt == EtherTypeMACControl:
		return ClassMACControl
	default:
		return ClassType
	}
}

// IPVersion returns 4 or 6 for IP frames, or 0 otherwise.
func (f *Frame) IPVersion() int {
	info, ok := ParseHeaders(f.Data)
	if !ok {
		return 0
	}
	return info.IPVersion
}

// TransportProto returns the transport protocol the frame carries.
func (f *Frame) TransportProto() TransportProto {
	info, ok := ParseHeaders(f.Data)
	if !ok {
		return ProtoUnknown
	}
	return info.Proto
}

// HeaderInfo describes the protocol headers at the front of a frame.
type HeaderInfo struct {
	EtherType   uint16 // after an optional VLAN tag
	IPVersion   int
	IPOffset    int
	IPHeaderLen int
	L4Offset    int
	Proto       TransportProto
}

// ParseHeaders locates the IP and transport headers of a frame. It returns
// false when the frame does not carry a parseable IP packet.
func ParseHeaders(b []byte) (HeaderInfo, bool) {
	if len(b) < HeaderLength {
		return HeaderInfo{}, false
	}

	info := HeaderInfo{
		EtherType: binary.BigEndian.Uint16(b[12:14]),
		IPOffset:  HeaderLength,
	}

	if info.EtherType == EtherTypeVLAN {
		if len(b) < HeaderLength+VLANTagBytes {
			return HeaderInfo{}, false
		}
		info.EtherType = binary.BigEndian.Uint16(b[16:18])
		info.IPOffset = HeaderLength + VLANTagBytes
	}

	ip := b[info.IPOffset:]

	switch info.EtherType {
	case EtherTypeIPv4:
		if len(ip) < 20 || ip[0]>>4 != 4 {
			return HeaderInfo{}, false
		}
		info.IPVersion = 4
		info.IPHeaderLen = int(ip[0]&0x0f) * 4
		if info.IPHeaderLen < 20 || len(ip) < info.IPHeaderLen {
			return HeaderInfo{}, false
		}
		info.Proto = transportProto(ip[9])
	case EtherTypeIPv6:
		if len(ip) < 40 || ip[0]>>4 != 6 {
			return HeaderInfo{}, false
		}
		info.IPVersion = 6
		info.IPHeaderLen = 40
		info.Proto = transportProto(ip[6])
	default:
		return HeaderInfo{}, false
	}

	info.L4Offset = info.IPOffset + info.IPHeaderLen
	if len(b) < info.L4Offset {
		return HeaderInfo{}, false
	}

	return info, true
}

func transportProto(ipProto byte) TransportProto {
	switch ipProto {
	case ipProtoTCP:
		return ProtoTCP
	case ipProtoUDP:
		return ProtoUDP
	case ipProtoICMP, ipProtoICMPv6:
		return ProtoICMP
	default:
		return ProtoUnknown
	}
}
