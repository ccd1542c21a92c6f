package dma

import (
	"encoding/binary"

	"github.com/sarchlab/eqos/eth"
)

// testFrameBytes returns n on-wire bytes: a deterministic pattern with a
// valid frame check sequence appended.
func testFrameBytes(n int) []byte {
	b := make([]byte, n-eth.FCSBytes)
	for i := range b {
		b[i] = byte(i)
	}
	return eth.AppendFCS(b)
}

// ipv4TCPHeader builds a 54-byte Ethernet+IPv4+TCP header with the given
// TCP sequence number and IP total length matching payloadLen. Checksums
// are left zero.
func ipv4TCPHeader(seq uint32, payloadLen int) []byte {
	b := make([]byte, 54)

	copy(b[0:6], []byte{0x02, 0, 0, 0, 0, 1})
	copy(b[6:12], []byte{0x02, 0, 0, 0, 0, 2})
	binary.BigEndian.PutUint16(b[12:14], eth.EtherTypeIPv4)

	ip := b[14:]
	ip[0] = 0x45
	binary.BigEndian.PutUint16(ip[2:4], uint16(40+payloadLen))
	ip[8] = 64
	ip[9] = 6
	copy(ip[12:16], []byte{10, 0, 0, 1})
	copy(ip[16:20], []byte{10, 0, 0, 2})

	tcp := b[34:]
	binary.BigEndian.PutUint16(tcp[0:2], 4000)
	binary.BigEndian.PutUint16(tcp[2:4], 80)
	binary.BigEndian.PutUint32(tcp[4:8], seq)
	tcp[12] = 5 << 4
	tcp[13] = 0x18 // PSH|ACK

	return b
}

// ipv4TCPFrameBytes builds a complete on-wire IPv4 TCP frame with valid
// checksums and frame check sequence.
func ipv4TCPFrameBytes(payload []byte) []byte {
	b := append(ipv4TCPHeader(1000, len(payload)), payload...)
	eth.InsertIPv4HeaderChecksum(b)
	eth.InsertTransportChecksum(b, true)
	return eth.AppendFCS(b)
}

// patternBytes returns n bytes of a deterministic payload pattern.
func patternBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(0x30 + i%64)
	}
	return b
}
