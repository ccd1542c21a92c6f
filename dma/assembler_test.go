package dma

import (
	"encoding/binary"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/eqos/descriptor"
	"github.com/sarchlab/eqos/eth"
)

// ipv6TCPHeader builds a 74-byte Ethernet+IPv6+TCP header with zero
// checksums.
func ipv6TCPHeader(seq uint32, payloadLen int) []byte {
	b := make([]byte, 74)

	copy(b[0:6], []byte{0x02, 0, 0, 0, 0, 1})
	copy(b[6:12], []byte{0x02, 0, 0, 0, 0, 2})
	binary.BigEndian.PutUint16(b[12:14], eth.EtherTypeIPv6)

	ip := b[14:]
	ip[0] = 0x60
	binary.BigEndian.PutUint16(ip[4:6], uint16(20+payloadLen))
	ip[6] = 6
	ip[7] = 64
	ip[23] = 1
	ip[39] = 2

	tcp := b[54:]
	binary.BigEndian.PutUint16(tcp[0:2], 4000)
	binary.BigEndian.PutUint16(tcp[2:4], 80)
	binary.BigEndian.PutUint32(tcp[4:8], seq)
	tcp[12] = 5 << 4
	tcp[13] = 0x18

	return b
}

var _ = Describe("Frame Assembler", func() {
	It("should seal one frame from the pushed parts in plain mode", func() {
		a := newPlainAssembler(false, descriptor.ChecksumNone)
		a.push(patternBytes(20))
		a.push(patternBytes(10))

		frames := a.finalize()

		Expect(frames).To(HaveLen(1))
		Expect(frames[0].Length()).To(Equal(64))
		Expect(frames[0].Data[:20]).To(Equal(patternBytes(20)))
		Expect(frames[0].Data[20:30]).To(Equal(patternBytes(10)))
		Expect(frames[0].CheckFCS()).To(BeTrue())
	})

	It("should emit nothing when there is no payload to segment", func() {
		a := newTSOAssembler(100)
		a.pushHeader(ipv4TCPHeader(1, 0))

		Expect(a.finalize()).To(BeEmpty())
	})

	It("should treat a zero segment size as a single segment", func() {
		a := newTSOAssembler(0)
		a.pushHeader(ipv4TCPHeader(1, 0))
		a.push(patternBytes(200))

		frames := a.finalize()

		Expect(frames).To(HaveLen(1))
		Expect(frames[0].Data[54 : 54+200]).To(Equal(patternBytes(200)))
	})

	It("should replicate an unparseable header without patching", func() {
		header := []byte{0xde, 0xad, 0xbe, 0xef}
		a := newTSOAssembler(10)
		a.pushHeader(header)
		a.push(patternBytes(25))

		frames := a.finalize()

		Expect(frames).To(HaveLen(3))
		for _, f := range frames {
			Expect(f.Data[:4]).To(Equal(header))
			Expect(f.CheckFCS()).To(BeTrue())
		}
		Expect(frames[2].Data[4:9]).To(Equal(patternBytes(25)[20:]))
	})

	It("should patch IPv6 payload lengths and sequence numbers", func() {
		payload := patternBytes(60)
		a := newTSOAssembler(30)
		a.pushHeader(ipv6TCPHeader(5000, 0))
		a.push(payload)

		frames := a.finalize()

		Expect(frames).To(HaveLen(2))
		for i, f := range frames {
			ip := f.Data[14:]
			Expect(binary.BigEndian.Uint16(ip[4:6])).
				To(Equal(uint16(20 + 30)))

			tcp := f.Data[54:]
			Expect(binary.BigEndian.Uint32(tcp[4:8])).
				To(Equal(uint32(5000 + 30*i)))
		}

		// PSH is held back until the last segment
		Expect(frames[0].Data[54+13] & 0x08).To(BeZero())
		Expect(frames[1].Data[54+13] & 0x08).ToNot(BeZero())
	})
})
