package main

import (
	"encoding/binary"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/eqos/datarecording"
	"github.com/sarchlab/eqos/descriptor"
	"github.com/sarchlab/eqos/dma"
	"github.com/sarchlab/eqos/eth"
	"github.com/sarchlab/eqos/irq"
	"github.com/sarchlab/eqos/mem"
	"github.com/sarchlab/eqos/sim"
)

// Bus memory layout of the loopback scenario.
const (
	txRingBase = 0x1000
	rxRingBase = 0x8000
	txBufBase  = 0x10_0000
	rxBufBase  = 0x20_0000
	txBufStep  = 0x1000
	rxBufSize  = 2048
)

var loopbackCmd = &cobra.Command{
	Use: "loopback",
	Short: "Send frames through the transmit ring and receive them back " +
		"on the receive ring.",
	Run: func(cmd *cobra.Command, args []string) {
		frames, _ := cmd.Flags().GetInt("frames")
		payload, _ := cmd.Flags().GetInt("payload")
		mss, _ := cmd.Flags().GetUint32("mss")
		record, _ := cmd.Flags().GetString("record")
		verbose, _ := cmd.Flags().GetBool("verbose")

		runLoopback(frames, payload, mss, record, verbose)
	},
}

func init() {
	loopbackCmd.Flags().Int("frames", 8,
		"number of frames to send")
	loopbackCmd.Flags().Int("payload", 256,
		"TCP payload bytes per frame")
	loopbackCmd.Flags().Uint32("mss", 0,
		"segment size for TCP segmentation offload, 0 to disable")
	loopbackCmd.Flags().String("record", "",
		"record completed frames into this SQLite file")
	loopbackCmd.Flags().Bool("verbose", false,
		"log descriptor and frame traffic")

	rootCmd.AddCommand(loopbackCmd)
}

// A loopbackSink feeds every transmitted frame back into the receive
// path.
type loopbackSink struct {
	comp *dma.Comp
}

func (s *loopbackSink) FrameReady(f *eth.Frame) {
	s.comp.OnFrameArrived(f)
}

// A deliveryCounter counts the frames both engines complete.
type deliveryCounter struct {
	delivered int
	sent      int
}

func (c *deliveryCounter) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case dma.HookPosFrameDelivered:
		c.delivered++
	case dma.HookPosFrameSent:
		c.sent++
	}
}

func runLoopback(frames, payload int, mss uint32, record string, verbose bool) {
	engine := sim.NewSerialEngine()
	storage := mem.NewStorage(64 * mem.MB)
	regs := &dma.Regs{}
	sink := &loopbackSink{}

	comp := dma.MakeBuilder().
		WithEngine(engine).
		WithStorage(storage).
		WithRegisterFile(regs).
		WithEgressSink(sink).
		Build("EQOS")
	sink.comp = comp

	counter := &deliveryCounter{}
	comp.AcceptHook(counter)

	if verbose {
		comp.AcceptHook(dma.NewDescriptorLogger(
			log.New(os.Stdout, "", 0)))
	}
	if record != "" {
		recorder := datarecording.New(record)
		comp.AcceptHook(dma.NewFrameRecorder(recorder))
	}

	comp.InterruptController().SetEnable(irq.ReceiveComplete, true)
	comp.InterruptController().SetEnable(irq.TransmitComplete, true)

	txRingLen := prepareTxRing(storage, frames, payload, mss)
	rxRingLen := prepareRxRing(storage, frames*8)

	regs.TxEnable = true
	regs.TxStart = true
	regs.TxDescList = txRingBase
	regs.TxRingLen = uint32(txRingLen)
	regs.TSOEnable = mss > 0

	regs.RxEnable = true
	regs.RxStart = true
	regs.RxDescList = rxRingBase
	regs.RxRingLen = uint32(rxRingLen)
	regs.RxBuf1Size = rxBufSize
	regs.WatchdogCount = 1000

	if err := comp.NotifyRegisterWrite(); err != nil {
		log.Fatal(err)
	}
	if err := engine.Run(); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("transmitted %d frames, received %d frames\n",
		counter.sent, counter.delivered)
	fmt.Printf("good packet counter: %d\n", comp.TransmitGoodPackets())
	fmt.Printf("pending interrupt causes: %v\n",
		comp.InterruptController().Pending())
}

// prepareTxRing lays out the transmit buffers and descriptors and returns
// the ring length.
func prepareTxRing(storage *mem.Storage, frames, payload int, mss uint32) int {
	slot := 0
	encode := func(d descriptor.TxDesc) {
		d.Owned = true
		addr := uint64(txRingBase + slot*descriptor.Width)
		if err := descriptor.EncodeTx(storage, addr, d); err != nil {
			log.Fatal(err)
		}
		slot++
	}

	if mss > 0 {
		encode(descriptor.TxDesc{
			Kind:               descriptor.TxKindContext,
			MaximumSegmentSize: mss,
		})
	}

	for i := 0; i < frames; i++ {
		header, body := tcpFrameParts(uint32(1+i*payload), payload)
		bufAddr := uint64(txBufBase + i*txBufStep)

		if mss > 0 {
			// header template in buffer 1, payload in buffer 2
			payloadAddr := bufAddr + uint64(len(header))
			mustWrite(storage, bufAddr, header)
			mustWrite(storage, payloadAddr, body)
			encode(descriptor.TxDesc{
				FirstDescriptor:       true,
				LastDescriptor:        true,
				TSOEnable:             true,
				InterruptOnCompletion: true,
				Buffer1:               bufAddr,
				Buffer1Length:         uint32(len(header)),
				Buffer2:               payloadAddr,
				Buffer2Length:         uint32(len(body)),
			})
			continue
		}

		raw := append(header, body...)
		mustWrite(storage, bufAddr, raw)
		encode(descriptor.TxDesc{
			FirstDescriptor:       true,
			LastDescriptor:        true,
			InterruptOnCompletion: true,
			ChecksumControl:       descriptor.ChecksumFull,
			Buffer1:               bufAddr,
			Buffer1Length:         uint32(len(raw)),
		})
	}

	return slot
}

// prepareRxRing lays out count receive descriptors with one buffer each
// and returns the ring length.
func prepareRxRing(storage *mem.Storage, count int) int {
	for i := 0; i < count; i++ {
		addr := uint64(rxRingBase + i*descriptor.Width)
		err := descriptor.EncodeRx(storage, addr, descriptor.RxDesc{
			Owned:                 true,
			Buffer1:               uint64(rxBufBase + i*rxBufSize),
			Buffer1Valid:          true,
			InterruptOnCompletion: true,
		})
		if err != nil {
			log.Fatal(err)
		}
	}
	return count
}

// tcpFrameParts builds the header and payload of one IPv4 TCP frame.
// Checksums are left zero for the engine to fill in.
func tcpFrameParts(seq uint32, payloadLen int) (header, payload []byte) {
	header = make([]byte, 54)

	copy(header[0:6], []byte{0x02, 0, 0, 0, 0, 1})
	copy(header[6:12], []byte{0x02, 0, 0, 0, 0, 2})
	binary.BigEndian.PutUint16(header[12:14], eth.EtherTypeIPv4)

	ip := header[14:]
	ip[0] = 0x45
	binary.BigEndian.PutUint16(ip[2:4], uint16(40+payloadLen))
	ip[8] = 64
	ip[9] = 6
	copy(ip[12:16], []byte{10, 0, 0, 1})
	copy(ip[16:20], []byte{10, 0, 0, 2})

	tcp := header[34:]
	binary.BigEndian.PutUint16(tcp[0:2], 4000)
	binary.BigEndian.PutUint16(tcp[2:4], 80)
	binary.BigEndian.PutUint32(tcp[4:8], seq)
	tcp[12] = 5 << 4
	tcp[13] = 0x18

	payload = make([]byte, payloadLen)
	for i := range payload {
		payload[i] = byte(0x30 + i%64)
	}

	return header, payload
}

func mustWrite(storage *mem.Storage, addr uint64, b []byte) {
	if err := storage.Write(addr, b); err != nil {
		log.Fatal(err)
	}
}
