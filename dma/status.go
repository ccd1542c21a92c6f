package dma

import "strings"

// EngineStatus is a bitset of the orthogonal run-state flags of one DMA
// direction. The zero value is Stopped. Suspended can co-occur with
// Running; the processing flags are transmit-only. Stopped never co-occurs
// with any other flag, which the engines enforce by clearing the whole set
// on every stop.
type EngineStatus uint8

// Engine status flags.
const (
	StatusRunning EngineStatus = 1 << iota
	StatusSuspended
	StatusProcessingIntermediate
	StatusProcessingSecond
)

// Has reports whether all the given flags are set.
func (s EngineStatus) Has(flags EngineStatus) bool {
	return s&flags == flags
}

// Stopped reports whether the engine is not running.
func (s EngineStatus) Stopped() bool {
	return s&StatusRunning == 0
}

func (s EngineStatus) String() string {
	if s == 0 {
		return "Stopped"
	}

	var parts []string
	if s.Has(StatusRunning) {
		parts = append(parts, "Running")
	}
	if s.Has(StatusSuspended) {
		parts = append(parts, "Suspended")
	}
	if s.Has(StatusProcessingIntermediate) {
		parts = append(parts, "ProcessingIntermediate")
	}
	if s.Has(StatusProcessingSecond) {
		parts = append(parts, "ProcessingSecond")
	}

	return strings.Join(parts, "|")
}

// A ring tracks one descriptor ring: where it starts, where the engine
// currently is, and whether every entry has been consumed since the last
// start. An exhausted ring stays finished until the engine is restarted;
// it does not wrap on its own.
type ring struct {
	start    uint64
	cursor   uint64
	length   uint32
	consumed uint32
	finished bool
	status   EngineStatus
}

func (r *ring) restart(start uint64, length uint32) {
	r.start = start
	r.cursor = start
	r.length = length
	r.consumed = 0
	r.finished = length == 0
	r.status = StatusRunning
}

// advance moves the cursor past the descriptor that was just written back.
func (r *ring) advance(descWidth uint64) {
	r.cursor += descWidth
	r.consumed++
	if r.consumed >= r.length {
		r.finished = true
	}
}
