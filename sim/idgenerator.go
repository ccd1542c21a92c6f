package sim

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// An IDGenerator generates unique IDs for events and frames.
type IDGenerator interface {
	Generate() string
}

var idGenerator IDGenerator = xidGenerator{}

// GetIDGenerator returns the generator that is currently in use.
func GetIDGenerator() IDGenerator {
	return idGenerator
}

// UseSequentialIDGenerator switches to a deterministic generator that
// produces "1", "2", "3", ... Mainly useful in tests.
func UseSequentialIDGenerator() {
	idGenerator = &sequentialIDGenerator{}
}

type xidGenerator struct{}

func (xidGenerator) Generate() string {
	return xid.New().String()
}

type sequentialIDGenerator struct {
	next uint64
}

func (g *sequentialIDGenerator) Generate() string {
	return strconv.FormatUint(atomic.AddUint64(&g.next, 1), 10)
}
