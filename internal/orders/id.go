package orders

import (
	"math/rand/v2"
	"sync/atomic"
	"time"
)

// customEpoch is 2020-01-01T00:00:00Z in unix milliseconds. Shifting the
// timestamp off a recent epoch keeps ids well inside int64 range.
const customEpoch = 1577836800000

const seqBits = 22

// IDGenerator produces numeric, time-sortable order ids: milliseconds since
// customEpoch shifted left seqBits, OR'd with a per-process sequence seeded
// from a random value. Two calls in the same millisecond differ in the
// sequence, so ids are unique within a process; collisions across processes
// are possible but negligibly likely.
type IDGenerator struct {
	nowFunc func() time.Time
	seq     atomic.Uint64
}

// NewIDGenerator returns a generator with a randomly seeded sequence.
func NewIDGenerator() *IDGenerator {
	g := &IDGenerator{nowFunc: time.Now}
	g.seq.Store(uint64(rand.Uint32()))
	return g
}

// NextID returns the next order id.
func (g *IDGenerator) NextID() int64 {
	ms := g.nowFunc().UnixMilli() - customEpoch
	n := g.seq.Add(1)
	return ms<<seqBits | int64(n&(1<<seqBits-1))
}
