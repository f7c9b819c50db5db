package compute

import "sync/atomic"

// Counter is a linearizable fetch-and-increment counter for shared append
// from concurrent kernel invocations.
//
// It is the single point of inter-thread contention in the edge extraction
// stage: every invocation that wants to append reserves a slot with Next and
// writes to that slot only.
type Counter struct {
	v atomic.Uint32
}

// Next reserves and returns the next slot index.
func (c *Counter) Next() uint32 {
	return c.v.Add(1) - 1
}

// Load returns the number of reservations so far.
// Only meaningful after the dispatch using the counter has completed.
func (c *Counter) Load() uint32 {
	return c.v.Load()
}

// Reset sets the counter back to zero for the next pass.
func (c *Counter) Reset() {
	c.v.Store(0)
}
