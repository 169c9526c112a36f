// Package rrobin implements the round-robin worker selection shared by
// controller dispatch, controller re-dispatch, and DSW worker-to-worker
// hops. Shard 0 is always the controller and is never a dispatch target.
package rrobin

import "sync/atomic"

// Next returns the next worker shard id given the previous one and the
// total number of shards (workers + controller). Shard ids run 1..nrShards-1
// for workers; shard 0 is the controller and is always skipped.
func Next(nrShards, prevShard int) int {
	return (prevShard % (nrShards - 1)) + 1
}

// Counter is a shared, concurrency-safe cursor over the round-robin
// sequence. Multiple goroutines may call Advance concurrently; each call
// observes a distinct, monotonically-assigned slot.
type Counter struct {
	nrShards int
	cur      atomic.Int64
}

// NewCounter builds a round-robin counter over shards 1..nrShards-1,
// starting as though shard 0 (the controller) was last dispatched to.
func NewCounter(nrShards int) *Counter {
	return &Counter{nrShards: nrShards}
}

// Advance atomically moves the cursor forward and returns the next worker
// shard id to dispatch to.
func (c *Counter) Advance() int {
	for {
		prev := c.cur.Load()
		next := Next(c.nrShards, int(prev))
		if c.cur.CompareAndSwap(prev, int64(next)) {
			return next
		}
	}
}
