// Package shard implements the controller and worker shards that sit on
// the data and control meshes: the controller drives dispatch, return
// handling, draining and shutdown; workers execute pipeline stages and
// route messages onward per policy.
package shard

import "sync/atomic"

// State is a shard's position in its lifecycle.
type State int32

const (
	Joining State = iota
	Initialized
	Running
	Closing
	Done
)

func (s State) String() string {
	switch s {
	case Joining:
		return "JOINING"
	case Initialized:
		return "INITIALIZED"
	case Running:
		return "RUNNING"
	case Closing:
		return "CLOSING"
	case Done:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// stateBox is an atomically-readable State cell shared between the shard's
// own goroutines and external observers (e.g. logging).
type stateBox struct {
	v atomic.Int32
}

func (b *stateBox) set(s State) {
	b.v.Store(int32(s))
}

func (b *stateBox) get() State {
	return State(b.v.Load())
}

// Policy selects how a worker routes a non-terminal message onward.
type Policy int

const (
	// SW routes every hop back through the controller shard.
	SW Policy = iota
	// DSW routes directly to the next worker, only returning to the
	// controller when the message is terminal or the run's deadline has
	// passed.
	DSW
)

func (p Policy) String() string {
	switch p {
	case SW:
		return "SW"
	case DSW:
		return "DSW"
	default:
		return "UNKNOWN"
	}
}

// ControllerShardID mirrors the reference's
// DATA_MESH_CONTROLLER_ID / CONTROL_MESH_CONTROLLER_ID: shard 0 on both
// meshes is always the controller.
const ControllerShardID = 0
