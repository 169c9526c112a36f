// Package generator produces synthetic traffic into a run until a
// deadline, handing messages to either an SPSC channel (SW: the
// controller lives on its own pinned core and drains the channel itself)
// or directly into the controller's dispatch path (DSW: the generator
// shares the controller's core and dispatches inline).
package generator

import (
	"time"

	"github.com/corepath/shardbench/internal/mesh"
	"github.com/corepath/shardbench/internal/msg"
)

// PayloadSize is the length of the synthetic payload attached to every
// generated message. The payload's contents are never inspected by any
// stage; only its presence exercises the same allocation and mesh-transfer
// cost real traffic would.
const PayloadSize = 64

// Stats reports what a generator run produced.
type Stats struct {
	Sent uint64
}

// RunToChannel produces messages into an SPSC channel until stopTime,
// then closes the channel. This is the SW shape: the controller, pinned
// to its own core, drains the channel independently.
func RunToChannel(ch *mesh.SPSC, pipeline *msg.Pipeline, stopTime time.Time) Stats {
	var sent uint64
	for time.Now().Before(stopTime) {
		ch.Send(msg.New(make([]byte, PayloadSize), pipeline))
		sent++
	}
	ch.Close()
	return Stats{Sent: sent}
}

// Dispatcher is satisfied by shard.Controller's Dispatch method; it lets
// generator avoid an import cycle with the shard package while still
// driving dispatch directly.
type Dispatcher interface {
	Dispatch(m *msg.Msg)
}

// RunInline produces messages and dispatches each one directly via
// dispatcher until stopTime. This is the DSW shape: the generator shares
// the controller's pinned core and performs dispatch itself rather than
// handing off through a channel.
func RunInline(dispatcher Dispatcher, pipeline *msg.Pipeline, stopTime time.Time) Stats {
	var sent uint64
	for time.Now().Before(stopTime) {
		dispatcher.Dispatch(msg.New(make([]byte, PayloadSize), pipeline))
		sent++
	}
	return Stats{Sent: sent}
}
