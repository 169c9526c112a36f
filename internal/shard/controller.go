package shard

import (
	"sync/atomic"
	"time"

	"github.com/corepath/shardbench/internal/control"
	"github.com/corepath/shardbench/internal/mesh"
	"github.com/corepath/shardbench/internal/msg"
	"github.com/corepath/shardbench/internal/rrobin"
)

// DrainPollInterval is how often Drain checks whether every dispatched
// message has returned.
const DrainPollInterval = 10 * time.Millisecond

// Controller is shard 0 on both meshes. It dispatches generator traffic to
// workers (round-robin, skipping itself), handles returning messages
// (re-dispatching non-terminal ones while the run is live, counting
// completions otherwise), drains outstanding traffic, and shuts the
// worker pool down.
type Controller struct {
	dataShard    *mesh.Shard[*msg.Msg]
	controlShard *mesh.Shard[control.Message]
	nrWorkers    int
	policy       Policy
	stopTime     time.Time
	rr           *rrobin.Counter

	sentMessages     atomic.Uint64
	returnCounter    atomic.Uint64
	processedPackets atomic.Uint64

	startTimestamp time.Time
	endTimestamp   time.Time
	state          stateBox
}

// NewController builds a controller over the given meshes for a run with
// nrWorkers workers, ending at stopTime.
func NewController(dataShard *mesh.Shard[*msg.Msg], controlShard *mesh.Shard[control.Message], nrWorkers int, policy Policy, stopTime time.Time) *Controller {
	return &Controller{
		dataShard:    dataShard,
		controlShard: controlShard,
		nrWorkers:    nrWorkers,
		policy:       policy,
		stopTime:     stopTime,
		rr:           rrobin.NewCounter(dataShard.NrShards()),
	}
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	return c.state.get()
}

// AwaitWorkerInit blocks until every worker has announced
// WORKER_INIT_COMPLETE, establishing the run's init barrier.
func (c *Controller) AwaitWorkerInit() {
	c.state.set(Initialized)
	for i := 0; i < c.nrWorkers; i++ {
		if _, ok := c.controlShard.Recv(); !ok {
			return
		}
	}
}

// Dispatch routes a freshly generated message to the next worker in
// round-robin order, or silently drops it if the run's deadline has
// already passed. It increments SentMessages on every successful send.
func (c *Controller) Dispatch(m *msg.Msg) {
	if !time.Now().Before(c.stopTime) {
		return
	}
	next := c.rr.Advance()
	c.dataShard.SendTo(next, m)
	c.sentMessages.Add(1)
}

// SentMessages returns the number of messages successfully dispatched so
// far.
func (c *Controller) SentMessages() uint64 {
	return c.sentMessages.Load()
}

// ReturnCounter returns the number of messages that have come back to the
// controller so far, whether or not they were terminal.
func (c *Controller) ReturnCounter() uint64 {
	return c.returnCounter.Load()
}

// ProcessedPackets returns the number of messages that completed their
// entire pipeline before the run's deadline.
func (c *Controller) ProcessedPackets() uint64 {
	return c.processedPackets.Load()
}

// handleReturn processes a message arriving back at the controller. A
// redispatch is, from the mesh's point of view, just another send: it
// increments sentMessages exactly like Dispatch does, so that every
// message's intermediate bounces through the controller are still
// balanced by a later return and Drain's return_counter == sent_messages
// check converges instead of counting a redispatch as a return with no
// matching send. sentMessages and processedPackets are updated before
// returnCounter, so Drain never sees the two counters equal while a
// redispatch or a completion is still being recorded.
func (c *Controller) handleReturn(m *msg.Msg) {
	if time.Now().Before(c.stopTime) {
		if !m.Terminal() {
			c.sentMessages.Add(1)
			c.returnCounter.Add(1)
			next := c.rr.Advance()
			c.dataShard.SendTo(next, m)
			return
		}
		c.processedPackets.Add(1)
	}
	c.returnCounter.Add(1)
}

// ServeReturns blocks, handling every message that comes back to the
// controller shard, until the data mesh shard is closed.
func (c *Controller) ServeReturns() {
	c.state.set(Running)
	c.startTimestamp = time.Now()
	for {
		m, ok := c.dataShard.Recv()
		if !ok {
			return
		}
		c.handleReturn(m)
	}
}

// MarkEnd records the end of the measured run. Callers invoke it as soon
// as the generator stops producing traffic, before Drain, so RunDuration
// reflects the run itself rather than the drain wait that follows it.
func (c *Controller) MarkEnd() {
	c.endTimestamp = time.Now()
}

// Drain blocks until every dispatched message has returned. Callers invoke
// it once the generator has stopped producing new traffic, after MarkEnd.
func (c *Controller) Drain() {
	for c.returnCounter.Load() != c.sentMessages.Load() {
		time.Sleep(DrainPollInterval)
	}
}

// RunDuration returns the elapsed time between the moment ServeReturns
// started serving and MarkEnd.
func (c *Controller) RunDuration() time.Duration {
	return c.endTimestamp.Sub(c.startTimestamp)
}

// Shutdown tells every worker to stop, then closes the controller's own
// data mesh shard. Workers must be joined only after Shutdown returns.
func (c *Controller) Shutdown() {
	c.state.set(Closing)
	for i := 1; i <= c.nrWorkers; i++ {
		c.controlShard.SendTo(i, control.Shutdown)
	}
	c.dataShard.Close()
	c.state.set(Done)
}
