package shard

import (
	"time"

	"github.com/corepath/shardbench/internal/control"
	"github.com/corepath/shardbench/internal/mesh"
	"github.com/corepath/shardbench/internal/msg"
	"github.com/corepath/shardbench/internal/pcore"
	"github.com/corepath/shardbench/internal/rrobin"
)

// Worker executes pipeline stages for one shard of the data mesh. Each
// worker owns its own round-robin cursor: DSW next-hop selection is a
// per-worker decision, not a globally shared one, matching how each
// worker forwards only the traffic it personally produces.
type Worker struct {
	id           int
	dataShard    *mesh.Shard[*msg.Msg]
	controlShard *mesh.Shard[control.Message]
	policy       Policy
	stopTime     time.Time
	rr           *rrobin.Counter
	executor     *pcore.Executor
	state        stateBox
}

// NewWorker builds a worker bound to shard id (1..N on both meshes), using
// executor as its pinned processing core.
func NewWorker(id int, dataShard *mesh.Shard[*msg.Msg], controlShard *mesh.Shard[control.Message], policy Policy, stopTime time.Time, executor *pcore.Executor) *Worker {
	return &Worker{
		id:           id,
		dataShard:    dataShard,
		controlShard: controlShard,
		policy:       policy,
		stopTime:     stopTime,
		rr:           rrobin.NewCounter(dataShard.NrShards()),
		executor:     executor,
	}
}

// CoreIndex returns the zero-based core index a stage function sees,
// which is the worker's shard id minus the reserved controller id.
func (w *Worker) CoreIndex() int {
	return w.id - 1
}

// State returns the worker's current lifecycle state.
func (w *Worker) State() State {
	return w.state.get()
}

// Serve joins the worker to both meshes, announces readiness, processes
// data traffic until told to shut down, then closes its data shard and
// returns. Serve blocks until shutdown completes.
func (w *Worker) Serve() {
	w.state.set(Initialized)
	w.controlShard.SendTo(ControllerShardID, control.WorkerInitComplete)

	shutdown := make(chan struct{})
	go func() {
		defer close(shutdown)
		for {
			cmsg, ok := w.controlShard.Recv()
			if !ok || cmsg == control.Shutdown {
				return
			}
		}
	}()

	w.state.set(Running)
	served := make(chan struct{})
	sharder := mesh.NewSharder(w.dataShard, w.executor, w.handle)
	go func() {
		defer close(served)
		sharder.Serve()
	}()

	<-shutdown
	w.state.set(Closing)
	w.dataShard.Close()
	<-served
	w.state.set(Done)
}

func (w *Worker) handle(m *msg.Msg) {
	now := time.Now()
	if !now.Before(w.stopTime) {
		w.dataShard.SendTo(ControllerShardID, m)
		return
	}

	m.Advance(w.CoreIndex())

	if w.policy == SW || m.Terminal() {
		w.dataShard.SendTo(ControllerShardID, m)
		return
	}

	next := w.rr.Advance()
	w.dataShard.SendTo(next, m)
}
