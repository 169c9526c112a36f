package shard

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/corepath/shardbench/internal/control"
	"github.com/corepath/shardbench/internal/mesh"
	"github.com/corepath/shardbench/internal/msg"
	"github.com/corepath/shardbench/internal/pcore"
	"github.com/stretchr/testify/assert"
)

func twoStagePipeline(counter *atomic.Int64) *msg.Pipeline {
	var p msg.Pipeline
	p[0] = func(m *msg.Msg, coreIndex int) { counter.Add(1) }
	p[1] = func(m *msg.Msg, coreIndex int) { counter.Add(1) }
	return &p
}

func runToCompletion(t *testing.T, policy Policy, nrWorkers, nrMessages int) (*Controller, int64) {
	t.Helper()
	nrShards := nrWorkers + 1
	dataMesh := mesh.New[*msg.Msg](nrShards, 64)
	controlMesh := mesh.New[control.Message](nrShards, 4)

	stopTime := time.Now().Add(10 * time.Second)
	controller := NewController(dataMesh.Shard(0), controlMesh.Shard(0), nrWorkers, policy, stopTime)

	var stageHits atomic.Int64
	pipeline := twoStagePipeline(&stageHits)

	workers := make([]*Worker, nrWorkers)
	for i := 0; i < nrWorkers; i++ {
		id := i + 1
		exec := pcore.NewExecutor(0)
		w := NewWorker(id, dataMesh.Shard(id), controlMesh.Shard(id), policy, stopTime, exec)
		workers[i] = w
		go w.Serve()
	}

	controller.AwaitWorkerInit()
	go controller.ServeReturns()

	for i := 0; i < nrMessages; i++ {
		controller.Dispatch(msg.New(nil, pipeline))
	}

	controller.Drain()
	controller.Shutdown()

	return controller, stageHits.Load()
}

func TestControllerWorkerSW(t *testing.T) {
	controller, hits := runToCompletion(t, SW, 3, 20)
	// Every SW hop bounces through the controller, so a 2-stage pipeline
	// dispatches each message twice: once from the generator, once as a
	// redispatch after the first stage's non-terminal return.
	assert.Equal(t, uint64(40), controller.SentMessages())
	assert.Equal(t, uint64(40), controller.ReturnCounter())
	assert.Equal(t, uint64(20), controller.ProcessedPackets())
	assert.Equal(t, int64(40), hits) // 2 stages * 20 messages
	assert.Equal(t, Done, controller.State())
}

func TestControllerWorkerDSW(t *testing.T) {
	controller, hits := runToCompletion(t, DSW, 3, 20)
	assert.Equal(t, uint64(20), controller.SentMessages())
	assert.Equal(t, uint64(20), controller.ProcessedPackets())
	assert.Equal(t, int64(40), hits)
}

func TestWorkerSkipsStageAfterDeadline(t *testing.T) {
	nrShards := 2
	dataMesh := mesh.New[*msg.Msg](nrShards, 8)
	controlMesh := mesh.New[control.Message](nrShards, 4)
	stopTime := time.Now().Add(-time.Second) // already expired

	exec := pcore.NewExecutor(0)
	w := NewWorker(1, dataMesh.Shard(1), controlMesh.Shard(1), SW, stopTime, exec)
	go w.Serve()

	_, ok := controlMesh.Shard(0).Recv()
	assert.True(t, ok)

	var stageHits atomic.Int64
	pipeline := twoStagePipeline(&stageHits)
	m := msg.New(nil, pipeline)
	dataMesh.Shard(0).SendTo(1, m)

	returned, ok := dataMesh.Shard(0).Recv()
	assert.True(t, ok)
	assert.Same(t, m, returned)
	assert.Equal(t, int64(0), stageHits.Load())
	assert.Equal(t, 0, returned.PipelineIndex)

	controlMesh.Shard(0).SendTo(1, control.Shutdown)
	dataMesh.Shard(0).Close()
}
