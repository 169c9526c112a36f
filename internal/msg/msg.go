// Package msg defines the message and pipeline descriptor shared by every
// shard in the mesh.
package msg

import "time"

// PipelineSize is the fixed length of every pipeline descriptor.
const PipelineSize = 5

// StageFunc is one stage of a pipeline: synchronous compute over the
// message's data, keyed by the worker's zero-based core index so a stage can
// address its own per-core state (histograms, scratch buffers). Stage
// functions never suspend and never fail.
type StageFunc func(m *Msg, coreIndex int)

// Pipeline is an immutable, shared, prefix-of-stages descriptor. A nil slot
// is EMPTY. The pipeline is a prefix of non-nil stages terminated by at
// least one trailing nil; every Msg referencing it only ever reads it.
type Pipeline [PipelineSize]StageFunc

// NonEmptyStages counts the leading non-EMPTY slots.
func (p *Pipeline) NonEmptyStages() int {
	n := 0
	for _, s := range p {
		if s == nil {
			break
		}
		n++
	}
	return n
}

// Msg is the unit of work passed between shards. Ownership transfers on
// every mesh send: only the shard currently holding a *Msg may mutate it.
type Msg struct {
	Data          []byte
	Pipeline      *Pipeline
	PipelineIndex int
	Timestamp     time.Time
}

// New builds a fresh message at the head of the given pipeline.
func New(data []byte, pipeline *Pipeline) *Msg {
	return &Msg{
		Data:      data,
		Pipeline:  pipeline,
		Timestamp: time.Now(),
	}
}

// NextStage returns the stage to run next, or nil if the message is
// terminal (invariant 2: a nil next stage means the message must be routed
// to the controller shard).
func (m *Msg) NextStage() StageFunc {
	if m.PipelineIndex >= PipelineSize {
		return nil
	}
	return m.Pipeline[m.PipelineIndex]
}

// Terminal reports whether the message has no further stage to run.
func (m *Msg) Terminal() bool {
	return m.NextStage() == nil
}

// Advance runs the next stage against this message, keying it by
// coreIndex, then increments PipelineIndex. The caller guarantees the
// message is not terminal; Advance panics otherwise, since the contract
// that dispatch never hands a terminal message to a worker is load-bearing
// for invariant 1 (PipelineIndex <= PipelineSize) and invariant 4 (each
// stage runs exactly once, in order).
func (m *Msg) Advance(coreIndex int) {
	stage := m.NextStage()
	if stage == nil {
		panic("msg: Advance called on a terminal message")
	}
	stage(m, coreIndex)
	m.PipelineIndex++
}
