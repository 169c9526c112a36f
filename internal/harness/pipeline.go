package harness

import (
	"time"

	"github.com/corepath/shardbench/internal/histogram"
	"github.com/corepath/shardbench/internal/msg"
	"github.com/corepath/shardbench/internal/tsc"
)

// buildPipeline builds a pipeline of len(loopsPerStage) burn stages
// (padded with EMPTY slots up to msg.PipelineSize), each stage burning the
// calibrated loop count for its cycle target and recording latency into
// hists according to mode.
func buildPipeline(loopsPerStage []uint64, hists *histogram.Set, mode MeasurementMode) *msg.Pipeline {
	var p msg.Pipeline
	nStages := len(loopsPerStage)
	for i := 0; i < nStages && i < msg.PipelineSize; i++ {
		stageIndex := i
		loops := loopsPerStage[i]
		p[i] = func(m *msg.Msg, coreIndex int) {
			if mode == ModeSwitching {
				elapsedUs := uint64(time.Now().Sub(m.Timestamp).Microseconds())
				hists.At(coreIndex, stageIndex).Add(elapsedUs)
			}

			tsc.Burn(loops)

			switch mode {
			case ModeSwitching:
				m.Timestamp = time.Now()
			case ModeTotal:
				if m.PipelineIndex == nStages-1 {
					elapsedUs := uint64(time.Now().Sub(m.Timestamp).Microseconds())
					hists.At(coreIndex, 0).Add(elapsedUs)
				}
			}
		}
	}
	return &p
}
