// Package harness orchestrates a complete benchmark run: core-layout
// validation, TSC calibration, mesh construction, worker/controller/
// generator wiring, and the final stdout report.
package harness

import (
	"fmt"
	"time"

	"github.com/corepath/shardbench/internal/histogram"
	"github.com/corepath/shardbench/internal/shard"
)

// MeasurementMode selects what, if anything, stage functions record into
// per-core histograms.
type MeasurementMode int

const (
	// ModeNone records nothing; the run only reports aggregate throughput.
	ModeNone MeasurementMode = iota
	// ModeTotal records one observation per message: the elapsed time
	// from generation to the end of the message's last stage.
	ModeTotal
	// ModeSwitching records one observation per stage: the elapsed time
	// since the previous stage finished (for the first stage, since
	// generation); the timestamp is reset after every stage.
	ModeSwitching
)

func (m MeasurementMode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeTotal:
		return "total"
	case ModeSwitching:
		return "switching"
	default:
		return "unknown"
	}
}

// ParseMode interprets the CLI mode argument ("0"/"1"/"2"). When
// fatalOnInvalid is false (the SW binary's behavior), any unrecognized
// value silently falls back to ModeNone; when true (the DSW binary's
// behavior), it returns an error instead.
func ParseMode(s string, fatalOnInvalid bool) (MeasurementMode, error) {
	switch s {
	case "0":
		return ModeNone, nil
	case "1":
		return ModeTotal, nil
	case "2":
		return ModeSwitching, nil
	default:
		if fatalOnInvalid {
			return ModeNone, fmt.Errorf("harness: invalid measurement mode %q", s)
		}
		return ModeNone, nil
	}
}

// HistogramMaxLatency is the dense histogram bound H, in microseconds.
const HistogramMaxLatency = 100_000

// MeshChannelSize is the aggregate data-mesh buffer budget, divided across
// worker links.
const MeshChannelSize = 8192

// GeneratorChannelCapacity is the SW generator-to-controller SPSC channel
// capacity.
const GeneratorChannelCapacity = 10_000

// RunConfig is everything a run needs beyond the fixed constants above.
type RunConfig struct {
	WorkerCores    []int
	GeneratorCore  int
	ControllerCore int
	Duration       time.Duration
	StageCycles    []uint64
	Mode           MeasurementMode
	Fast           bool // selects the fast/debug-style TSC calibration search
}

// Report is the result of a completed run, formatted for stdout by
// WriteReport.
type Report struct {
	WorkerCores      []int
	Policy           shard.Policy
	Mode             MeasurementMode
	RunDuration      time.Duration
	EndingTime       time.Duration
	Diff             time.Duration
	NumCores         int
	TSCHz            uint64
	ProcessedPackets uint64
	StageCycles      []uint64
	Histograms       *histogram.Set
}
