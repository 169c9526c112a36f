// Package tsc calibrates a CPU busy-loop (Burn) against the processor's
// timestamp counter so stage work can consume a reproducible number of TSC
// cycles independent of absolute clock speed.
package tsc

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/klauspost/cpuid/v2"
)

// releaseMeasurements and debugMeasurements mirror the reference
// implementation's MEASUREMENTS constant: many repetitions in an optimized
// build, few in a fast/debug build where calibration speed matters more
// than precision.
const (
	releaseMeasurements = 50_000
	debugMeasurements   = 3

	// calibrationTolerance is the maximum absolute cycle-count difference
	// accepted by Calibration's exit condition.
	calibrationTolerance = 3
	// accuracyDivisor implements the reference's "accuracy = 50" check:
	// a calibration is accepted only if |actual-target|*accuracyDivisor <=
	// target, i.e. a relative error of at most 2%.
	accuracyDivisor = 50
)

// HasInvariantTSC reports whether the running CPU exposes an invariant
// TSC (constant rate, unaffected by power states) — the precondition the
// reference implementation asserts on Linux x86_64 before trusting
// raw TSC reads for timing.
func HasInvariantTSC() bool {
	return cpuid.CPU.Supports(cpuid.TSCINV)
}

// Burn spends approximately n iterations of CPU-bound work. It is the
// unit the calibrator tunes: calling Burn(loops) for a calibrated loops
// value should cost a target number of TSC cycles.
func Burn(n uint64) {
	var sink uint64
	for i := uint64(0); i < n; i++ {
		sink += i
	}
	blackBox(sink)
}

// blackBox prevents the compiler from optimizing Burn's loop away. It has
// no effect at runtime.
//
//go:noinline
func blackBox(v uint64) {
	sinkVar = v
}

var sinkVar uint64

// Calibrator holds the tuning knobs controlling how hard Calibrate works;
// Fast mirrors the reference's debug/release split (fewer measurements,
// looser search) so tests and local runs aren't slowed down by
// high-precision calibration.
type Calibrator struct {
	Fast bool
	rng  *rand.Rand
}

// New builds a Calibrator. Fast selects the low-measurement-count debug-style
// algorithm; false selects the high-precision release-style algorithm.
func New(fast bool) *Calibrator {
	return &Calibrator{Fast: fast, rng: rand.New(rand.NewSource(1))}
}

func (c *Calibrator) measurements() int {
	if c.Fast {
		return debugMeasurements
	}
	return releaseMeasurements
}

// CyclesAverage runs Burn(loops) M times (M depending on Fast) and returns
// the average TSC-cycle cost of a single call.
func (c *Calibrator) CyclesAverage(loops uint64) uint64 {
	m := c.measurements()
	start := readTSC()
	for i := 0; i < m; i++ {
		Burn(loops)
	}
	end := readTSC()
	if m == 0 {
		return 0
	}
	return (end - start) / uint64(m)
}

// Calibration searches for a loop count whose CyclesAverage is within
// calibrationTolerance cycles of target. The release-style search refines
// proportionally (candidate *= target/actual); the debug-style search
// nudges by a random step whenever it overshoots, matching the reference's
// binary-ish search with random restarts.
func (c *Calibrator) Calibration(target uint64) uint64 {
	if c.Fast {
		return c.calibrationFast(target)
	}
	return c.calibrationPrecise(target)
}

func (c *Calibrator) calibrationPrecise(target uint64) uint64 {
	candidate := uint64(1)
	for {
		actual := c.CyclesAverage(candidate)
		if actual == target {
			return candidate
		}
		if diff(actual, target) <= calibrationTolerance {
			return candidate
		}
		next := (target * candidate) / max1(actual)
		candidate = max1(next)
	}
}

func (c *Calibrator) calibrationFast(target uint64) uint64 {
	candidate := uint64(1)
	for {
		actual := c.CyclesAverage(candidate)
		if diff(actual, target) <= calibrationTolerance {
			return candidate
		}
		if actual < target {
			candidate += uint64(c.rng.Intn(1000)) + 1
		} else if candidate > 1 {
			step := uint64(c.rng.Intn(1000)) + 1
			if step >= candidate {
				candidate = 1
			} else {
				candidate -= step
			}
		}
	}
}

// Calibrate calibrates a loop count for every target cycle count, then
// re-measures each with a discarded warmup call. If any target's relative
// error exceeds 2%, the whole batch is re-run, matching the reference's
// all-or-nothing retry policy.
func (c *Calibrator) Calibrate(targets []uint64) []uint64 {
	for {
		loops := make([]uint64, len(targets))
		ok := true
		for i, target := range targets {
			candidate := c.Calibration(target)
			c.CyclesAverage(candidate) // warmup, discarded
			actual := c.CyclesAverage(candidate)
			if diff(actual, target)*accuracyDivisor > target {
				ok = false
				break
			}
			loops[i] = candidate
		}
		if ok {
			return loops
		}
	}
}

// GetTSCHz estimates the TSC frequency by timing a one-second sleep against
// raw TSC reads.
func GetTSCHz() uint64 {
	start := readTSC()
	time.Sleep(time.Second)
	end := readTSC()
	return end - start
}

func diff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

func max1(v uint64) uint64 {
	if v < 1 {
		return 1
	}
	return v
}

// String renders a Calibrator for diagnostic logging.
func (c *Calibrator) String() string {
	return fmt.Sprintf("Calibrator{Fast:%v}", c.Fast)
}
