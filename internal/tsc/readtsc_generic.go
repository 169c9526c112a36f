//go:build !amd64

package tsc

import "time"

// readTSC falls back to a monotonic nanosecond clock on architectures
// without a usable RDTSC stub. Calibration still converges, it just tunes
// Burn against wall-clock nanoseconds instead of processor cycles.
func readTSC() uint64 {
	return uint64(time.Now().UnixNano())
}
