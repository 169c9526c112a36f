//go:build amd64

package tsc

// readTSC returns the raw processor timestamp counter, implemented in
// readtsc_amd64.s via the RDTSC instruction. Precision timing only makes
// sense with HasInvariantTSC true; callers on older CPUs get a reading
// whose rate may drift with power state.
func readTSC() uint64
