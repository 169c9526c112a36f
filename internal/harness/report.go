package harness

import (
	"bufio"
	"fmt"
	"io"

	"github.com/corepath/shardbench/internal/histogram"
)

// WriteReport renders r in the stdout grammar: a header block (worker
// cores, run duration/ending time/diff) followed by one of three bodies
// depending on measurement mode — an aggregate throughput line (# AVG),
// a single total-latency histogram (# TL), or one histogram per stage
// (# TSL-s).
func WriteReport(w io.Writer, r *Report) error {
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	fmt.Fprintf(bw, "Using worker cores: %s\n", formatCores(r.WorkerCores))
	fmt.Fprintf(bw, "Run duration %f\tending time %f\tdiff %f\n",
		r.RunDuration.Seconds(), r.EndingTime.Seconds(), r.Diff.Seconds())

	switch r.Mode {
	case ModeSwitching:
		for stage := 0; stage < r.Histograms.NrColumns(); stage++ {
			fmt.Fprintf(bw, "# TSL-%d\n", stage)
			printHistogram(bw, r.Histograms.MergeColumn(stage))
		}
	case ModeTotal:
		fmt.Fprint(bw, "# TL\n")
		printHistogram(bw, r.Histograms.MergeColumn(0))
	default:
		runSeconds := r.RunDuration.Seconds()
		packets := r.ProcessedPackets
		var throughput float64
		if runSeconds > 0 {
			throughput = float64(packets) / (runSeconds * 1_000_000)
		}
		demand := float64(packets) * float64(sum(r.StageCycles))
		ideal := float64(r.NumCores) * runSeconds * float64(r.TSCHz)
		fmt.Fprint(bw, "# AVG\n")
		fmt.Fprintf(bw, "%d\t%f\t%f\t%f\n", packets, throughput, demand, ideal)
	}

	return bw.Flush()
}

func formatCores(cores []int) string {
	s := "["
	for i, c := range cores {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%d", c)
	}
	return s + "]"
}

// printHistogram writes every dense bucket (including zeros, one count per
// line) followed by the run-length-encoded overflow, with zero-filled
// lines for the skipped values between H and the first overflow value and
// between consecutive overflow values.
func printHistogram(w io.Writer, h *histogram.Histogram) {
	for _, count := range h.DensePrint() {
		fmt.Fprintf(w, "%d\n", count)
	}

	last := uint64(h.Size()) - 1
	for _, b := range h.OverflowPrint() {
		for v := last + 1; v < b.Value; v++ {
			fmt.Fprintln(w, 0)
		}
		fmt.Fprintf(w, "%d\n", b.Count)
		last = b.Value
	}
}
