package ioformat

import (
	"fmt"
	"io"

	"github.com/opslab/schedsim/sched"
)

// WritePerf renders the four-line scheduler.perf record, matching
// original_source/src/kernel/scheduler_utils.c's generate_statistics
// fprintf sequence field for field.
func WritePerf(w io.Writer, stats sched.RunStats) error {
	_, err := fmt.Fprintf(w,
		"CPU utilization = %.2f%%\nAvg WTA = %.2f\nAvg Waiting = %.2f\nStd WTA = %.2f\n",
		stats.CPUUtilization(), stats.AvgWTA(), stats.AvgWaiting(), stats.StdWTA())
	return err
}
