// Package ioformat implements the thin collaborators spec.md §6 fixes by
// output rather than by implementation: the tab-separated job-file parser
// and the three mandated log files (scheduler.log, memory.log,
// scheduler.perf). Grounded on
// original_source/src/kernel/process_generator.c's line-oriented
// sscanf("%d\t%d\t%d\t%d\t%d", ...) parser and
// original_source/src/kernel/scheduler_utils.c's log_process_state /
// generate_statistics for the exact text layout.
package ioformat

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/opslab/schedsim/job"
)

// ParseDescriptors reads a tab-separated job file from r. Lines beginning
// with '#' or empty lines are skipped; a data line with fewer than five
// fields, or a field that fails to parse as an integer, is skipped
// silently rather than failing the whole read, per spec.md §6.
func ParseDescriptors(r io.Reader) ([]job.Descriptor, error) {
	var out []job.Descriptor
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 5 {
			continue
		}
		d, ok := parseFields(fields)
		if !ok {
			continue
		}
		out = append(out, d)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ioformat: reading job file: %w", err)
	}
	return out, nil
}

func parseFields(fields []string) (job.Descriptor, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return job.Descriptor{}, false
	}
	arrival, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil {
		return job.Descriptor{}, false
	}
	runtime, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return job.Descriptor{}, false
	}
	priority, err := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err != nil {
		return job.Descriptor{}, false
	}
	memsize, err := strconv.Atoi(strings.TrimSpace(fields[4]))
	if err != nil {
		return job.Descriptor{}, false
	}
	return job.Descriptor{
		ID:           id,
		ArrivalTick:  arrival,
		ServiceTicks: runtime,
		Priority:     priority,
		MemBytes:     memsize,
	}, true
}

// Arrivals hands every parsed descriptor over a buffered channel and
// closes it once all have been sent. The scheduler core treats the
// arrival channel as its single source of admissions and drains it
// non-blockingly each tick (spec.md §5), so there is no need to pace
// delivery against arrival_tick here — that gating happens on the
// scheduler side.
func Arrivals(descs []job.Descriptor) <-chan job.Descriptor {
	ch := make(chan job.Descriptor, len(descs))
	for _, d := range descs {
		ch <- d
	}
	close(ch)
	return ch
}
