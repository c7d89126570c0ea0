package ioformat

import (
	"bufio"
	"fmt"
	"io"

	"github.com/opslab/schedsim/job"
)

// schedulerLogHeader is written verbatim once, matching
// scheduler.c:log_scheduler_init's fprintf of the column header.
const schedulerLogHeader = "#At\ttime\tx\tprocess\ty\tstate\tarr\tw\ttotal\tz\tremain\ty\twait\tk\n"

// LogSink implements sched.EventSink, rendering scheduler.log and
// memory.log through buffered writers. The scheduler core calls every
// method from its own single goroutine, so no locking is needed here —
// same single-writer discipline as the Control Record it's fed from.
type LogSink struct {
	sched *bufio.Writer
	mem   *bufio.Writer
}

// NewLogSink wraps schedulerLog and memoryLog in buffered writers and
// emits the scheduler.log header line immediately.
func NewLogSink(schedulerLog, memoryLog io.Writer) (*LogSink, error) {
	s := &LogSink{
		sched: bufio.NewWriter(schedulerLog),
		mem:   bufio.NewWriter(memoryLog),
	}
	if _, err := s.sched.WriteString(schedulerLogHeader); err != nil {
		return nil, fmt.Errorf("ioformat: writing scheduler.log header: %w", err)
	}
	return s, nil
}

// Flush flushes both underlying writers. The caller flushes before
// closing the backing files.
func (s *LogSink) Flush() error {
	if err := s.sched.Flush(); err != nil {
		return err
	}
	return s.mem.Flush()
}

func (s *LogSink) JobStarted(now uint64, j *job.State) {
	fmt.Fprintf(s.sched, "At time %d process %d started arr %d total %d remain %d wait %d\n",
		now, j.ID, j.ArrivalTick, j.ServiceTicks, j.RemainingTicks, j.WaitingTicks)
}

func (s *LogSink) JobResumed(now uint64, j *job.State) {
	fmt.Fprintf(s.sched, "At time %d process %d resumed arr %d total %d remain %d wait %d\n",
		now, j.ID, j.ArrivalTick, j.ServiceTicks, j.RemainingTicks, j.WaitingTicks)
}

func (s *LogSink) JobStopped(now uint64, j *job.State) {
	fmt.Fprintf(s.sched, "At time %d process %d stopped arr %d total %d remain %d wait %d\n",
		now, j.ID, j.ArrivalTick, j.ServiceTicks, j.RemainingTicks, j.WaitingTicks)
}

func (s *LogSink) JobFinished(now uint64, j *job.State, ta uint64, wta float64) {
	fmt.Fprintf(s.sched, "At time %d process %d finished arr %d total %d remain %d wait %d TA %d WTA %.2f\n",
		now, j.ID, j.ArrivalTick, j.ServiceTicks, j.RemainingTicks, j.WaitingTicks, ta, wta)
}

func (s *LogSink) MemoryAllocated(now uint64, owner, bytes, lo, hi int) {
	fmt.Fprintf(s.mem, "At time %d allocated %d bytes for process %d from %d to %d\n",
		now, bytes, owner, lo, hi)
}

func (s *LogSink) MemoryFreed(now uint64, owner, bytes, lo, hi int) {
	fmt.Fprintf(s.mem, "At time %d freed %d bytes for process %d from %d to %d\n",
		now, bytes, owner, lo, hi)
}
