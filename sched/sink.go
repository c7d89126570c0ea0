package sched

import "github.com/opslab/schedsim/job"

// EventSink receives every loggable transition the scheduler core
// produces, in tick order. ioformat implements this to render
// scheduler.log and memory.log per spec.md §6; tests can supply a
// recording fake instead of touching the filesystem.
type EventSink interface {
	JobStarted(now uint64, s *job.State)
	JobResumed(now uint64, s *job.State)
	JobStopped(now uint64, s *job.State)
	JobFinished(now uint64, s *job.State, ta uint64, wta float64)
	MemoryAllocated(now uint64, owner, bytes, lo, hi int)
	MemoryFreed(now uint64, owner, bytes, lo, hi int)
}

// NopSink discards every event; useful in tests that only care about
// RunStats or ready-set ordering.
type NopSink struct{}

func (NopSink) JobStarted(uint64, *job.State)               {}
func (NopSink) JobResumed(uint64, *job.State)                {}
func (NopSink) JobStopped(uint64, *job.State)                {}
func (NopSink) JobFinished(uint64, *job.State, uint64, float64) {}
func (NopSink) MemoryAllocated(uint64, int, int, int, int)   {}
func (NopSink) MemoryFreed(uint64, int, int, int, int)       {}
