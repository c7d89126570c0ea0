package job

import "math"

// NoTick is the ⊥ (unset) sentinel for StartTick / LastStopTick.
const NoTick = math.MaxUint64

// State is the scheduler's bookkeeping record for one admitted job. It is
// touched only by the scheduler core (spec.md §5) — the job's side of the
// world is the Control slot it reads and the Published slot it writes.
type State struct {
	Descriptor

	RemainingTicks int
	WaitingTicks   int
	StartTick      uint64 // NoTick if never dispatched
	LastStopTick   uint64 // NoTick if never paused/stopped
	Status         Status
	MemBase        int

	// DispatchTick is the tick at which the current run began; used to
	// compute a running job's actual remaining ticks for SRTN preemption
	// (spec.md §4.3): actual = RemainingTicks - (now - DispatchTick).
	DispatchTick uint64

	// Control is the single shared Control Record slot, owned by the
	// scheduler and addressed by OwnerID (spec.md §3); every job's
	// Runtime shares the same instance.
	Control   *ControlSlot
	Published *PublishedSlot
}

// NewState builds the scheduler's bookkeeping record for a freshly
// admitted job. control is the scheduler's single shared Control Record
// slot; Published is a fresh per-job slot for the job's Runtime goroutine
// to publish status transitions into.
func NewState(d Descriptor, memBase int, control *ControlSlot) *State {
	return &State{
		Descriptor:     d,
		RemainingTicks: d.ServiceTicks,
		StartTick:      NoTick,
		LastStopTick:   NoTick,
		Status:         Idle,
		MemBase:        memBase,
		Control:        control,
		Published:      NewPublishedSlot(d.ServiceTicks),
	}
}

// ActualRemaining computes this job's true remaining ticks at tick now,
// assuming it has been running continuously since DispatchTick.
func (s *State) ActualRemaining(now uint64) int {
	elapsed := int(now - s.DispatchTick)
	return s.RemainingTicks - elapsed
}
