// Package sched implements the Scheduler Core of spec.md §4.5: the
// central tick-driven loop that admits arrivals, dispatches the Ready-Set
// head under the active policy, handles SRTN preemption, reaps finished
// jobs, and accumulates RunStats. Grounded on the overall shape of
// other_examples/39da51d0_Guti2010-Proyecto-SO__internal-sched-sched.go.go's
// Pool (a central owner of queues and stats with an explicit New and no
// package-level mutable state), generalized from a 3-priority-lane
// work-queue to the admit/dispatch/preempt/retire loop here, and on
// src/kernel/scheduler.c's run_scheduler for the exact control flow:
// drain arrivals, pick next, dispatch, wait-or-preempt, reap, advance.
package sched

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/opslab/schedsim/buddy"
	"github.com/opslab/schedsim/clock"
	"github.com/opslab/schedsim/internal/gopool"
	"github.com/opslab/schedsim/job"
	"github.com/opslab/schedsim/readyset"
	"github.com/opslab/schedsim/simerr"
)

// jobAckTimeout bounds how long the scheduler waits for a job to publish
// a state transition it expects, before re-issuing the command once and,
// failing that, escalating per §7's TransientJobError handling.
const jobAckTimeout = 2 * time.Second

// Config configures a new Scheduler.
type Config struct {
	Policy      Policy
	Quantum     int // required for RR, ignored otherwise
	TotalMemory int
	MinBlock    int
	Arrivals    <-chan job.Descriptor
	Sink        EventSink
	Logger      zerolog.Logger
}

// Scheduler is the central loop owner: the Ready-Set, the Buddy
// Allocator, the single shared Control Record slot, and the accumulated
// RunStats all live here, with no package-level mutable state.
type Scheduler struct {
	policy  Policy
	quantum int

	clock *clock.Clock
	alloc *buddy.Allocator
	ready readyset.Set
	pool  *gopool.Pool

	control *job.ControlSlot
	sink    EventSink
	logger  zerolog.Logger

	arrivals       <-chan job.Descriptor
	arrivalsClosed bool
	pending        []job.Descriptor
	pendingSeen    map[int]struct{}
	admitted       map[int]*job.State

	running           *job.State
	runningSlice      int
	runningPublishGen uint64
	runningPaused     bool // true once a Pause has been written for running this dispatch
	// expectAt is the tick at which running's Idle-or-Finished publish is
	// due: DispatchTick+runningSlice on natural exhaustion, or brought
	// forward to now+1 the moment a Pause is issued. A job always checks
	// its Control record exactly once per tick it consumes, so a Pause
	// written before a given tick's Advance is guaranteed observed by the
	// very next tick boundary — never later, never immediately within the
	// same tick (spec.md §5's "at most one additional tick").
	expectAt uint64

	stats RunStats
}

// New builds a Scheduler over a fresh virtual clock and buddy arena. The
// caller retains ownership of neither; Run drives both to completion and
// Close releases them.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Policy == RR && cfg.Quantum <= 0 {
		return nil, fmt.Errorf("sched: rr requires a positive quantum, got %d", cfg.Quantum)
	}
	alloc, err := buddy.New(cfg.TotalMemory, cfg.MinBlock)
	if err != nil {
		return nil, err
	}
	sink := cfg.Sink
	if sink == nil {
		sink = NopSink{}
	}
	return &Scheduler{
		policy:      cfg.Policy,
		quantum:     cfg.Quantum,
		clock:       clock.New(),
		alloc:       alloc,
		ready:       newReadySet(cfg.Policy),
		pool:        gopool.New(cfg.Logger),
		control:     job.NewControlSlot(),
		sink:        sink,
		logger:      cfg.Logger,
		arrivals:    cfg.Arrivals,
		pendingSeen: make(map[int]struct{}),
		admitted:    make(map[int]*job.State),
	}, nil
}

// Close releases the clock and arena. Safe to call after Run returns.
func (s *Scheduler) Close() {
	s.clock.Destroy()
	s.alloc.Close()
}

// Run drives the scheduler until every arrival has been admitted, the
// Ready-Set is empty, and no job is running, or until ctx is cancelled.
// It returns the accumulated RunStats and a non-nil error only for a
// FatalInvariantViolation or ExternalSignal (spec.md §7): every other
// condition is handled in-loop. The caller must call Close once Run
// returns, on every path, to release the clock and arena.
func (s *Scheduler) Run(ctx context.Context) (RunStats, error) {
	var now uint64
	for {
		if ctx.Err() != nil {
			s.shutdown()
			return s.stats, fmt.Errorf("tick %d: %w", now, simerr.ErrExternalSignal)
		}

		var err error
		now, err = s.clock.Read()
		if err != nil {
			return s.stats, err
		}

		if err := s.drainArrivals(); err != nil {
			s.shutdown()
			return s.stats, err
		}
		s.admitPending(ctx, now)

		if s.running == nil {
			s.dispatchNext(now)
		} else if s.policy == SRTN {
			// Decided and written before this tick's Advance: a job only
			// ever learns of a Pause at the boundary following the tick
			// during which it was issued, never sooner.
			s.maybePreempt(now)
		}

		if s.terminated() {
			break
		}

		s.clock.Advance()
		next := now + 1

		if s.running != nil && next == s.expectAt {
			if err := s.observeRunning(ctx, next); err != nil {
				s.shutdown()
				return s.stats, err
			}
		}
	}

	s.stats.SetFinalTick(now)
	return s.stats, nil
}

// terminated reports whether the scheduler has nothing left to do: all
// arrivals admitted, nothing pending or ready, and no job running.
func (s *Scheduler) terminated() bool {
	return s.arrivalsClosed && len(s.pending) == 0 && s.ready.IsEmpty() && s.running == nil
}

// drainArrivals performs a non-blocking drain of the arrival channel into
// the pending list, rejecting arrivals that collide with an id already
// admitted (a warning, per §4.5) or already pending (a FatalInvariantViolation,
// per §7 — a genuinely duplicated id racing its own admission).
func (s *Scheduler) drainArrivals() error {
	if s.arrivalsClosed {
		return nil
	}
	for {
		select {
		case a, ok := <-s.arrivals:
			if !ok {
				s.arrivalsClosed = true
				return nil
			}
			if _, dup := s.admitted[a.ID]; dup {
				s.logger.Warn().Int("job", a.ID).Msg("ignoring duplicate arrival for an admitted job")
				continue
			}
			if _, dup := s.pendingSeen[a.ID]; dup {
				return fmt.Errorf("job %d: %w", a.ID, simerr.ErrDuplicateArrival)
			}
			s.pending = append(s.pending, a)
			s.pendingSeen[a.ID] = struct{}{}
		default:
			return nil
		}
	}
}

// admitPending attempts to allocate memory for every pending arrival
// that is due by now, admitting those that succeed and leaving the rest
// (not yet due, or still memory-starved) deferred. Descriptors may be
// drained from the arrivals channel well before their ArrivalTick is
// reached — ioformat hands the whole file over up front — so this gate
// is what actually makes a job visible to the Ready-Set at its
// simulated arrival time.
func (s *Scheduler) admitPending(ctx context.Context, now uint64) {
	if len(s.pending) == 0 {
		return
	}
	kept := s.pending[:0]
	for _, a := range s.pending {
		if a.ArrivalTick > now {
			kept = append(kept, a)
			continue
		}
		offset, ok := s.alloc.Allocate(a.ID, a.MemBytes)
		if !ok {
			s.logger.Debug().Int("job", a.ID).Err(simerr.ErrAdmissionDeferred).Msg("no free block, retrying next tick")
			kept = append(kept, a)
			continue
		}
		delete(s.pendingSeen, a.ID)

		st := job.NewState(a, offset, s.control)
		s.admitted[a.ID] = st
		s.ready.Insert(st)
		s.sink.MemoryAllocated(now, a.ID, a.MemBytes, offset, offset+a.MemBytes-1)

		rt := job.NewRuntime(a.ID, a.ServiceTicks, s.clock, s.control, st.Published)
		s.pool.Go(func() { rt.Run(ctx) })
	}
	s.pending = kept
}

// dispatchNext pops the Ready-Set head, if any, and grants it the CPU.
func (s *Scheduler) dispatchNext(now uint64) {
	j := s.ready.PopHead()
	if j == nil {
		return
	}

	if j.StartTick == job.NoTick {
		j.StartTick = now
		j.WaitingTicks += int(now - j.ArrivalTick)
		s.sink.JobStarted(now, j)
	} else {
		j.WaitingTicks += int(now - j.LastStopTick)
		s.sink.JobResumed(now, j)
	}

	j.Status = job.Running
	j.DispatchTick = now
	s.runningSlice = s.sliceFor(j)
	s.runningPublishGen = j.Published.Gen()
	s.expectAt = now + uint64(s.runningSlice)
	s.runningPaused = false
	s.running = j

	s.control.Write(job.ControlRecord{OwnerID: j.ID, GrantedSlice: s.runningSlice, Command: job.Run, DispatchTick: now})
}

// sliceFor computes the granted slice per spec.md §4.3's dispatch rule.
func (s *Scheduler) sliceFor(j *job.State) int {
	if s.policy == RR {
		if j.RemainingTicks < s.quantum {
			return j.RemainingTicks
		}
		return s.quantum
	}
	return j.RemainingTicks
}

// maybePreempt implements SRTN preemption: if the Ready-Set head has
// strictly fewer remaining ticks than the running job's actual remaining
// at now, a Pause is written for the running job and expectAt is brought
// forward to the next tick boundary. It never blocks: the actual
// stop-and-requeue bookkeeping happens later in observeRunning, once the
// job has had a tick to notice and publish.
func (s *Scheduler) maybePreempt(now uint64) {
	head := s.ready.PeekHead()
	if head == nil {
		return
	}
	actual := s.running.ActualRemaining(now)
	if head.RemainingTicks >= actual {
		return
	}

	s.control.Write(job.ControlRecord{OwnerID: s.running.ID, Command: job.Pause})
	s.runningPaused = true
	if now+1 < s.expectAt {
		s.expectAt = now + 1
	}
}

// observeRunning is called once the running job's next transition is due
// at tick now, whether from its granted slice expiring or from a Pause
// written earlier this tick. It blocks for the job's Idle or Finished
// publish and reconciles bookkeeping accordingly.
func (s *Scheduler) observeRunning(ctx context.Context, now uint64) error {
	j := s.running
	lastSlice, lastDispatch, paused := s.runningSlice, j.DispatchTick, s.runningPaused
	snap, err := s.awaitPublish(ctx, j, s.runningPublishGen, func() {
		if paused {
			s.control.Write(job.ControlRecord{OwnerID: j.ID, Command: job.Pause})
			return
		}
		s.control.Write(job.ControlRecord{OwnerID: j.ID, GrantedSlice: lastSlice, Command: job.Run, DispatchTick: lastDispatch})
	})
	if err != nil {
		return err
	}

	j.RemainingTicks = snap.Remaining
	switch snap.Status {
	case job.Finished:
		if err := s.finishJob(now, j); err != nil {
			return err
		}
	case job.Idle:
		j.LastStopTick = now
		j.Status = job.Idle
		s.sink.JobStopped(now, j)
		s.ready.Insert(j)
	}
	s.running = nil
	return nil
}

// finishJob records a completed job's statistics, releases its memory,
// and drops it from the admitted set. A buddy-block size mismatch is a
// FatalInvariantViolation (spec.md §7): it returns an error instead of
// only logging, so Run unwinds and the process exits non-zero exactly as
// the clock-regression and duplicate-admission cases do.
func (s *Scheduler) finishJob(now uint64, j *job.State) error {
	j.Status = job.Finished
	if !s.alloc.HoldsBlockOfSize(j.ID, j.MemBytes) {
		err := fmt.Errorf("job %d: %w", j.ID, simerr.ErrBuddyCorruption)
		s.logger.Error().Int("job", j.ID).Err(err).Msg("buddy allocator corruption detected on finish")
		return err
	}

	ta := now - j.ArrivalTick
	wta := float64(ta) / float64(j.ServiceTicks)
	s.sink.JobFinished(now, j, ta, wta)

	s.alloc.Free(j.ID)
	s.sink.MemoryFreed(now, j.ID, j.MemBytes, j.MemBase, j.MemBase+j.MemBytes-1)

	delete(s.admitted, j.ID)
	s.stats.Record(ta, wta, j.WaitingTicks, j.ServiceTicks)
	return nil
}

// awaitPublish blocks for a Snapshot newer than sinceGen, reissuing the
// job's command once via reissue if the bound is exceeded before
// escalating to ErrJobUnresponsive (TransientJobError, per §7).
func (s *Scheduler) awaitPublish(ctx context.Context, j *job.State, sinceGen uint64, reissue func()) (job.Snapshot, error) {
	for attempt := 0; attempt < 2; attempt++ {
		wctx, cancel := context.WithTimeout(ctx, jobAckTimeout)
		snap, _, ok := j.Published.WaitFor(wctx, sinceGen)
		cancel()
		if ok {
			return snap, nil
		}
		if ctx.Err() != nil {
			return job.Snapshot{}, fmt.Errorf("job %d: %w", j.ID, simerr.ErrExternalSignal)
		}
		if attempt > 0 {
			break
		}
		s.logger.Warn().Int("job", j.ID).Err(simerr.ErrJobTimeout).Msg("retrying command")
		reissue()
	}
	return job.Snapshot{}, fmt.Errorf("job %d: %w", j.ID, simerr.ErrJobUnresponsive)
}

// shutdown publishes Finish to every live job, destroys the clock so a
// job blocked mid-slice waiting for its next tick wakes, waits for their
// goroutines to exit, and releases their memory. The caller must still
// call Close once Run returns, on every path, to release the arena.
func (s *Scheduler) shutdown() {
	s.control.Write(job.ControlRecord{OwnerID: job.BroadcastOwner, Command: job.Finish})
	s.clock.Destroy()
	s.pool.Wait()
	for id, st := range s.admitted {
		s.alloc.Free(id)
		s.sink.MemoryFreed(0, id, st.MemBytes, st.MemBase, st.MemBase+st.MemBytes-1)
		delete(s.admitted, id)
	}
}
