package job

import (
	"context"

	"github.com/opslab/schedsim/clock"
)

// Runtime drives one admitted job's execution loop, per spec.md §4.4. It
// waits for a Run command addressed to it, consumes ticks from the
// virtual clock one at a time until its granted slice is exhausted, its
// total remaining ticks reach zero, or it is preempted, then publishes
// its new status and loops (or exits, once Finished).
type Runtime struct {
	id        int
	clock     *clock.Clock
	control   *ControlSlot
	published *PublishedSlot
	remaining int    // authoritative remaining ticks; sole writer is this goroutine
	lastGen   uint64 // generation of the last ControlRecord this job consumed
}

// NewRuntime builds a Runtime for the given job id and total service
// ticks, sharing the Control/Published slots the scheduler already
// installed into the job's State.
func NewRuntime(id, serviceTicks int, c *clock.Clock, control *ControlSlot, published *PublishedSlot) *Runtime {
	return &Runtime{
		id:        id,
		clock:     c,
		control:   control,
		published: published,
		remaining: serviceTicks,
	}
}

// Run executes the job-lifecycle loop until the job finishes, a Finish
// command addressed to it (or to BroadcastOwner) arrives, ctx is
// cancelled while it waits for a command, or the clock is destroyed. ctx
// is not consulted mid-slice: a job waiting for its next tick returns
// only once that tick comes or the clock is destroyed. It is meant to run
// on its own goroutine, one per admitted job.
func (r *Runtime) Run(ctx context.Context) {
	for {
		rec, gen, ok := r.control.WaitFor(ctx, r.lastGen, func(rec ControlRecord) bool {
			if rec.Command == Finish {
				return rec.OwnerID == r.id || rec.OwnerID == BroadcastOwner
			}
			return rec.Command == Run && rec.OwnerID == r.id
		})
		if !ok {
			return
		}
		r.lastGen = gen
		if rec.Command == Finish {
			return
		}

		dispatchTick := rec.DispatchTick

		ran := 0
		for ran < rec.GrantedSlice && r.remaining > 0 {
			if _, err := r.clock.Wait(dispatchTick + uint64(ran)); err != nil {
				return
			}
			ran++
			r.remaining--
			if r.control.Read().Command != Run {
				break // preempted or stopped mid-slice
			}
		}

		if r.remaining == 0 {
			r.published.Publish(Snapshot{Status: Finished, Remaining: 0})
			return
		}
		r.published.Publish(Snapshot{Status: Idle, Remaining: r.remaining})
	}
}
