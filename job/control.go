package job

import (
	"context"
	"sync"
)

// ControlRecord is the scheduler's single instruction to a job: who it's
// addressed to, how many ticks it grants, and what to do. A single
// ControlRecord slot is shared by every admitted job and addressed by
// OwnerID; the scheduler is its sole writer, and each job acts only on
// records addressed to it (or to BroadcastOwner).
type ControlRecord struct {
	OwnerID      int
	GrantedSlice int
	Command      Command

	// DispatchTick is the tick the scheduler considers this grant to have
	// started at. The job uses this value directly instead of calling
	// clock.Read() itself: by the time a job observes a Run record, the
	// clock may already have advanced past the tick the scheduler meant,
	// so reading it independently would race with Advance.
	DispatchTick uint64
}

// ControlSlot holds the current ControlRecord, guarded by a mutex so the
// job's goroutine can block in WaitFor instead of busy-polling until the
// scheduler writes a command addressed to it. gen counts writes, so a
// waiter can require a record strictly newer than the last one it acted
// on — otherwise, after a job exhausts a slice while its own stale "Run"
// record is still installed, it would immediately re-match itself and
// run again without the scheduler ever granting a new slice.
type ControlSlot struct {
	mu   sync.Mutex
	cond *sync.Cond
	rec  ControlRecord
	gen  uint64
}

// NewControlSlot returns a slot with no command pending.
func NewControlSlot() *ControlSlot {
	s := &ControlSlot{rec: ControlRecord{Command: NoCommand}}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Write installs a new ControlRecord and wakes any goroutine blocked in
// WaitFor. Only the scheduler calls this.
func (s *ControlSlot) Write(rec ControlRecord) {
	s.mu.Lock()
	s.rec = rec
	s.gen++
	s.cond.Broadcast()
	s.mu.Unlock()
}

// Read returns the most recently written ControlRecord without blocking.
func (s *ControlSlot) Read() ControlRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec
}

// WaitFor blocks until a ControlRecord strictly newer than sinceGen
// satisfies match, or ctx is done. It returns the matching record and its
// generation, or ok=false if ctx was cancelled first. Because the slot is
// shared by every job, a waiter whose id isn't addressed by the current
// record must keep blocking rather than spinning — match is expected to
// check both Command and OwnerID.
func (s *ControlSlot) WaitFor(ctx context.Context, sinceGen uint64, match func(ControlRecord) bool) (rec ControlRecord, gen uint64, ok bool) {
	// Bridge ctx cancellation into the condition variable: a done ctx
	// must wake a goroutine blocked in cond.Wait, which only wakes on
	// Broadcast/Signal.
	stop := context.AfterFunc(ctx, func() {
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
	})
	defer stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for s.gen <= sinceGen || !match(s.rec) {
		if ctx.Err() != nil {
			return ControlRecord{}, 0, false
		}
		s.cond.Wait()
	}
	return s.rec, s.gen, true
}
