package job

import (
	"context"
	"sync"
)

// Snapshot is what a job publishes about itself: its current lifecycle
// status and its authoritative remaining-ticks count as of publication.
// The job's goroutine is the sole writer; the scheduler core is the sole
// reader (spec.md §5).
type Snapshot struct {
	Status    Status
	Remaining int
}

// PublishedSlot holds a job's most recent Snapshot. It mirrors
// ControlSlot's mutex/cond/generation discipline so the scheduler can
// block for the job's next transition instead of polling: a transition
// can be expected to land on a specific tick (slice exhaustion or
// completion), and the scheduler needs to observe exactly that one, not
// an arbitrary later Read.
type PublishedSlot struct {
	mu   sync.Mutex
	cond *sync.Cond
	snap Snapshot
	gen  uint64
}

// NewPublishedSlot returns a slot published as Idle with the given
// initial remaining-ticks count (the job's full service time).
func NewPublishedSlot(initialRemaining int) *PublishedSlot {
	s := &PublishedSlot{snap: Snapshot{Status: Idle, Remaining: initialRemaining}}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Publish installs a new Snapshot and wakes any goroutine blocked in
// WaitFor. Only the job itself calls this.
func (s *PublishedSlot) Publish(snap Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.gen++
	s.cond.Broadcast()
	s.mu.Unlock()
}

// Read returns the most recently published Snapshot without blocking.
func (s *PublishedSlot) Read() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// WaitFor blocks until a Snapshot strictly newer than sinceGen is
// published, or ctx is done. It returns the snapshot, its generation, and
// ok=false if ctx was cancelled first.
func (s *PublishedSlot) WaitFor(ctx context.Context, sinceGen uint64) (snap Snapshot, gen uint64, ok bool) {
	stop := context.AfterFunc(ctx, func() {
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
	})
	defer stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for s.gen <= sinceGen {
		if ctx.Err() != nil {
			return Snapshot{}, 0, false
		}
		s.cond.Wait()
	}
	return s.snap, s.gen, true
}

// Gen returns the current generation without blocking, so a caller can
// seed sinceGen for a later WaitFor call.
func (s *PublishedSlot) Gen() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}
