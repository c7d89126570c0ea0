// Package clock implements the virtual clock: a single monotone tick
// counter, single-writer and many-reader, that every other component
// synchronizes against instead of wall time.
package clock

import (
	"sync"

	"github.com/opslab/schedsim/simerr"
)

// Clock is a monotone integer tick counter. Exactly one goroutine should
// call Advance; any number of goroutines may call Read or Wait.
//
// A zero Clock is not usable; construct one with New.
type Clock struct {
	mu      sync.Mutex
	cond    *sync.Cond
	tick    uint64
	closed  bool
	highest uint64 // highest tick ever observed by a reader, for regression checks
}

// New returns a Clock initialized to tick 0.
func New() *Clock {
	c := &Clock{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Read returns the current tick. It never blocks.
func (c *Clock) Read() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, simerr.ErrClockClosed
	}
	return c.observe(c.tick)
}

// Advance moves the clock forward by one tick and wakes any goroutine
// blocked in Wait. Advance must be called by exactly one owner.
func (c *Clock) Advance() {
	c.mu.Lock()
	c.tick++
	c.cond.Broadcast()
	c.mu.Unlock()
}

// Wait blocks until the clock reaches a tick strictly greater than after,
// then returns that tick. It returns ErrClockClosed if the clock is
// destroyed while waiting.
func (c *Clock) Wait(after uint64) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for !c.closed && c.tick <= after {
		c.cond.Wait()
	}
	if c.closed {
		return 0, simerr.ErrClockClosed
	}
	return c.observe(c.tick)
}

// Destroy is idempotent; further reads and waits return ErrClockClosed.
func (c *Clock) Destroy() {
	c.mu.Lock()
	c.closed = true
	c.cond.Broadcast()
	c.mu.Unlock()
}

// observe enforces the monotonicity contract: a read must never see a
// tick lower than one already observed by any reader. Caller holds c.mu.
func (c *Clock) observe(t uint64) (uint64, error) {
	if t < c.highest {
		return 0, simerr.ErrClockRegression
	}
	c.highest = t
	return t, nil
}
