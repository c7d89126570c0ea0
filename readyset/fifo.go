package readyset

import "github.com/opslab/schedsim/job"

// FIFO is the Round Robin driver: strict admission order, O(1) insert and
// pop. It is a growable circular buffer, not a fixed one — a simulation
// run admits an unbounded number of jobs over time, unlike ring.Ring's
// fixed-size, preallocated-once item slice — but head/tail advance with
// the same modulo-length index arithmetic.
type FIFO struct {
	items      []*job.State
	head, size int
}

// NewFIFO returns an empty Round Robin ready-set.
func NewFIFO() *FIFO {
	return &FIFO{items: make([]*job.State, 8)}
}

// Insert appends s to the tail of the queue.
func (f *FIFO) Insert(s *job.State) {
	if f.size == len(f.items) {
		f.grow()
	}
	f.items[(f.head+f.size)%len(f.items)] = s
	f.size++
}

// PopHead removes and returns the head of the queue, or nil if empty.
func (f *FIFO) PopHead() *job.State {
	if f.size == 0 {
		return nil
	}
	s := f.items[f.head]
	f.items[f.head] = nil
	f.head = (f.head + 1) % len(f.items)
	f.size--
	return s
}

// PeekHead returns the head of the queue without removing it, or nil if
// empty.
func (f *FIFO) PeekHead() *job.State {
	if f.size == 0 {
		return nil
	}
	return f.items[f.head]
}

func (f *FIFO) Len() int { return f.size }

func (f *FIFO) IsEmpty() bool { return f.size == 0 }

// grow doubles capacity and re-lays out items starting at index 0, the
// same linearize-then-reslice approach container/ring's NewFromSlice
// uses for a one-shot build, applied here on each growth instead.
func (f *FIFO) grow() {
	next := make([]*job.State, len(f.items)*2)
	for i := 0; i < f.size; i++ {
		next[i] = f.items[(f.head+i)%len(f.items)]
	}
	f.items = next
	f.head = 0
}
