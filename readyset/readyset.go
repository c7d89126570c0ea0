// Package readyset implements the three Ready-Set drivers of spec.md §4.3:
// a strict FIFO for Round Robin, and a comparator-driven binary heap
// shared by Highest-Priority-First and Shortest-Remaining-Time-Next.
package readyset

import "github.com/opslab/schedsim/job"

// Set is the common contract every policy driver satisfies. Insertion and
// extraction are O(1) for FIFO and O(log n) for Heap.
type Set interface {
	Insert(s *job.State)
	PopHead() *job.State
	PeekHead() *job.State
	Len() int
	IsEmpty() bool
}
