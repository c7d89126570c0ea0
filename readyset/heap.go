package readyset

import (
	"container/heap"

	"github.com/opslab/schedsim/job"
)

// Less orders two Job State Records for a heap-backed ready-set. HPF
// compares (priority ASC, arrival ASC); SRTN compares (remaining ASC,
// arrival ASC) — see LessHPF and LessSRTN.
type Less func(a, b *job.State) bool

// LessHPF implements Highest-Priority-First ordering: smaller priority
// value first, ties broken by earlier arrival.
func LessHPF(a, b *job.State) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.ArrivalTick < b.ArrivalTick
}

// LessSRTN implements Shortest-Remaining-Time-Next ordering: fewer
// remaining ticks first, ties broken by earlier arrival.
func LessSRTN(a, b *job.State) bool {
	if a.RemainingTicks != b.RemainingTicks {
		return a.RemainingTicks < b.RemainingTicks
	}
	return a.ArrivalTick < b.ArrivalTick
}

// Heap is a single generic binary heap over container/heap, parameterized
// by a Less comparator supplied per policy. No repository in the
// retrieved pack ships a priority-queue library, so container/heap is the
// one deliberate stdlib exception among the Ready-Set drivers.
type Heap struct {
	h heapImpl
}

// NewHeap returns an empty ready-set ordered by less.
func NewHeap(less Less) *Heap {
	return &Heap{h: heapImpl{less: less}}
}

func (hp *Heap) Insert(s *job.State) {
	heap.Push(&hp.h, s)
}

func (hp *Heap) PopHead() *job.State {
	if hp.h.Len() == 0 {
		return nil
	}
	return heap.Pop(&hp.h).(*job.State)
}

func (hp *Heap) PeekHead() *job.State {
	if hp.h.Len() == 0 {
		return nil
	}
	return hp.h.items[0]
}

func (hp *Heap) Len() int { return hp.h.Len() }

func (hp *Heap) IsEmpty() bool { return hp.h.Len() == 0 }

// heapImpl satisfies container/heap.Interface; it is unexported because
// callers only ever interact with it through Heap.
type heapImpl struct {
	items []*job.State
	less  Less
}

func (h heapImpl) Len() int            { return len(h.items) }
func (h heapImpl) Less(i, j int) bool  { return h.less(h.items[i], h.items[j]) }
func (h heapImpl) Swap(i, j int)       { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *heapImpl) Push(x interface{}) { h.items = append(h.items, x.(*job.State)) }
func (h *heapImpl) Pop() interface{} {
	old := h.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	h.items = old[:n-1]
	return item
}
