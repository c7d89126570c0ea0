package readyset

import (
	"testing"

	"github.com/opslab/schedsim/job"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func state(id int, arrival uint64, priority, remaining int) *job.State {
	s := job.NewState(job.Descriptor{
		ID:           id,
		ArrivalTick:  arrival,
		ServiceTicks: remaining,
		Priority:     priority,
	}, 0, job.NewControlSlot())
	s.RemainingTicks = remaining
	return s
}

func TestFIFOOrdersByInsertion(t *testing.T) {
	f := NewFIFO()
	assert.True(t, f.IsEmpty())
	assert.Nil(t, f.PeekHead())

	a, b, c := state(1, 0, 0, 0), state(2, 1, 0, 0), state(3, 2, 0, 0)
	f.Insert(a)
	f.Insert(b)
	f.Insert(c)
	require.Equal(t, 3, f.Len())

	assert.Same(t, a, f.PeekHead())
	assert.Same(t, a, f.PopHead())
	assert.Same(t, b, f.PopHead())
	assert.Same(t, c, f.PopHead())
	assert.True(t, f.IsEmpty())
	assert.Nil(t, f.PopHead())
}

func TestFIFOGrowsPastInitialCapacity(t *testing.T) {
	f := NewFIFO()
	const n = 50
	jobs := make([]*job.State, n)
	for i := 0; i < n; i++ {
		jobs[i] = state(i, uint64(i), 0, 0)
		f.Insert(jobs[i])
	}
	require.Equal(t, n, f.Len())
	for i := 0; i < n; i++ {
		assert.Same(t, jobs[i], f.PopHead())
	}
}

func TestFIFOInterleavesInsertAndPop(t *testing.T) {
	f := NewFIFO()
	a, b := state(1, 0, 0, 0), state(2, 1, 0, 0)
	f.Insert(a)
	assert.Same(t, a, f.PopHead())
	f.Insert(b)
	c := state(3, 2, 0, 0)
	f.Insert(c)
	assert.Same(t, b, f.PopHead())
	assert.Same(t, c, f.PopHead())
}

func TestHeapHPFOrdersByPriorityThenArrival(t *testing.T) {
	h := NewHeap(LessHPF)
	low := state(1, 5, 3, 0)  // lower priority value = higher priority, arrives later
	high := state(2, 0, 1, 0) // highest priority, earliest arrival
	mid := state(3, 1, 2, 0)
	h.Insert(low)
	h.Insert(high)
	h.Insert(mid)

	assert.Same(t, high, h.PopHead())
	assert.Same(t, mid, h.PopHead())
	assert.Same(t, low, h.PopHead())
	assert.True(t, h.IsEmpty())
}

func TestHeapHPFTiesBrokenByArrival(t *testing.T) {
	h := NewHeap(LessHPF)
	later := state(1, 5, 1, 0)
	earlier := state(2, 2, 1, 0)
	h.Insert(later)
	h.Insert(earlier)

	assert.Same(t, earlier, h.PopHead())
	assert.Same(t, later, h.PopHead())
}

func TestHeapSRTNOrdersByRemainingThenArrival(t *testing.T) {
	h := NewHeap(LessSRTN)
	long := state(1, 0, 0, 10)
	short := state(2, 1, 0, 2)
	tie1 := state(3, 2, 0, 2)
	h.Insert(long)
	h.Insert(short)
	h.Insert(tie1)

	assert.Same(t, short, h.PeekHead())
	assert.Same(t, short, h.PopHead())
	assert.Same(t, tie1, h.PopHead())
	assert.Same(t, long, h.PopHead())
}

func TestHeapPeekHeadDoesNotRemove(t *testing.T) {
	h := NewHeap(LessSRTN)
	s := state(1, 0, 0, 1)
	h.Insert(s)
	assert.Same(t, s, h.PeekHead())
	require.Equal(t, 1, h.Len())
	assert.Same(t, s, h.PopHead())
}
