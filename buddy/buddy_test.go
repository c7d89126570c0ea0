package buddy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesPowerOfTwo(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		minBlock int
		wantErr  bool
	}{
		{"valid", 1024, 32, false},
		{"valid_equal", 64, 64, false},
		{"total_not_pow2", 1000, 32, true},
		{"min_not_pow2", 1024, 30, true},
		{"min_gt_total", 32, 64, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(tt.total, tt.minBlock)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.total, a.Available())
		})
	}
}

func TestAllocateSplitsAndAligns(t *testing.T) {
	a, err := New(1024, 32)
	require.NoError(t, err)

	off1, ok := a.Allocate(1, 64)
	require.True(t, ok)
	assert.Equal(t, 0, off1)
	assert.True(t, a.HoldsBlockOfSize(1, 64))

	off2, ok := a.Allocate(2, 64)
	require.True(t, ok)
	assert.NotEqual(t, off1, off2)
	assert.Zero(t, off2%64, "block offset must be aligned to its rounded-up size")

	assert.Equal(t, 1024-128, a.Available())
}

func TestAllocateFailsWhenTooLarge(t *testing.T) {
	a, err := New(1024, 32)
	require.NoError(t, err)

	_, ok := a.Allocate(1, 2048)
	assert.False(t, ok)
	assert.Equal(t, 1024, a.Available(), "a failed allocation must not mutate state")
}

func TestFreeOfUnknownOwnerIsNoop(t *testing.T) {
	a, err := New(1024, 32)
	require.NoError(t, err)
	a.Free(999) // must not panic
	assert.Equal(t, 1024, a.Available())
}

func TestFreeCoalescesBuddiesBackToWholeArena(t *testing.T) {
	a, err := New(1024, 32)
	require.NoError(t, err)

	_, ok := a.Allocate(1, 64)
	require.True(t, ok)
	_, ok = a.Allocate(2, 64)
	require.True(t, ok)
	assert.Equal(t, 1024-128, a.Available())

	a.Free(1)
	a.Free(2)
	assert.Equal(t, 1024, a.Available())
	assert.Empty(t, a.freeLists[a.maxOrder-1], "no half-size blocks should remain after full coalesce")
	assert.Len(t, a.freeLists[a.maxOrder], 1, "arena must return to a single free block")
}

func TestMemoryBoundDeferral(t *testing.T) {
	a, err := New(1024, 32)
	require.NoError(t, err)

	_, ok := a.Allocate(1, 512)
	require.True(t, ok)
	_, ok = a.Allocate(2, 512)
	require.True(t, ok)

	_, ok = a.Allocate(3, 512)
	assert.False(t, ok, "arena is exhausted, third allocation must defer")

	a.Free(1)
	_, ok = a.Allocate(3, 512)
	assert.True(t, ok, "freeing job 1 must unblock job 3's admission")
}

// TestRandomizedAllocateFreeAlwaysPartitionsArena is a property test over a
// random sequence of allocate/free operations: at every point the free
// byte count plus every live owner's block size must equal the arena, and
// freeing every owner must return the arena to one free block.
func TestRandomizedAllocateFreeAlwaysPartitionsArena(t *testing.T) {
	const total = 4096
	const minBlock = 64
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 20; trial++ {
		a, err := New(total, minBlock)
		require.NoError(t, err)

		held := map[int]int{} // owner -> requested bytes
		nextOwner := 1

		for i := 0; i < 200; i++ {
			if len(held) > 0 && rng.Intn(2) == 0 {
				// free a random owner
				var owner int
				for o := range held {
					owner = o
					break
				}
				a.Free(owner)
				delete(held, owner)
			} else {
				owner := nextOwner
				nextOwner++
				size := (rng.Intn(8) + 1) * minBlock
				if off, ok := a.Allocate(owner, size); ok {
					held[owner] = size
					assert.GreaterOrEqual(t, off+size, off)
				}
			}

			liveBytes := 0
			for _, sz := range held {
				liveBytes += roundUpForTest(sz, minBlock)
			}
			assert.Equal(t, total, a.Available()+liveBytes, "free+live bytes must always partition the arena")
		}

		for owner := range held {
			a.Free(owner)
		}
		assert.Equal(t, total, a.Available())
		assert.Len(t, a.freeLists[a.maxOrder], 1, "arena must return to a single free block")
	}
}

func roundUpForTest(bytes, minBlock int) int {
	size := minBlock
	for size < bytes {
		size <<= 1
	}
	return size
}
