// Package buddy implements the power-of-two buddy allocator backing
// per-job memory: split on demand, merge buddies eagerly on free.
package buddy

import (
	"fmt"
	"math/bits"

	"github.com/bytedance/gopkg/lang/mcache"
)

// block records an owner's live allocation, used to validate Free and to
// compute the XOR buddy offset on coalesce.
type block struct {
	offset int
	size   int // power of two, >= MinBlock
}

// Allocator manages a single arena of size TotalMemory with minimum grain
// MinBlock. It is not safe for concurrent use; the scheduler core is its
// only caller (see spec.md §5).
type Allocator struct {
	arena []byte // backing bytes, obtained from mcache

	total    int
	minBlock int
	minShift int
	maxOrder int

	// freeLists[order] holds the offsets of free blocks of size
	// minBlock<<order, for order in [0, maxOrder].
	freeLists [][]int

	// live maps owner id -> the block currently held by that owner.
	live map[int]block
}

// New creates an Allocator over a fresh arena of size total bytes with
// minimum block size minBlock. Both must be powers of two, and
// minBlock <= total.
func New(total, minBlock int) (*Allocator, error) {
	if total <= 0 || total&(total-1) != 0 {
		return nil, fmt.Errorf("buddy: total memory must be a power of two, got %d", total)
	}
	if minBlock <= 0 || minBlock&(minBlock-1) != 0 {
		return nil, fmt.Errorf("buddy: min block must be a power of two, got %d", minBlock)
	}
	if minBlock > total {
		return nil, fmt.Errorf("buddy: min block (%d) must be <= total memory (%d)", minBlock, total)
	}

	minShift := bits.TrailingZeros(uint(minBlock))
	maxOrder := bits.TrailingZeros(uint(total)) - minShift

	a := &Allocator{
		arena:     mcache.Malloc(total),
		total:     total,
		minBlock:  minBlock,
		minShift:  minShift,
		maxOrder:  maxOrder,
		freeLists: make([][]int, maxOrder+1),
		live:      make(map[int]block),
	}
	a.freeLists[maxOrder] = []int{0}
	return a, nil
}

// Close releases the arena back to mcache. The Allocator must not be used
// afterward.
func (a *Allocator) Close() {
	mcache.Free(a.arena)
	a.arena = nil
}

// Allocate reserves a block of at least bytes for owner and returns its
// offset into the arena. It fails (ok=false) without mutating any state
// if bytes exceeds the arena size or no free block is large enough.
func (a *Allocator) Allocate(owner, requestBytes int) (offset int, ok bool) {
	if requestBytes <= 0 {
		return 0, false
	}
	size := a.roundUp(requestBytes)
	if size > a.total {
		return 0, false
	}
	order := a.orderForSize(size)

	foundOrder := -1
	for o := order; o <= a.maxOrder; o++ {
		if len(a.freeLists[o]) > 0 {
			foundOrder = o
			break
		}
	}
	if foundOrder == -1 {
		return 0, false
	}

	// Pop the lowest-offset free block of foundOrder (deterministic tie-break).
	freeList := a.freeLists[foundOrder]
	lowest := 0
	for i, off := range freeList {
		if off < freeList[lowest] {
			lowest = i
		}
		_ = i
	}
	blockOffset := freeList[lowest]
	a.freeLists[foundOrder] = append(freeList[:lowest], freeList[lowest+1:]...)

	// Split repeatedly: each split frees the right-hand buddy at the next
	// lower order, keeping the left-hand half (same offset) for further
	// splitting or allocation.
	for foundOrder > order {
		foundOrder--
		buddySize := a.minBlock << foundOrder
		right := blockOffset + buddySize
		a.freeLists[foundOrder] = append(a.freeLists[foundOrder], right)
	}

	a.live[owner] = block{offset: blockOffset, size: size}
	return blockOffset, true
}

// Free releases owner's block, if any, and coalesces with its buddy
// repeatedly while possible. Freeing an owner that holds no block is a
// silent no-op, per spec.md §4.2.
func (a *Allocator) Free(owner int) {
	b, ok := a.live[owner]
	if !ok {
		return
	}
	delete(a.live, owner)

	order := a.orderForSize(b.size)
	offset := b.offset
	for order < a.maxOrder {
		buddyOffset := offset ^ (a.minBlock << order)
		idx := indexOf(a.freeLists[order], buddyOffset)
		if idx == -1 {
			break
		}
		a.freeLists[order] = append(a.freeLists[order][:idx], a.freeLists[order][idx+1:]...)
		if buddyOffset < offset {
			offset = buddyOffset
		}
		order++
	}
	a.freeLists[order] = append(a.freeLists[order], offset)
}

// HoldsBlockOfSize reports whether owner currently holds a block at least
// as large as wantBytes — used by callers that must detect corruption
// (an owner whose recorded size doesn't match what's expected) before
// calling Free, per spec.md §4.2's fatal-corruption clause.
func (a *Allocator) HoldsBlockOfSize(owner, wantBytes int) bool {
	b, ok := a.live[owner]
	return ok && b.size >= wantBytes
}

// Available returns the total free bytes across all orders.
func (a *Allocator) Available() int {
	total := 0
	for order, list := range a.freeLists {
		total += len(list) * (a.minBlock << order)
	}
	return total
}

// roundUp returns the smallest power of two >= max(bytes, minBlock).
func (a *Allocator) roundUp(bytes int) int {
	if bytes <= a.minBlock {
		return a.minBlock
	}
	return 1 << bits.Len(uint(bytes-1))
}

func (a *Allocator) orderForSize(size int) int {
	return bits.TrailingZeros(uint(size)) - a.minShift
}

func indexOf(xs []int, v int) int {
	for i, x := range xs {
		if x == v {
			return i
		}
	}
	return -1
}
