package heap

import (
	"sync"
)

// Heap tracks every record allocated through it so the collector can
// reclaim the ones that are no longer reachable.
//
// Two locks are involved:
//   - world is the safe point. Mutators run inside Do; the collector holds
//     world for the whole mark/sweep so it never observes a half-finished
//     mutation.
//   - mu protects the tracked set and is only held briefly by Track and
//     by the sweep.
type Heap struct {
	world sync.Mutex

	mu      sync.Mutex
	tracked map[Ref]uint64
	nextID  uint64
}

// New creates an empty heap.
func New() *Heap {
	return &Heap{
		tracked: make(map[Ref]uint64),
		nextID:  1, // 0 means untracked
	}
}

// Track registers ref with the heap. Tracking the same ref twice is a
// no-op. It panics if ref is not comparable.
func (h *Heap) Track(ref Ref) {
	if ref == nil {
		return
	}
	mustBeComparable("Track", ref)
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.tracked[ref]; ok {
		return
	}
	h.tracked[ref] = h.nextID
	h.nextID++
}

// Tracked reports whether ref is currently tracked.
func (h *Heap) Tracked(ref Ref) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.tracked[ref]
	return ok
}

// ID returns the allocation ID of ref, or 0 if it is not tracked.
func (h *Heap) ID(ref Ref) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tracked[ref]
}

// Len returns the number of tracked records.
func (h *Heap) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.tracked)
}

// Do runs fn as a mutator section. No collection runs while fn executes.
func (h *Heap) Do(fn func()) {
	h.world.Lock()
	defer h.world.Unlock()
	fn()
}

// sweep drops every tracked record not present in live and returns the
// number removed.
func (h *Heap) sweep(live map[Ref]struct{}) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	swept := 0
	for ref := range h.tracked {
		if _, ok := live[ref]; !ok {
			delete(h.tracked, ref)
			swept++
		}
	}
	return swept
}
