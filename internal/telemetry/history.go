package telemetry

import (
	"sync"
	"time"
)

// sampleRing is a fixed-capacity circular buffer of Samples.
type sampleRing struct {
	data     []Sample
	head     int
	size     int
	capacity int
}

func newSampleRing(capacity int) *sampleRing {
	return &sampleRing{
		data:     make([]Sample, capacity),
		capacity: capacity,
	}
}

func (rb *sampleRing) push(s Sample) {
	idx := (rb.head + rb.size) % rb.capacity
	rb.data[idx] = s
	if rb.size < rb.capacity {
		rb.size++
	} else {
		rb.head = (rb.head + 1) % rb.capacity
	}
}

// slice returns all samples in chronological order.
func (rb *sampleRing) slice() []Sample {
	out := make([]Sample, rb.size)
	for i := 0; i < rb.size; i++ {
		out[i] = rb.data[(rb.head+i)%rb.capacity]
	}
	return out
}

// History retains a bounded rolling window of samples per subsystem
// category. Oldest entries are evicted first once a ring is full.
type History struct {
	mu    sync.RWMutex
	rings map[Category]*sampleRing
}

// NewHistory creates per-category rings with the given capacity.
func NewHistory(capacity int) *History {
	rings := make(map[Category]*sampleRing, len(Categories()))
	for _, c := range Categories() {
		rings[c] = newSampleRing(capacity)
	}
	return &History{rings: rings}
}

// Push appends the sample to every category ring.
func (h *History) Push(s Sample) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, rb := range h.rings {
		rb.push(s)
	}
}

// Latest returns the most recent sample, or false when empty.
func (h *History) Latest() (Sample, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rb := h.rings[CategoryBattery]
	if rb.size == 0 {
		return Sample{}, false
	}
	return rb.data[(rb.head+rb.size-1)%rb.capacity], true
}

// Category returns the retained samples for a category in chronological
// order. Unknown categories yield nil.
func (h *History) Category(c Category) []Sample {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rb, ok := h.rings[c]
	if !ok {
		return nil
	}
	return rb.slice()
}

// CategorySince returns the retained samples for a category with timestamps
// at or after the cutoff.
func (h *History) CategorySince(c Category, cutoff time.Time) []Sample {
	all := h.Category(c)
	cutoffMs := cutoff.UnixMilli()
	for i, s := range all {
		if s.Timestamp >= cutoffMs {
			return all[i:]
		}
	}
	return nil
}

// Recent returns up to n most recent samples in chronological order.
func (h *History) Recent(n int) []Sample {
	all := h.Category(CategoryBattery)
	if len(all) > n {
		return all[len(all)-n:]
	}
	return all
}

// Len reports the number of retained samples.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rings[CategoryBattery].size
}
