// Package matcache tracks which pages are currently materialized
// (decompressed) in memory and, past a configured ceiling, names the
// least-recently-touched ones for opportunistic recompression. Adapted
// from the teacher's pkg/cache LRUManager (container/list + a mutex)
// generalized from buffer-pool frame IDs to page keys.
package matcache

import (
	"container/list"
	"sync"
)

// PageID identifies a page within the owning tree. btreeidx assigns
// these; matcache treats them as opaque comparable keys.
type PageID uint64

// Tracker records materialize/evict touches for a bounded working set
// of pages. A zero maxPages disables tracking: Touch becomes a no-op
// and Evictable always returns nil, matching spec's "max_materialized_pages
// = 0 means unbounded" default.
type Tracker struct {
	mu       sync.Mutex
	order    *list.List
	elements map[PageID]*list.Element
	maxPages int
}

// New builds a Tracker capped at maxPages resident pages. maxPages <= 0
// disables the cap.
func New(maxPages int) *Tracker {
	return &Tracker{
		order:    list.New(),
		elements: make(map[PageID]*list.Element),
		maxPages: maxPages,
	}
}

// Touch records that id was just materialized or read, moving it to
// the front of the recency list.
func (t *Tracker) Touch(id PageID) {
	if t.maxPages <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if elem, ok := t.elements[id]; ok {
		t.order.MoveToFront(elem)
		return
	}
	t.elements[id] = t.order.PushFront(id)
}

// Forget removes id from tracking entirely, used once a page is
// recompressed or deleted so it stops counting against the cap.
func (t *Tracker) Forget(id PageID) {
	if t.maxPages <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if elem, ok := t.elements[id]; ok {
		t.order.Remove(elem)
		delete(t.elements, id)
	}
}

// Len reports the number of pages currently tracked as materialized.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.order.Len()
}

// Evictable returns the least-recently-touched page IDs that push the
// tracker over its cap, oldest first, without removing them — the
// caller recompresses each and then calls Forget once it succeeds.
func (t *Tracker) Evictable() []PageID {
	if t.maxPages <= 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	over := t.order.Len() - t.maxPages
	if over <= 0 {
		return nil
	}

	out := make([]PageID, 0, over)
	for elem := t.order.Back(); elem != nil && len(out) < over; elem = elem.Prev() {
		out = append(out, elem.Value.(PageID))
	}
	return out
}
