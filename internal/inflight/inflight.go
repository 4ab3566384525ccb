// Package inflight implements the in-flight request table from
// spec.md §4.3: a sparse array of live requests keyed by sequence
// number, with a free-list of reusable slots, used for status
// reporting and to dereference a completion update back to its
// request.
package inflight

import "github.com/SLP25/SDStore/internal/job"

// Table is a dynamically sized sparse array of *job.Request with a
// stack of freed slots.
type Table struct {
	slots []*job.Request
	free  []int
}

// New creates an empty Table.
func New() *Table {
	return &Table{slots: make([]*job.Request, 0, 128)}
}

// Insert writes r into the next free slot (a reused one if available,
// otherwise the tail, growing the backing array geometrically), stamps
// r.Seq with that slot index, and returns the slot index.
func (t *Table) Insert(r *job.Request) int {
	var slot int
	if n := len(t.free); n > 0 {
		slot = t.free[n-1]
		t.free = t.free[:n-1]
		t.slots[slot] = r
	} else {
		slot = len(t.slots)
		t.slots = append(t.slots, r)
	}
	r.Seq = slot
	return slot
}

// Remove releases the slot for seq, making it available for reuse.
func (t *Table) Remove(seq int) {
	if seq < 0 || seq >= len(t.slots) || t.slots[seq] == nil {
		return
	}
	t.slots[seq] = nil
	t.free = append(t.free, seq)
}

// Get returns the request at seq, if any.
func (t *Table) Get(seq int) (*job.Request, bool) {
	if seq < 0 || seq >= len(t.slots) || t.slots[seq] == nil {
		return nil, false
	}
	return t.slots[seq], true
}

// Each calls fn for every live request, in slot order, skipping empty
// slots.
func (t *Table) Each(fn func(*job.Request)) {
	for _, r := range t.slots {
		if r != nil {
			fn(r)
		}
	}
}
