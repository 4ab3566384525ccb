// Package pqueue implements the max-heap priority queue described in
// spec.md §4.1: requests ordered by priority descending, sequence
// number ascending, with push/peek/pop/empty/full against a fixed
// upper bound.
//
// The heap machinery mirrors how uget's core.queue wraps
// container/heap around its own element type; here the comparator is
// job.Request.Less, never pointer identity (spec.md §9 flags raw
// pointer comparison in the original C comparator as a bug - this
// implementation never had that option to begin with).
package pqueue

import (
	"container/heap"

	"github.com/SLP25/SDStore/internal/job"
)

// DefaultSize is the upper bound on elements in a single queue,
// matching the original server's QUEUE_SIZE.
const DefaultSize = 100000

// Queue is a bounded max-heap of *job.Request.
type Queue struct {
	h   innerHeap
	max int
}

// New creates an empty Queue with the given capacity. A capacity of 0
// selects DefaultSize.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultSize
	}
	q := &Queue{h: make(innerHeap, 0), max: capacity}
	heap.Init(&q.h)
	return q
}

// Len returns the number of elements currently queued.
func (q *Queue) Len() int { return q.h.Len() }

// Empty reports whether the queue holds no elements.
func (q *Queue) Empty() bool { return q.h.Len() == 0 }

// Full reports whether the queue is at capacity.
func (q *Queue) Full() bool { return q.h.Len() >= q.max }

// Push inserts r into the queue. It returns false, leaving the queue
// unchanged, if the queue is already full.
func (q *Queue) Push(r *job.Request) bool {
	if q.Full() {
		return false
	}
	heap.Push(&q.h, r)
	return true
}

// Peek returns the highest-priority element without removing it.
func (q *Queue) Peek() (*job.Request, bool) {
	if q.h.Len() == 0 {
		return nil, false
	}
	return q.h[0], true
}

// Pop removes and returns the highest-priority element.
func (q *Queue) Pop() (*job.Request, bool) {
	if q.h.Len() == 0 {
		return nil, false
	}
	return heap.Pop(&q.h).(*job.Request), true
}

// Remove drops r from the queue, wherever it sits in the heap. It
// reports whether r was found. Used when a winning request must be
// popped from every one of its required queues, not just the one that
// made it the candidate.
func (q *Queue) Remove(r *job.Request) bool {
	for i, e := range q.h {
		if e == r {
			heap.Remove(&q.h, i)
			return true
		}
	}
	return false
}

type innerHeap []*job.Request

func (h innerHeap) Len() int            { return len(h) }
func (h innerHeap) Less(i, j int) bool  { return h[i].Less(h[j]) }
func (h innerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *innerHeap) Push(x interface{}) { *h = append(*h, x.(*job.Request)) }
func (h *innerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
