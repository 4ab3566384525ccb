// Package sorter implements the request sorter from spec.md §4.2: an
// indexed family of priority queues, one per transformation, and the
// joint-feasibility rule that decides which pending request, if any,
// may start running against a given availability vector.
package sorter

import (
	"github.com/SLP25/SDStore/internal/job"
	"github.com/SLP25/SDStore/internal/pqueue"
)

// Sorter owns one priority queue per catalog entry.
type Sorter struct {
	queues []*pqueue.Queue
}

// New creates a Sorter with one bounded queue per transformation.
func New(numTransforms, queueCapacity int) *Sorter {
	qs := make([]*pqueue.Queue, numTransforms)
	for i := range qs {
		qs[i] = pqueue.New(queueCapacity)
	}
	return &Sorter{queues: qs}
}

// Enqueue adds r to every queue for a transformation it uses. It is
// all-or-nothing: if any required queue is already full, no push
// happens at all and Enqueue returns false, preserving the invariant
// that r sits in every queue it requires, or none.
func (s *Sorter) Enqueue(r *job.Request) bool {
	for _, id := range r.OpIDs() {
		if s.queues[id].Full() {
			return false
		}
	}
	for _, id := range r.OpIDs() {
		s.queues[id].Push(r)
	}
	return true
}

// NextInLine selects at most one request to admit to execution, given
// the current per-transformation availability. It implements
// spec.md §4.2 step by step:
//
//  1. mark transformation i blocked if it has no availability, or its
//     queue's head would need more instances than are available;
//  2. a queue head is approved only if it is simultaneously the head
//     of every queue it occupies, and none of those queues is blocked;
//  3. among approved candidates, pick the highest priority, earliest
//     sequence number;
//  4. pop the winner from every queue it occupies and return it.
func (s *Sorter) NextInLine(available []int) *job.Request {
	blocked := make([]bool, len(s.queues))
	tops := make([]*job.Request, len(s.queues))

	for i, q := range s.queues {
		top, ok := q.Peek()
		tops[i] = top
		switch {
		case available[i] <= 0:
			blocked[i] = true
		case ok && top.CountOf(i) > available[i]:
			blocked[i] = true
		}
	}

	var winner *job.Request
	for i, top := range tops {
		if blocked[i] || top == nil {
			continue
		}

		approved := true
		for _, j := range top.OpIDs() {
			if blocked[j] {
				approved = false
				break
			}
			if headJ, ok := s.queues[j].Peek(); !ok || headJ != top {
				approved = false
				break
			}
		}
		if !approved {
			continue
		}

		if winner == nil || top.Less(winner) {
			winner = top
		}
	}

	if winner == nil {
		return nil
	}

	for _, id := range winner.OpIDs() {
		s.queues[id].Remove(winner)
	}
	return winner
}
