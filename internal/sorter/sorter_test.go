package sorter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SLP25/SDStore/internal/job"
)

func newRequest(priority, seq int, ops []string, opIDs []int) *job.Request {
	r := &job.Request{Priority: priority, Seq: seq, Ops: ops}
	r.SetOpIDs(opIDs)
	return r
}

func TestEnqueueIsAllOrNothing(t *testing.T) {
	s := New(2, 1)

	a := newRequest(1, 0, []string{"gzip", "nop"}, []int{0, 1})
	assert.True(t, s.Enqueue(a))

	b := newRequest(1, 1, []string{"gzip"}, []int{0})
	assert.False(t, s.Enqueue(b), "gzip's queue is already full, so b must be rejected outright")

	winner := s.NextInLine([]int{1, 1})
	require.NotNil(t, winner)
	assert.Same(t, a, winner)
}

func TestNextInLineRequiresEveryQueueHeadSimultaneously(t *testing.T) {
	s := New(2, 10)

	// a needs gzip+nop, b needs only gzip and has higher priority so it
	// sits ahead of a in gzip's queue, but not in nop's queue (it's not
	// there at all) - a can never be approved while b leads gzip's queue,
	// because a is not the head of the queue it shares with b.
	a := newRequest(1, 0, []string{"gzip", "nop"}, []int{0, 1})
	b := newRequest(5, 1, []string{"gzip"}, []int{0})

	require.True(t, s.Enqueue(a))
	require.True(t, s.Enqueue(b))

	winner := s.NextInLine([]int{1, 1})
	require.NotNil(t, winner)
	assert.Same(t, b, winner, "b is the approved head of gzip's queue and needs no other queue")

	// Once b is popped, a becomes gzip's head too and can be approved.
	winner = s.NextInLine([]int{1, 1})
	require.NotNil(t, winner)
	assert.Same(t, a, winner)
}

func TestNextInLineBlocksOnInsufficientAvailability(t *testing.T) {
	s := New(1, 10)
	a := newRequest(1, 0, []string{"gzip"}, []int{0})
	require.True(t, s.Enqueue(a))

	assert.Nil(t, s.NextInLine([]int{0}))
	assert.Same(t, a, mustPeekWinner(t, s, []int{1}))
}

func mustPeekWinner(t *testing.T, s *Sorter, available []int) *job.Request {
	t.Helper()
	w := s.NextInLine(available)
	require.NotNil(t, w)
	return w
}

func TestFIFOTieBreakAtEqualPriority(t *testing.T) {
	s := New(1, 10)
	first := newRequest(2, 0, []string{"gzip"}, []int{0})
	second := newRequest(2, 1, []string{"gzip"}, []int{0})

	require.True(t, s.Enqueue(first))
	require.True(t, s.Enqueue(second))

	assert.Same(t, first, s.NextInLine([]int{1}))
	assert.Same(t, second, s.NextInLine([]int{1}))
}
