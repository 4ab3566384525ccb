package pqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SLP25/SDStore/internal/job"
)

func TestPushPopOrdersByPriorityThenSequence(t *testing.T) {
	q := New(10)

	low := &job.Request{Priority: 1, Seq: 1}
	high := &job.Request{Priority: 5, Seq: 2}
	mid := &job.Request{Priority: 3, Seq: 0}

	assert.True(t, q.Push(low))
	assert.True(t, q.Push(high))
	assert.True(t, q.Push(mid))

	top, ok := q.Pop()
	assert.True(t, ok)
	assert.Same(t, high, top)

	top, ok = q.Pop()
	assert.True(t, ok)
	assert.Same(t, mid, top)

	top, ok = q.Pop()
	assert.True(t, ok)
	assert.Same(t, low, top)

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestFullRejectsPushWithoutMutating(t *testing.T) {
	q := New(1)
	assert.True(t, q.Push(&job.Request{Seq: 1}))
	assert.True(t, q.Full())
	assert.False(t, q.Push(&job.Request{Seq: 2}))
	assert.Equal(t, 1, q.Len())
}

func TestRemoveDropsArbitraryElement(t *testing.T) {
	q := New(10)
	a := &job.Request{Priority: 1, Seq: 1}
	b := &job.Request{Priority: 1, Seq: 2}
	q.Push(a)
	q.Push(b)

	assert.True(t, q.Remove(a))
	assert.False(t, q.Remove(a))

	top, ok := q.Peek()
	assert.True(t, ok)
	assert.Same(t, b, top)
}
