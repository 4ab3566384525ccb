package inflight

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SLP25/SDStore/internal/job"
)

func TestInsertStampsSeqAndReusesFreedSlots(t *testing.T) {
	tbl := New()

	r1 := &job.Request{}
	s1 := tbl.Insert(r1)
	assert.Equal(t, 0, s1)
	assert.Equal(t, 0, r1.Seq)

	r2 := &job.Request{}
	s2 := tbl.Insert(r2)
	assert.Equal(t, 1, s2)

	tbl.Remove(s1)
	_, ok := tbl.Get(s1)
	assert.False(t, ok)

	r3 := &job.Request{}
	s3 := tbl.Insert(r3)
	assert.Equal(t, s1, s3)
	assert.Equal(t, s1, r3.Seq)
}

func TestEachVisitsOnlyLiveEntries(t *testing.T) {
	tbl := New()
	r1 := &job.Request{}
	r2 := &job.Request{}
	s1 := tbl.Insert(r1)
	tbl.Insert(r2)
	tbl.Remove(s1)

	var seen []*job.Request
	tbl.Each(func(r *job.Request) { seen = append(seen, r) })

	assert.Len(t, seen, 1)
	assert.Same(t, r2, seen[0])
}
