package router

import (
	"github.com/SLP25/SDStore/internal/catalog"
	"github.com/SLP25/SDStore/internal/job"
)

// Validate checks a PROCESS_FILE request against spec.md §4.6: input,
// output and ops must all be present, there must be at least one
// operation, and every operation name must resolve in the catalog. On
// success it also returns the resolved catalog id of every operation,
// in submission order, ready to hand to job.Request.SetOpIDs.
func Validate(cat *catalog.Catalog, req *job.Request) (opIDs []int, ok bool) {
	if req.Input == "" || req.Output == "" || len(req.Ops) == 0 {
		return nil, false
	}

	ids := make([]int, len(req.Ops))
	for i, name := range req.Ops {
		id, found := cat.ID(name)
		if !found {
			return nil, false
		}
		ids[i] = id
	}
	return ids, true
}
