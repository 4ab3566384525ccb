package router

import (
	"fmt"
	"strings"

	"github.com/SLP25/SDStore/internal/job"
)

// statusReport renders the STATUS reply from spec.md §4.5: one line
// per in-flight request (its state, sequence number, priority and
// operation chain), followed by one line per catalog entry giving its
// current running/max instance count.
func (rt *Router) statusReport() string {
	var b strings.Builder

	rt.table.Each(func(req *job.Request) {
		state := "Pending"
		if req.Running {
			state = "Running"
		}
		fmt.Fprintf(&b, "%s task #%d:PRIORITY: %d %s -> ", state, req.Seq, req.Priority, req.Input)
		for _, op := range req.Ops {
			fmt.Fprintf(&b, "%s -> ", op)
		}
		fmt.Fprintf(&b, "%s\n", req.Output)
	})

	for i, e := range rt.catalog.Entries() {
		fmt.Fprintf(&b, "transform %s: %d/%d (running/max)\n", e.Name, e.Capacity-rt.avail[i], e.Capacity)
	}

	return b.String()
}
