// Package actor lets goroutines other than the owner of some piece of
// state run a closure on the owning goroutine, instead of guarding the
// state with a mutex.
//
// This is the same pattern uget's core.queue uses internally (a
// private dispatch loop selecting between its own channels and a
// JobQueue of pending closures): the owner's select loop adds one more
// case, `case j := <-a.Jobs`, and callers on other goroutines use Do
// to hand over work and block until it has run.
package actor

// Job is a single closure scheduled to run on an Actor's owning
// goroutine, together with the channel that signals completion.
type Job struct {
	Work func()
	Done chan struct{}
}

// Actor is the channel an owning goroutine reads jobs from.
type Actor struct {
	Jobs chan Job
}

// New creates an unstarted Actor. The owning goroutine is responsible
// for selecting on Jobs and running (and closing) each one it
// receives; Actor itself runs nothing.
func New() *Actor {
	return &Actor{Jobs: make(chan Job)}
}

// Do schedules fn to run on the owning goroutine and returns a channel
// that is closed once fn returns. Do blocks until the owner is ready
// to accept the job, but not until fn completes.
func (a *Actor) Do(fn func()) <-chan struct{} {
	done := make(chan struct{})
	a.Jobs <- Job{Work: fn, Done: done}
	return done
}

// Run executes j.Work and signals completion. Call this from the
// owning goroutine's select loop.
func (j Job) Run() {
	j.Work()
	close(j.Done)
}
