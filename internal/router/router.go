// Package router implements the admission and scheduling engine
// described in spec.md §4.4: it consumes updates from the relay and
// from in-flight job managers, maintains the availability vector, the
// request sorter and the in-flight table, launches a manager per
// admitted job, and writes the client-visible progress messages.
package router

import (
	"fmt"
	"io"
	"os"

	"github.com/chuckpreslar/emission"
	"github.com/sirupsen/logrus"

	"github.com/SLP25/SDStore/internal/actor"
	"github.com/SLP25/SDStore/internal/catalog"
	"github.com/SLP25/SDStore/internal/inflight"
	"github.com/SLP25/SDStore/internal/job"
	"github.com/SLP25/SDStore/internal/manager"
	"github.com/SLP25/SDStore/internal/sorter"
	"github.com/SLP25/SDStore/internal/wire"
)

// Router event ids, used with On*/Emit. The shape - an embedded
// emitter, int-keyed events, typed On* registration helpers - follows
// uget's core.Client (eDownload/eError/eResolve/... and
// OnDownload/OnError/...): here the router emits lifecycle events for
// a request instead of a download.
const (
	eAdmitted = iota
	eRejected
	eStarted
	eCompleted
	eFailed
)

// Router owns the scheduling state exclusively: no other goroutine may
// read or mutate the availability vector, the sorter or the in-flight
// table directly. Cross-goroutine status queries go through Query.
type Router struct {
	*emission.Emitter

	catalog *catalog.Catalog
	binPath string
	log     *logrus.Logger

	sorter *sorter.Sorter
	table  *inflight.Table
	avail  []int

	admissionOpen bool
	inFlightCount int

	updates chan Update
	queries *actor.Actor
}

// Config holds the parameters needed to build a Router.
type Config struct {
	Catalog       *catalog.Catalog
	BinPath       string
	Logger        *logrus.Logger
	QueueCapacity int // 0 selects pqueue.DefaultSize
}

// New builds a Router ready to Run. Updates must be delivered on the
// returned Router's Updates() channel by the relay and by every
// manager this router spawns.
func New(cfg Config) *Router {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Router{
		Emitter:       emission.NewEmitter(),
		catalog:       cfg.Catalog,
		binPath:       cfg.BinPath,
		log:           logger,
		sorter:        sorter.New(cfg.Catalog.Len(), cfg.QueueCapacity),
		table:         inflight.New(),
		avail:         cfg.Catalog.Capacities(),
		admissionOpen: true,
		updates:       make(chan Update, 16),
		queries:       actor.New(),
	}
}

// Updates returns the channel the relay and every spawned manager
// write Update values to.
func (rt *Router) Updates() chan<- Update { return rt.updates }

// OnAdmitted registers a hook called once a PROCESS_FILE request has
// been validated and enqueued.
func (rt *Router) OnAdmitted(f func(*job.Request)) { rt.On(eAdmitted, f) }

// OnRejected registers a hook called when a request is rejected,
// either for failing validation or because its sorter queue is full.
func (rt *Router) OnRejected(f func(*job.Request, string)) { rt.On(eRejected, f) }

// OnStarted registers a hook called when a request is selected for
// execution and its manager is spawned.
func (rt *Router) OnStarted(f func(*job.Request)) { rt.On(eStarted, f) }

// OnCompleted registers a hook called when a request's manager
// reports successful completion.
func (rt *Router) OnCompleted(f func(*job.Request, manager.Result)) { rt.On(eCompleted, f) }

// OnFailed registers a hook called when a request's manager reports a
// failed transformation chain.
func (rt *Router) OnFailed(f func(*job.Request, manager.Result)) { rt.On(eFailed, f) }

// Query runs fn on the router's owning goroutine and blocks until it
// has run, letting other goroutines (the diagnostics server, tests)
// safely read scheduling state without a lock. This is the same
// pattern uget's core.queue uses for its own Job/JobQueue: a closure
// handed to the owner's select loop instead of a mutex around shared
// fields.
func (rt *Router) Query(fn func(*Router)) {
	<-rt.queries.Do(func() { fn(rt) })
}

// StatusReport returns a snapshot of the STATUS reply text. Safe to
// call from any goroutine.
func (rt *Router) StatusReport() string {
	var report string
	rt.Query(func(r *Router) { report = r.statusReport() })
	return report
}

// Run executes the router's main loop: it dispatches updates one at a
// time and, after every one, attempts exactly one scheduling step, per
// spec.md §4.4 and invariant 4 in spec.md §8. It returns once
// admission is closed and every in-flight request has finished.
func (rt *Router) Run() {
	for rt.admissionOpen || rt.inFlightCount > 0 {
		select {
		case u := <-rt.updates:
			rt.handle(u)
			rt.scheduleStep()
		case q := <-rt.queries.Jobs:
			q.Run()
		}
	}
	rt.log.Info("router exited")
}

func (rt *Router) handle(u Update) {
	switch u.Kind {
	case UpdateRequest:
		rt.handleRequest(u.Request)
	case UpdateFinishedOp:
		rt.log.WithField("transform", rt.catalog.Name(u.OpID)).Debug("operation finished successfully")
		rt.avail[u.OpID]++
	case UpdateRequestFinished:
		rt.handleRequestFinished(u.Result)
	case UpdateServerDisconnected:
		rt.admissionOpen = false
	default:
		rt.log.Warnf("router: unknown update kind %d", u.Kind)
	}
}

func (rt *Router) handleRequest(req *job.Request) {
	reply, err := os.OpenFile(req.ReplyPath, os.O_WRONLY, 0)
	if err != nil {
		rt.log.WithError(err).WithField("reply", req.ReplyPath).Warn("could not open client reply handle")
		return
	}
	req.SetReply(reply)

	switch req.Kind {
	case job.Status:
		rt.log.Debug("status requested")
		writeLine(reply, rt.statusReport())
		closeReply(reply)

	case job.ProcessFile:
		rt.log.Debug("process-file requested")
		rt.admitProcessFile(req)

	default:
		rt.log.Warnf("router: unknown request kind %d", req.Kind)
		closeReply(reply)
	}
}

func (rt *Router) admitProcessFile(req *job.Request) {
	opIDs, ok := Validate(rt.catalog, req)
	if !ok {
		rt.log.Warn("request was considered invalid")
		rejectWithTrio(req.Reply())
		closeReply(req.Reply())
		rt.Emit(eRejected, req, "invalid request")
		return
	}

	writeLine(req.Reply(), "Pending")

	req.SetOpIDs(opIDs)
	slot := rt.table.Insert(req)

	if !rt.sorter.Enqueue(req) {
		rt.table.Remove(slot)
		rejectWithTrio(req.Reply())
		closeReply(req.Reply())
		rt.Emit(eRejected, req, "sorter queue full")
		return
	}

	rt.inFlightCount++
	rt.Emit(eAdmitted, req)
}

func (rt *Router) handleRequestFinished(res manager.Result) {
	rt.inFlightCount--

	req, ok := rt.table.Get(res.Seq)
	if !ok {
		rt.log.Warnf("router: request-finished update for unknown seq %d", res.Seq)
		return
	}

	if res.Succeeded() {
		bytesIn, bytesOut := res.Bytes()
		writeLine(req.Reply(), fmt.Sprintf("Concluded (bytes input: %d, bytes output: %d)", bytesIn, bytesOut))
		rt.Emit(eCompleted, req, res)
	} else {
		releaseUncompletedOps(rt.avail, req, res)
		writeLine(req.Reply(), "Concluded (operation failed)")
		rt.log.WithError(res.Err()).WithField("seq", res.Seq).Warn("request finished with a failed operation")
		rt.Emit(eFailed, req, res)
	}

	closeReply(req.Reply())
	rt.table.Remove(res.Seq)
}

// releaseUncompletedOps returns availability for every occurrence of a
// transformation that was reserved when the request started but never reported
// finished, because the chain failed before reaching it. This is the
// compensation spec.md §9's open question calls for: without it, a
// mid-chain failure would leak the remaining slots forever.
func releaseUncompletedOps(avail []int, req *job.Request, res manager.Result) {
	full := req.OpIDSeq()
	done := len(res.CompletedOps())
	for _, id := range full[done:] {
		avail[id]++
	}
}

func (rt *Router) scheduleStep() {
	winner := rt.sorter.NextInLine(rt.avail)
	if winner == nil {
		return
	}

	for _, id := range winner.OpIDSeq() {
		rt.avail[id]--
	}
	winner.Running = true

	writeLine(winner.Reply(), "Processing")
	rt.Emit(eStarted, winner)

	rt.spawnManager(winner)
}

// spawnManager is the Go stand-in for the original router forking a
// child to run runJobHandler: a goroutine plays the role of the
// manager process, running the transformation chain and reporting
// back exclusively through Updates - the router never waits on a
// specific manager directly.
func (rt *Router) spawnManager(req *job.Request) {
	go func() {
		result := manager.Run(req, rt.binPath, func(opID int) {
			rt.updates <- Update{Kind: UpdateFinishedOp, OpID: opID}
		})
		rt.updates <- Update{Kind: UpdateRequestFinished, Result: result}
	}()
}

func writeLine(w io.Writer, s string) {
	if w == nil {
		return
	}
	out := wire.NewWriter(w)
	if err := out.WriteString(s); err != nil {
		return
	}
	_ = out.Flush()
}

func rejectWithTrio(w io.Writer) {
	writeLine(w, "Request received")
	writeLine(w, "Request not considered valid")
	writeLine(w, "Concluded")
}

func closeReply(w io.Closer) {
	if w == nil {
		return
	}
	_ = w.Close()
}
