// Package relay reads client requests off the rendezvous FIFO and
// hands them to the router, the Go analogue of the original server's
// relay process (server/src/relay.c): decode a request and forward it
// as an update.
package relay

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/SLP25/SDStore/internal/job"
	"github.com/SLP25/SDStore/internal/router"
	"github.com/SLP25/SDStore/internal/wire"
)

// Relay decodes requests from a single inbound stream and forwards
// them to a router's update channel.
type Relay struct {
	updates chan<- router.Update
	log     *logrus.Logger
}

// New creates a Relay that forwards decoded requests to updates.
func New(updates chan<- router.Update, log *logrus.Logger) *Relay {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Relay{updates: updates, log: log}
}

// Run decodes requests from r until it is exhausted or returns an
// error, translating each into a job.Request and forwarding it to the
// router. On EOF it emits UpdateServerDisconnected, matching the
// relay process detecting its rendezvous FIFO has been closed by every
// writer and telling the router to stop accepting admissions.
func (rl *Relay) Run(r io.Reader) error {
	reader := wire.NewReader(r)

	for {
		wreq, err := reader.ReadRequest()
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				rl.log.Debug("relay: inbound stream closed")
				rl.updates <- router.Update{Kind: router.UpdateServerDisconnected}
				return nil
			}
			rl.log.WithError(err).Warn("relay: malformed request, dropping connection")
			rl.updates <- router.Update{Kind: router.UpdateServerDisconnected}
			return err
		}

		rl.log.WithField("kind", wreq.Kind).Debug("relay: request received")
		rl.updates <- router.Update{Kind: router.UpdateRequest, Request: toJobRequest(wreq)}
	}
}

func toJobRequest(w *wire.Request) *job.Request {
	req := &job.Request{
		ReplyPath: w.ReplyPath,
	}

	switch w.Kind {
	case wire.KindStatus:
		req.Kind = job.Status
	case wire.KindProcessFile:
		req.Kind = job.ProcessFile
		req.Priority = int(w.Priority)
		req.Input = w.Input
		req.Output = w.Output
		req.Ops = w.Ops
	}

	return req
}
