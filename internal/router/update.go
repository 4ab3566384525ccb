package router

import (
	"github.com/SLP25/SDStore/internal/job"
	"github.com/SLP25/SDStore/internal/manager"
)

// UpdateKind tags the payload carried by an Update, mirroring the
// original UpdateType enum (server/include/update.h).
type UpdateKind int

const (
	// UpdateRequest carries a freshly received request from the relay
	// to the router.
	UpdateRequest UpdateKind = iota
	// UpdateFinishedOp carries a transformation index, emitted by a
	// manager every time one of its children exits successfully.
	UpdateFinishedOp
	// UpdateRequestFinished carries a completed request's result back
	// from its manager.
	UpdateRequestFinished
	// UpdateServerDisconnected is emitted by the relay when its inbound
	// rendezvous point closes; it signals admission shutdown.
	UpdateServerDisconnected
)

// Update is a tagged message delivered to the router's single input
// channel, written to by the relay and by every live manager.
type Update struct {
	Kind    UpdateKind
	Request *job.Request   // set for UpdateRequest
	OpID    int            // set for UpdateFinishedOp
	Result  manager.Result // set for UpdateRequestFinished
}
