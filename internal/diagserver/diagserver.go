// Package diagserver exposes a loopback-only HTTP mirror of the
// router's STATUS reply, for operators who would rather curl an
// endpoint than open a client connection to the daemon. It is
// additive: nothing in spec.md requires it, and no client protocol
// behavior depends on it being present.
//
// The server shape - a macaron instance with a logrus-backed writer
// routed to its logger - is lifted from the teacher's server/server.go
// and narrowed from a full download-container API down to one
// read-only route.
package diagserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/Unknwon/macaron"
	"github.com/sirupsen/logrus"

	"github.com/SLP25/SDStore/internal/router"
)

// Server serves GET /status as a JSON mirror of the router's
// StatusReport, bound to loopback only.
type Server struct {
	Port   uint16
	Router *router.Router
	Log    *logrus.Logger
}

type macaronLog struct{ log *logrus.Logger }

func (w macaronLog) Write(p []byte) (int, error) {
	w.log.Debug(strings.TrimSpace(string(p)))
	return len(p), nil
}

type statusResponse struct {
	Report  string    `json:"report"`
	Sampled time.Time `json:"sampled_at"`
}

// Run starts serving and blocks, matching macaron.Macaron.Run's own
// blocking contract; callers spawn it in its own goroutine.
func (s *Server) Run() {
	log := s.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	m := macaron.NewWithLogger(macaronLog{log: log})
	m.Get("/status", s.handleStatus)

	log.WithField("port", s.Port).Info("diagnostics server listening on loopback")
	m.Run("127.0.0.1", int(s.Port))
}

func (s *Server) handleStatus(c *macaron.Context) {
	c.JSON(http.StatusOK, statusResponse{
		Report:  s.Router.StatusReport(),
		Sampled: time.Now(),
	})
}
