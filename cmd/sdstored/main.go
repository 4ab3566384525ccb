// Command sdstored runs the SDStore daemon: it loads the
// transformation catalog, opens the rendezvous FIFO, and runs the
// router, relay and diagnostics server concurrently. This takes the
// place of the original daemon's fork of a relay process and a router
// process; here they are goroutines sharing a single address space,
// communicating exclusively through the router's Updates channel, as
// described in SPEC_FULL.md's Design Notes.
package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/SLP25/SDStore/internal/config"
	"github.com/SLP25/SDStore/internal/diagserver"
	"github.com/SLP25/SDStore/internal/job"
	"github.com/SLP25/SDStore/internal/manager"
	"github.com/SLP25/SDStore/internal/relay"
	"github.com/SLP25/SDStore/internal/router"
	"github.com/SLP25/SDStore/utils/units"
)

var (
	fifoPath   string
	configPath string
	binPath    string
	logLevel   string
	diagPort   uint16
)

func main() {
	root := &cobra.Command{
		Use:   "sdstored",
		Short: "Run the SDStore transformation daemon",
		RunE:  run,
	}

	root.Flags().StringVar(&fifoPath, "fifo", "/tmp/sdstore.fifo", "rendezvous FIFO clients connect requests through")
	root.Flags().StringVar(&configPath, "config", "sdstore.conf", "transformation catalog config file")
	root.Flags().StringVar(&binPath, "bin-dir", "./transformations", "directory holding transformation binaries")
	root.Flags().StringVar(&logLevel, "log-level", "info", "logrus level: debug, info, warn, error")
	root.Flags().Uint16Var(&diagPort, "diag-port", 0, "loopback port for the HTTP status mirror (0 disables it)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if len(args) > 2 {
		return fmt.Errorf("expected at most 2 arguments (<config-file> <bin-dir>), got %d", len(args))
	}
	if len(args) > 0 {
		configPath = args[0]
	}
	if len(args) > 1 {
		binPath = args[1]
	}

	log := logrus.New()
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return errors.Wrap(err, "invalid --log-level")
	}
	log.SetLevel(level)

	cat, err := config.Load(configPath)
	if err != nil {
		return errors.Wrap(err, "loading config")
	}
	log.WithField("transforms", cat.Len()).Info("catalog loaded")

	rt := router.New(router.Config{
		Catalog: cat,
		BinPath: binPath,
		Logger:  log,
	})

	installLogHooks(rt, log)

	if err := ensureFIFO(fifoPath); err != nil {
		return errors.Wrap(err, "preparing rendezvous FIFO")
	}

	go rt.Run()

	if diagPort != 0 {
		diag := &diagserver.Server{Port: diagPort, Router: rt, Log: log}
		go diag.Run()
	}

	return serveFIFO(rt, log)
}

// installLogHooks wires the router's lifecycle events to structured
// log lines, giving an operator visibility into admission and
// scheduling decisions without needing the diagnostics server.
func installLogHooks(rt *router.Router, log *logrus.Logger) {
	rt.OnAdmitted(func(r *job.Request) {
		log.WithFields(logrus.Fields{"seq": r.Seq, "priority": r.Priority}).Info("request admitted")
	})
	rt.OnRejected(func(r *job.Request, reason string) {
		log.WithField("reason", reason).Warn("request rejected")
	})
	rt.OnStarted(func(r *job.Request) {
		log.WithField("seq", r.Seq).Info("request started")
	})
	rt.OnCompleted(func(r *job.Request, res manager.Result) {
		in, out := res.Bytes()
		log.WithFields(logrus.Fields{
			"seq":       r.Seq,
			"bytes_in":  units.BytesSize(float64(in)),
			"bytes_out": units.BytesSize(float64(out)),
		}).Info("request completed")
	})
	rt.OnFailed(func(r *job.Request, res manager.Result) {
		log.WithFields(logrus.Fields{"seq": r.Seq}).WithError(res.Err()).Warn("request failed")
	})
}

func ensureFIFO(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return syscall.Mkfifo(path, 0666)
}

func serveFIFO(rt *router.Router, log *logrus.Logger) error {
	rl := relay.New(rt.Updates(), log)

	for {
		f, err := os.OpenFile(fifoPath, os.O_RDONLY, 0)
		if err != nil {
			return errors.Wrap(err, "opening rendezvous FIFO for reading")
		}

		if err := rl.Run(f); err != nil {
			log.WithError(err).Warn("relay connection ended with an error")
		}
		f.Close()
	}
}
