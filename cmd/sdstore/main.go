// Command sdstore is the SDStore client: it submits a request to a
// running daemon's rendezvous FIFO and prints each reply line as it
// arrives, mirroring the original CLI's argument grammar
// (client/src/processArgs.c): an optional "-p priority" flag before
// the positional arguments.
package main

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/SLP25/SDStore/internal/wire"
)

var (
	fifoPath string
	priority int
)

func main() {
	root := &cobra.Command{
		Use:   "sdstore",
		Short: "SDStore client",
	}
	root.PersistentFlags().StringVar(&fifoPath, "fifo", "/tmp/sdstore.fifo", "rendezvous FIFO the daemon listens on")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Request a snapshot of the daemon's current state",
		RunE:  runStatus,
	}

	procFileCmd := &cobra.Command{
		Use:   "proc-file <input> <output> <op>...",
		Short: "Submit a file for a chain of transformations",
		Args:  cobra.MinimumNArgs(3),
		RunE:  runProcFile,
	}
	procFileCmd.Flags().IntVarP(&priority, "priority", "p", 0, "priority, 0-5, higher is more urgent")

	root.AddCommand(statusCmd, procFileCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sdstore:", err)
		os.Exit(1)
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	return submit(&wire.Request{Kind: wire.KindStatus})
}

func runProcFile(cmd *cobra.Command, args []string) error {
	if priority < 0 || priority > 5 {
		return fmt.Errorf("priority must be between 0 and 5, got %d", priority)
	}

	return submit(&wire.Request{
		Kind:     wire.KindProcessFile,
		Priority: int32(priority),
		Input:    args[0],
		Output:   args[1],
		Ops:      args[2:],
	})
}

// submit opens the client's own reply FIFO, writes the request to the
// daemon's rendezvous point, then streams reply lines to stdout until
// the daemon closes its end - the terminal "Concluded" message.
func submit(req *wire.Request) error {
	replyPath := clientReplyPath()
	if err := syscall.Mkfifo(replyPath, 0600); err != nil {
		return errors.Wrap(err, "creating client reply FIFO")
	}
	defer os.Remove(replyPath)

	req.ReplyPath = replyPath

	errs := make(chan error, 1)
	go func() { errs <- sendRequest(req) }()

	reply, err := os.OpenFile(replyPath, os.O_RDONLY, 0)
	if err != nil {
		return errors.Wrap(err, "opening reply FIFO")
	}
	defer reply.Close()

	if err := streamReplies(reply); err != nil {
		return err
	}
	return <-errs
}

func clientReplyPath() string {
	return fmt.Sprintf("/tmp/sdstore-client-%d.fifo", os.Getpid())
}

func sendRequest(req *wire.Request) error {
	f, err := os.OpenFile(fifoPath, os.O_WRONLY, 0)
	if err != nil {
		return errors.Wrap(err, "opening rendezvous FIFO")
	}
	defer f.Close()

	w := wire.NewWriter(f)
	if err := w.WriteRequest(req); err != nil {
		return errors.Wrap(err, "writing request")
	}
	return w.Flush()
}

func streamReplies(r io.Reader) error {
	reader := wire.NewReader(r)
	for {
		line, err := reader.ReadString()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.Wrap(err, "reading reply")
		}
		fmt.Println(line)
	}
}
