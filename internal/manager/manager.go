// Package manager runs a single admitted request's transformation
// chain as a pipeline of child processes, the Go analogue of the
// original server's runJobHandler (server/src/jobManager.c): child k
// reads from child k-1's output (or the request's input file for
// k=0) and writes to child k+1's input (or the request's output file
// for the last child). Children are started in submission order and
// awaited in submission order, exactly as spec.md §4.7 requires.
package manager

import (
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/SLP25/SDStore/internal/job"
)

// Run executes req's transformation chain against the binaries found
// under binPath. onFinishedOp, if non-nil, is called synchronously
// once per operation that exits successfully, with that operation's
// catalog id - the Go equivalent of the manager emitting a
// FINISHED_OP update per completed child.
//
// On any child's failure, already-completed operations have still
// been reported through onFinishedOp (so the caller's availability
// accounting is never short of what actually ran), and the returned
// Result carries the failure instead of leaving the caller to infer
// it from silence - see spec.md §9's open question on leaked slots,
// resolved in SPEC_FULL.md §4.7.
func Run(req *job.Request, binPath string, onFinishedOp func(id int)) Result {
	in, err := os.Open(req.Input)
	if err != nil {
		return Result{Seq: req.Seq, err: errors.Wrapf(err, "open input %q", req.Input)}
	}
	defer in.Close()

	n := len(req.Ops)
	opIDs := req.OpIDSeq()

	cmds := make([]*exec.Cmd, 0, n)
	pipeWriters := make([]*io.PipeWriter, n)

	var outFile *os.File
	var curReader io.Reader = in

	for i, name := range req.Ops {
		cmd := exec.Command(filepath.Join(binPath, name))
		cmd.Stdin = curReader
		cmd.Stderr = os.Stderr

		if i == n-1 {
			outFile, err = os.OpenFile(req.Output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0660)
			if err != nil {
				killAll(cmds)
				return Result{Seq: req.Seq, err: errors.Wrapf(err, "open output %q", req.Output)}
			}
			cmd.Stdout = outFile
		} else {
			pr, pw := io.Pipe()
			cmd.Stdout = pw
			pipeWriters[i] = pw
			curReader = pr
		}

		if err := cmd.Start(); err != nil {
			if outFile != nil {
				outFile.Close()
			}
			killAll(cmds)
			return Result{Seq: req.Seq, err: errors.Wrapf(err, "start %q", name)}
		}
		cmds = append(cmds, cmd)
	}

	var completed []int
	for i, cmd := range cmds {
		waitErr := cmd.Wait()
		if pipeWriters[i] != nil {
			pipeWriters[i].Close()
		}
		if waitErr != nil {
			if outFile != nil {
				outFile.Close()
			}
			return Result{
				Seq:     req.Seq,
				ops:     completed,
				err:     errors.Wrapf(waitErr, "%q exited abnormally", req.Ops[i]),
			}
		}

		completed = append(completed, opIDs[i])
		if onFinishedOp != nil {
			onFinishedOp(opIDs[i])
		}
	}

	if outFile != nil {
		outFile.Close()
	}

	bytesIn, _ := fileSize(req.Input)
	bytesOut, _ := fileSize(req.Output)

	return Result{
		Seq:      req.Seq,
		success:  true,
		ops:      completed,
		bytesIn:  bytesIn,
		bytesOut: bytesOut,
	}
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// killAll terminates every child already started when a later stage
// fails to open or start, so a mid-chain failure never leaves
// orphaned processes blocked writing into a pipe nobody will drain.
func killAll(cmds []*exec.Cmd) {
	for _, cmd := range cmds {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
		}
	}
}
