package manager

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SLP25/SDStore/internal/job"
)

// writeScript drops an executable shell script named name into dir,
// standing in for a transformation binary the way the original
// server's manager finds one under its configured binary directory.
func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
}

func TestRunChainsOperationsInOrder(t *testing.T) {
	binDir := t.TempDir()
	writeScript(t, binDir, "upper", "tr a-z A-Z")
	writeScript(t, binDir, "reverse", "rev")

	work := t.TempDir()
	input := filepath.Join(work, "in.txt")
	output := filepath.Join(work, "out.txt")
	require.NoError(t, os.WriteFile(input, []byte("hello\n"), 0644))

	req := &job.Request{Input: input, Output: output, Ops: []string{"upper", "reverse"}}
	req.SetOpIDs([]int{0, 1})

	var finished []int
	res := Run(req, binDir, func(id int) { finished = append(finished, id) })

	require.True(t, res.Succeeded())
	assert.Equal(t, []int{0, 1}, finished)
	assert.Equal(t, []int{0, 1}, res.CompletedOps())

	out, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "OLLEH\n", string(out))
}

func TestRunReportsFailureAndPartialCompletion(t *testing.T) {
	binDir := t.TempDir()
	writeScript(t, binDir, "ok", "cat")
	writeScript(t, binDir, "boom", "cat >/dev/null; exit 1")

	work := t.TempDir()
	input := filepath.Join(work, "in.txt")
	output := filepath.Join(work, "out.txt")
	require.NoError(t, os.WriteFile(input, []byte("data"), 0644))

	req := &job.Request{Input: input, Output: output, Ops: []string{"ok", "boom"}}
	req.SetOpIDs([]int{0, 1})

	var finished []int
	res := Run(req, binDir, func(id int) { finished = append(finished, id) })

	assert.False(t, res.Succeeded())
	assert.Equal(t, []int{0}, finished)
	assert.Equal(t, []int{0}, res.CompletedOps())
	assert.Error(t, res.Err())
}
