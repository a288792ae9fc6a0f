package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureStderr redirects os.Stderr into a pipe and returns a function
// that restores it and yields everything written.
func captureStderr(t *testing.T) func() string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	old := os.Stderr
	os.Stderr = w
	t.Cleanup(func() { os.Stderr = old })
	return func() string {
		w.Close()
		os.Stderr = old
		data, _ := io.ReadAll(r)
		return string(data)
	}
}

// chdir changes the working directory for the duration of the test.
// Equivalent to t.Chdir, which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

// Validation failures reach the user through the console emitter, so
// the command must silence cobra's own reporting; otherwise the same
// error prints twice.
func TestRunReportsValidationErrorOnce(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	src := filepath.Join(t.TempDir(), "empty.py")
	require.NoError(t, os.WriteFile(src, []byte("   \n"), 0o644))

	read := captureStderr(t)

	langFlag = ""
	cmd := &cobra.Command{}
	err := runRun(cmd, []string{src})

	out := read()
	require.Error(t, err)
	assert.True(t, cmd.SilenceErrors)
	assert.True(t, cmd.SilenceUsage)
	assert.Equal(t, 1, strings.Count(out, "No code provided"))
}
