package runner

import (
	"os"
	"syscall"
)

// cleanup releases everything a session owns: the child process, the
// pty, the workspace directories and the table entry. The flip of
// closing is the exclusivity gate; only the caller that wins it does
// real work, so the pump's natural-exit path, a user kill, a client
// disconnect and a stale-session eviction can all race here safely.
func (e *Engine) cleanup(s *Session) {
	if !s.closing.CompareAndSwap(false, true) {
		return
	}

	s.mu.Lock()
	cmd, ptmx := s.cmd, s.pty
	workspace, storeDir := s.workspace, s.storeDir
	s.cmd, s.pty = nil, nil
	s.workspace, s.storeDir = "", ""
	s.sent = nil
	s.mu.Unlock()

	if cmd != nil && cmd.Process != nil && s.alive() {
		// The pty spawn put the child in its own session, so a
		// negative pid kills the shell and everything under it.
		// No grace period: the user's program gets no shutdown
		// signal it could ignore.
		syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	if ptmx != nil {
		ptmx.Close()
	}

	// Deletion errors are tolerated; a leftover directory must not
	// block teardown.
	if workspace != "" {
		os.RemoveAll(workspace)
	}
	if storeDir != "" {
		os.RemoveAll(storeDir)
	}

	e.table.Remove(s)
}
