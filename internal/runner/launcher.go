package runner

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/creack/pty"
)

// Start validates the request, materializes a workspace for the code,
// spawns the compile+run command attached to a pseudo-terminal, and
// registers the session. Any stale session for the same id is torn
// down first. Validation and spawn failures are reported to emit as a
// session_error and leave no session registered; on success a
// session_started event is emitted and the returned error is nil.
func (e *Engine) Start(id, language, code string, emit Emitter) error {
	code = strings.TrimSpace(code)
	language = strings.ToLower(strings.TrimSpace(language))

	if code == "" {
		emit.Emit(EventSessionError, ErrorPayload{Error: ErrEmptyCode.Error()})
		return ErrEmptyCode
	}
	spec, ok := e.langs.Lookup(language)
	if !ok {
		err := &UnsupportedLanguageError{Language: language}
		emit.Emit(EventSessionError, ErrorPayload{Error: err.Error()})
		return err
	}

	// A fresh start for this client evicts whatever was running before.
	if old, ok := e.table.Get(id); ok {
		e.cleanup(old)
	}

	s := newSession(id, language, emit)

	var dir string
	var err error
	if spec.Query {
		dir, err = os.MkdirTemp("", "sql_session_")
	} else {
		dir, err = os.MkdirTemp("", "user_session_")
	}
	if err != nil {
		spawnErr := &SpawnError{Err: fmt.Errorf("creating workspace: %w", err)}
		emit.Emit(EventSessionError, ErrorPayload{Error: spawnErr.Error()})
		return spawnErr
	}
	if spec.Query {
		s.storeDir = dir
		if e.opts.PrepopulatePath != "" {
			if err := prepopulate(dir, e.opts.PrepopulatePath); err != nil {
				log.Printf("session %s: prepopulating store: %v", id, err)
			}
		}
	} else {
		s.workspace = dir
	}

	filename, command := spec.Materialize(code)
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(code), 0o644); err != nil {
		os.RemoveAll(dir)
		spawnErr := &SpawnError{Err: fmt.Errorf("writing source file: %w", err)}
		emit.Emit(EventSessionError, ErrorPayload{Error: spawnErr.Error()})
		return spawnErr
	}

	// TERM=dumb keeps interactive runtimes from emitting control
	// sequences; the pty still gives the program a real terminal.
	cmd := exec.Command("/bin/bash", "-c", command)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "TERM=dumb")

	ptmx, err := pty.Start(cmd)
	if err != nil {
		os.RemoveAll(dir)
		spawnErr := &SpawnError{Err: err}
		emit.Emit(EventSessionError, ErrorPayload{Error: spawnErr.Error()})
		return spawnErr
	}

	s.mu.Lock()
	s.cmd = cmd
	s.pty = ptmx
	s.mu.Unlock()

	go func() {
		cmd.Wait()
		close(s.done)
	}()

	e.table.Put(s)
	emit.Emit(EventSessionStarted, EmptyPayload{})

	go e.pump(s)
	return nil
}
