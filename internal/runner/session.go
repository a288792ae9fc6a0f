package runner

import (
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
)

// Session is the state of one live (or just-finished) execution owned
// by a single client connection. The pump goroutine and request
// handlers touch it concurrently; mutable fields are guarded by mu,
// and closing gates teardown so it happens exactly once.
type Session struct {
	ID       string
	Language string

	mu        sync.Mutex
	cmd       *exec.Cmd
	pty       *os.File
	workspace string // source + artifacts; "" once cleaned up
	storeDir  string // query-engine store for SQL sessions; "" otherwise
	sent      map[string]struct{}
	emitter   Emitter

	closing  atomic.Bool
	done     chan struct{} // closed once the child has been reaped
	pumpDone chan struct{} // closed once the pump goroutine has finished
}

func newSession(id, language string, emit Emitter) *Session {
	return &Session{
		ID:       id,
		Language: language,
		sent:     make(map[string]struct{}),
		emitter:  emit,
		done:     make(chan struct{}),
		pumpDone: make(chan struct{}),
	}
}

// alive reports whether the child process is still running.
func (s *Session) alive() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

func (s *Session) emit(event string, payload any) {
	s.emitter.Emit(event, payload)
}

// ptyFile returns the pty master, or nil after cleanup.
func (s *Session) ptyFile() *os.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pty
}

func (s *Session) wasSent(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sent[path]
	return ok
}

func (s *Session) markSent(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent != nil {
		s.sent[path] = struct{}{}
	}
}

// Table is the concurrency-safe map from session id to live Session.
// It is the single source of truth for "is there a live session for
// this client".
type Table struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewTable creates an empty session table.
func NewTable() *Table {
	return &Table{sessions: make(map[string]*Session)}
}

// Get returns the live session for id, if any.
func (t *Table) Get(id string) (*Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[id]
	return s, ok
}

// Put registers s under its id, replacing any previous entry.
func (t *Table) Put(s *Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[s.ID] = s
}

// Remove deletes the entry for s.ID only if it still maps to this
// exact instance. A racing start request may already have replaced a
// stale session under the same id; its entry must survive.
func (t *Table) Remove(s *Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sessions[s.ID] == s {
		delete(t.sessions, s.ID)
	}
}

// All returns a snapshot of every live session.
func (t *Table) All() []*Session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Session, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, s)
	}
	return out
}

// Len returns the number of live sessions.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}
