package runner

import (
	"time"

	"github.com/marildoC/runroom/internal/lang"
)

// Options tunes the engine. Zero values fall back to defaults.
type Options struct {
	// PollInterval bounds each pty read; it is both the output
	// forwarding granularity and the liveness-check period.
	PollInterval time.Duration

	// MaxImageDim is the longest side an artifact image may keep
	// before it is downscaled.
	MaxImageDim int

	// PrepopulatePath is the SQL script seeding each SQL session's
	// store. A missing file means the store starts empty.
	PrepopulatePath string
}

const (
	defaultPollInterval = 100 * time.Millisecond
	defaultMaxImageDim  = 800
)

// Engine runs ephemeral interactive code-execution sessions: one child
// process per client connection, attached to a pseudo-terminal, with
// output pumped back incrementally and exactly-once teardown no matter
// which of the concurrent trigger paths fires first.
type Engine struct {
	langs *lang.Registry
	table *Table
	opts  Options
}

// New creates an engine over the given language registry.
func New(langs *lang.Registry, opts Options) *Engine {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.MaxImageDim <= 0 {
		opts.MaxImageDim = defaultMaxImageDim
	}
	return &Engine{
		langs: langs,
		table: NewTable(),
		opts:  opts,
	}
}

// Table exposes the session table for lifecycle observers.
func (e *Engine) Table() *Table {
	return e.table
}

// SendInput writes one line to the session's process. When there is
// nothing to write to, the caller's connection is told so and any
// half-dead session is cleaned up.
func (e *Engine) SendInput(id, line string, emit Emitter) {
	s, ok := e.table.Get(id)
	if !ok {
		emit.Emit(EventOutput, OutputPayload{Data: "[No active session]\n"})
		emit.Emit(EventProcessEnded, EmptyPayload{})
		return
	}

	if s.closing.Load() {
		emit.Emit(EventOutput, OutputPayload{Data: "[Session closed]\n"})
		emit.Emit(EventProcessEnded, EmptyPayload{})
		e.cleanup(s)
		return
	}

	ptmx := s.ptyFile()
	if ptmx == nil || !s.alive() {
		emit.Emit(EventOutput, OutputPayload{Data: "[No active session]\n"})
		emit.Emit(EventProcessEnded, EmptyPayload{})
		e.cleanup(s)
		return
	}

	if _, err := ptmx.Write([]byte(line + "\n")); err != nil {
		emit.Emit(EventSessionError, ErrorPayload{Error: err.Error()})
	}
}

// Kill force-terminates the session in response to an explicit user
// request. The pump's own end-of-stream path is suppressed via the
// closing flag, so the caller's process_ended below is the only one.
func (e *Engine) Kill(id string, emit Emitter) {
	if s, ok := e.table.Get(id); ok {
		if !s.closing.Load() {
			emit.Emit(EventOutput, OutputPayload{Data: "[Session killed by user]\n"})
		}
		e.cleanup(s)
	}
	emit.Emit(EventProcessEnded, EmptyPayload{})
}

// Drop tears down the session without emitting anything. Used when the
// owning connection is already gone.
func (e *Engine) Drop(id string) {
	if s, ok := e.table.Get(id); ok {
		e.cleanup(s)
	}
}

// Shutdown tears down every live session.
func (e *Engine) Shutdown() {
	for _, s := range e.table.All() {
		e.cleanup(s)
	}
}
