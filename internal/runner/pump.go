package runner

import (
	"errors"
	"io"
	"os"
	"syscall"
	"time"
	"unicode/utf8"
)

// pump is the per-session output loop. It forwards process output to
// the owning connection in production order until the process ends or
// teardown is triggered elsewhere, then drains trailing output, scans
// for artifacts, emits the terminal event and cleans up. Whatever path
// it exits through, it always finishes with cleanup.
func (e *Engine) pump(s *Session) {
	defer close(s.pumpDone)

	buf := make([]byte, 4096)
	var carry []byte

	for !s.closing.Load() && s.alive() {
		n, err := s.read(buf, e.opts.PollInterval)
		if n > 0 {
			carry = s.forward(carry, buf[:n])
		}
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				// No data within the poll window; the loop
				// condition is the liveness check.
				continue
			}
			if !isStreamClosed(err) {
				s.emit(EventSessionError, ErrorPayload{Error: err.Error()})
			}
			break
		}
	}

	if !s.closing.Load() {
		carry = e.drain(s, buf, carry)
		// The stream is over; whatever is still held back cannot
		// become a complete rune anymore.
		if len(carry) > 0 {
			s.emit(EventOutput, OutputPayload{Data: string(carry)})
		}
	}

	if !s.closing.Load() {
		e.ScanArtifacts(s)
		s.emit(EventProcessEnded, EmptyPayload{})
	}

	e.cleanup(s)
}

// drain flushes output produced between the last poll and process
// exit. It stops at the first read that yields an error, including a
// deadline with no data, and returns the still-incomplete tail.
func (e *Engine) drain(s *Session, buf, carry []byte) []byte {
	for {
		n, err := s.read(buf, e.opts.PollInterval)
		if n > 0 {
			carry = s.forward(carry, buf[:n])
		}
		if err != nil {
			return carry
		}
	}
}

// forward emits carry+chunk minus any trailing incomplete UTF-8
// sequence, which is returned to be prepended to the next read. A pty
// read can end mid-rune, and chunks are encoded independently on the
// wire, so a split rune would reach the client as replacement runes.
func (s *Session) forward(carry, chunk []byte) []byte {
	data := chunk
	if len(carry) > 0 {
		data = append(carry, chunk...)
	}
	complete, tail := splitTail(data)
	if len(complete) > 0 {
		s.emit(EventOutput, OutputPayload{Data: string(complete)})
	}
	// The tail must not alias the read buffer.
	return append([]byte(nil), tail...)
}

// splitTail cuts b before a trailing incomplete multi-byte rune. Bytes
// that are outright invalid UTF-8 are left in the complete part; only
// a prefix that further bytes could still complete is held back.
func splitTail(b []byte) (complete, tail []byte) {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		c := b[len(b)-i]
		if !utf8.RuneStart(c) {
			continue
		}
		if runeLen(c) > i {
			return b[:len(b)-i], b[len(b)-i:]
		}
		break
	}
	return b, nil
}

// runeLen returns the encoded length the leading byte c announces.
func runeLen(c byte) int {
	switch {
	case c&0xE0 == 0xC0:
		return 2
	case c&0xF0 == 0xE0:
		return 3
	case c&0xF8 == 0xF0:
		return 4
	}
	return 1
}

// read performs one bounded read of the pty master.
func (s *Session) read(buf []byte, timeout time.Duration) (int, error) {
	f := s.ptyFile()
	if f == nil {
		return 0, io.EOF
	}
	f.SetReadDeadline(time.Now().Add(timeout))
	return f.Read(buf)
}

// isStreamClosed reports whether err is the normal way a pty read ends
// once the child is gone. Linux returns EIO from the master when the
// slave side has no more writers.
func isStreamClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.EIO) ||
		errors.Is(err, os.ErrClosed)
}
