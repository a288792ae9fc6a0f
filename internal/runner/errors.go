package runner

import (
	"errors"
	"fmt"
)

// ErrEmptyCode rejects start requests whose source is blank after
// trimming. Its text is what the client sees.
var ErrEmptyCode = errors.New("No code provided")

// UnsupportedLanguageError rejects start requests for a language key
// that is not registered.
type UnsupportedLanguageError struct {
	Language string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("Unsupported language '%s'", e.Language)
}

// SpawnError wraps a failure to set up the workspace or start the
// child process. The session is never registered when it occurs.
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string { return e.Err.Error() }

func (e *SpawnError) Unwrap() error { return e.Err }
