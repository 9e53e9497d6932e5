package hotkeys

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBinding reports a hotkey or hotstring rejected at registration.
	ErrInvalidBinding = errors.New("invalid binding")
	// ErrNotRegistered reports removal of a binding that does not exist.
	ErrNotRegistered = errors.New("binding not registered")
)

// CallbackError wraps a failure inside a user callback. Panic holds the
// recovered value when the callback panicked instead of returning an error.
type CallbackError struct {
	ID    string
	Err   error
	Panic any
}

func (e *CallbackError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("callback %s panicked: %v", e.ID, e.Panic)
	}
	return fmt.Sprintf("callback %s failed: %v", e.ID, e.Err)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidBinding}, args...)...)
}
