package engine

import (
	"errors"

	"github.com/lydakis/ahkx/internal/daemon"
	"github.com/lydakis/ahkx/internal/message"
)

var (
	// ErrWindowNotFound reports a window verb whose target did not exist.
	ErrWindowNotFound = errors.New("window not found")
	// ErrClosed reports use of an engine after Close.
	ErrClosed = errors.New("engine is closed")
)

// IsExecutionError reports whether err carries interpreter error text.
func IsExecutionError(err error) bool {
	var execErr *message.ExecutionError
	return errors.As(err, &execErr)
}

// IsTimeout reports whether err is an interpreter-side wait that timed out.
func IsTimeout(err error) bool {
	var timeoutErr *message.TimeoutError
	return errors.As(err, &timeoutErr)
}

// IsFatal reports whether err left the engine unusable. The engine must be
// closed and recreated (or restarted with Restart).
func IsFatal(err error) bool {
	return errors.Is(err, daemon.ErrTransportDead) || errors.Is(err, message.ErrFraming)
}
