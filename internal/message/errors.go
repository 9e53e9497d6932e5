package message

import "errors"

// ErrFraming reports a response frame that cannot be decoded: an unknown
// type-order mark, a malformed line count, or a payload that violates its
// variant's contract.
var ErrFraming = errors.New("protocol framing error")

// ExecutionError is the unpacked form of an Exception response. Message is the
// interpreter's error text, unmodified.
type ExecutionError struct {
	Message string
}

func (e *ExecutionError) Error() string {
	return "interpreter execution failed: " + e.Message
}

// TimeoutError is the unpacked form of a Timeout response.
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string {
	if e.Message == "" {
		return "interpreter operation timed out"
	}
	return "interpreter operation timed out: " + e.Message
}
