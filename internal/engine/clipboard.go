package engine

import (
	"context"
	"encoding/base64"
	"time"
)

// GetClipboard returns the clipboard text.
func (e *Engine) GetClipboard(ctx context.Context) (string, error) {
	return call[string](ctx, e, "GetClipboard")
}

// SetClipboard replaces the clipboard with text.
func (e *Engine) SetClipboard(ctx context.Context, text string) error {
	return e.exec(ctx, "SetClipboard", text)
}

// GetClipboardAll returns the clipboard in every format as an opaque blob
// for SetClipboardAll.
func (e *Engine) GetClipboardAll(ctx context.Context) ([]byte, error) {
	return call[[]byte](ctx, e, "GetClipboardAll")
}

// SetClipboardAll restores a blob from GetClipboardAll.
func (e *Engine) SetClipboardAll(ctx context.Context, data []byte) error {
	return e.exec(ctx, "SetClipboardAll", base64.StdEncoding.EncodeToString(data))
}

// ClipWait waits until the clipboard holds text, or any data when anyType
// is set. A zero timeout waits indefinitely on the interpreter side.
func (e *Engine) ClipWait(ctx context.Context, timeout time.Duration, anyType bool) error {
	return e.exec(ctx, "ClipWait", seconds(timeout), boolArg(anyType))
}
