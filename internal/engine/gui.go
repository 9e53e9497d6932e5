package engine

import (
	"context"
	"time"

	"github.com/lydakis/ahkx/internal/message"
)

// MsgBoxOptions describes a message box.
type MsgBoxOptions struct {
	Text  string
	Title string
	// Flags is the interpreter's MsgBox options number (buttons, icon).
	Flags   int
	Timeout time.Duration
}

// MsgBox shows a message box and returns the pressed button ("OK", "Yes",
// "Cancel"...). An expired timeout returns a timeout error.
func (e *Engine) MsgBox(ctx context.Context, opts MsgBoxOptions) (string, error) {
	return call[string](ctx, e, "MsgBox", itoa(opts.Flags), opts.Title, seconds(opts.Timeout), opts.Text)
}

// InputBoxOptions describes an input box. Zero sizes and a nil position
// keep the interpreter defaults.
type InputBoxOptions struct {
	Title    string
	Prompt   string
	Hide     bool
	Width    int
	Height   int
	Position *message.Point
	Timeout  time.Duration
	Default  string
}

// InputBox asks the user for text. ok is false when the user cancelled.
func (e *Engine) InputBox(ctx context.Context, opts InputBoxOptions) (text string, ok bool, err error) {
	hide := ""
	if opts.Hide {
		hide = "HIDE"
	}
	w, h, x, y := "", "", "", ""
	if opts.Width > 0 {
		w = itoa(opts.Width)
	}
	if opts.Height > 0 {
		h = itoa(opts.Height)
	}
	if opts.Position != nil {
		x, y = itoa(opts.Position.X), itoa(opts.Position.Y)
	}
	return callOptional[string](ctx, e, "InputBox", opts.Title, opts.Prompt, hide, w, h, x, y, seconds(opts.Timeout), opts.Default)
}

// ToolTip shows text in tooltip which (1-20) at pos, or near the cursor
// when pos is nil. Empty text hides the tooltip.
func (e *Engine) ToolTip(ctx context.Context, text string, pos *message.Point, which int) error {
	x, y := "", ""
	if pos != nil {
		x, y = itoa(pos.X), itoa(pos.Y)
	}
	w := ""
	if which > 1 {
		w = itoa(which)
	}
	return e.exec(ctx, "ToolTip", x, y, w, text)
}

// TrayTip shows a notification balloon.
func (e *Engine) TrayTip(ctx context.Context, title, text string, duration time.Duration, flags int) error {
	f := ""
	if flags != 0 {
		f = itoa(flags)
	}
	return e.exec(ctx, "TrayTip", title, seconds(duration), f, text)
}
