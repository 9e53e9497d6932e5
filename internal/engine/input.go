package engine

import (
	"context"
	"time"

	"github.com/lydakis/ahkx/internal/message"
)

// Coordinate modes for MousePosition, WinFromMouse and the screen verbs.
const (
	CoordScreen = "Screen"
	CoordWindow = "Window"
	CoordClient = "Client"
)

// ---- mouse ----

// MousePosition returns the cursor position in the current coordinate mode.
func (e *Engine) MousePosition(ctx context.Context) (message.Point, error) {
	return call[message.Point](ctx, e, "MouseGetPos")
}

// MousePositionIn returns the cursor position relative to coordMode.
func (e *Engine) MousePositionIn(ctx context.Context, coordMode string) (message.Point, error) {
	return call[message.Point](ctx, e, "MouseGetPos", coordMode)
}

// MoveOptions tunes mouse movement.
type MoveOptions struct {
	// Speed is 0 (instant) through 100 (slowest). Negative uses the
	// interpreter default.
	Speed    int
	Relative bool
}

func (o MoveOptions) args() []string {
	speed := ""
	if o.Speed >= 0 {
		speed = itoa(o.Speed)
	}
	relative := ""
	if o.Relative {
		relative = "R"
	}
	return []string{speed, relative}
}

// MouseMove moves the cursor to (x, y).
func (e *Engine) MouseMove(ctx context.Context, x, y int, opts MoveOptions) error {
	return e.exec(ctx, "MouseMove", append([]string{itoa(x), itoa(y)}, opts.args()...)...)
}

// Click performs a click described in the interpreter's Click syntax, e.g.
// "100 200", "right", "2" or "" for a left click at the cursor.
func (e *Engine) Click(ctx context.Context, spec string) error {
	return e.exec(ctx, "Click", spec)
}

// MouseClickDrag drags with button held from one point to another.
func (e *Engine) MouseClickDrag(ctx context.Context, button string, from, to message.Point, opts MoveOptions) error {
	args := []string{button, itoa(from.X), itoa(from.Y), itoa(to.X), itoa(to.Y)}
	return e.exec(ctx, "MouseClickDrag", append(args, opts.args()...)...)
}

// Wheel directions.
const (
	WheelUp    = "Up"
	WheelDown  = "Down"
	WheelLeft  = "Left"
	WheelRight = "Right"
)

// MouseWheel turns the wheel count notches in direction.
func (e *Engine) MouseWheel(ctx context.Context, direction string, count int) error {
	if count <= 0 {
		count = 1
	}
	return e.exec(ctx, "MouseWheel", direction, itoa(count))
}

// ---- keyboard ----

// SendOptions sets the key delay for one send. Zero durations keep the
// interpreter defaults and negative ones mean no delay.
type SendOptions struct {
	Delay         time.Duration
	PressDuration time.Duration
}

func (o SendOptions) args(keys string) []string {
	return []string{millis(o.Delay), millis(o.PressDuration), keys}
}

// Send sends keys in the interpreter's key syntax ("^c", "{Enter}").
func (e *Engine) Send(ctx context.Context, keys string, opts SendOptions) error {
	return e.exec(ctx, "Send", opts.args(keys)...)
}

// SendRaw sends keys literally.
func (e *Engine) SendRaw(ctx context.Context, keys string, opts SendOptions) error {
	return e.exec(ctx, "SendRaw", opts.args(keys)...)
}

// SendInput sends keys with the SendInput method, which ignores key delays.
func (e *Engine) SendInput(ctx context.Context, keys string) error {
	return e.exec(ctx, "SendInput", keys)
}

// SendEvent sends keys with the SendEvent method.
func (e *Engine) SendEvent(ctx context.Context, keys string, opts SendOptions) error {
	return e.exec(ctx, "SendEvent", opts.args(keys)...)
}

// SendPlay sends keys with the SendPlay method.
func (e *Engine) SendPlay(ctx context.Context, keys string, opts SendOptions) error {
	return e.exec(ctx, "SendPlay", opts.args(keys)...)
}

// KeyState reports whether key is down. mode is "", "P" (physical) or "T"
// (toggle state).
func (e *Engine) KeyState(ctx context.Context, key, mode string) (bool, error) {
	return call[bool](ctx, e, "GetKeyState", key, mode)
}

// KeyWait waits for key to be released, or pressed with the "D" option.
// A "T" option that expires returns a timeout error (see IsTimeout).
func (e *Engine) KeyWait(ctx context.Context, key, options string) error {
	return e.exec(ctx, "KeyWait", key, options)
}

// SetCapsLockState sets Caps Lock to "On", "Off", "AlwaysOn" or
// "AlwaysOff".
func (e *Engine) SetCapsLockState(ctx context.Context, state string) error {
	return e.exec(ctx, "SetCapsLockState", state)
}
