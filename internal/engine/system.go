package engine

import (
	"context"
	"time"
)

// ---- sound ----

// SoundBeep beeps at frequency Hz for duration. Zero values use the
// interpreter defaults (523 Hz, 150 ms).
func (e *Engine) SoundBeep(ctx context.Context, frequency int, duration time.Duration) error {
	f := ""
	if frequency > 0 {
		f = itoa(frequency)
	}
	return e.exec(ctx, "SoundBeep", f, millis(duration))
}

// SoundPlay plays a sound file. With wait the call returns once playback
// finishes.
func (e *Engine) SoundPlay(ctx context.Context, file string, wait bool) error {
	return e.exec(ctx, "SoundPlay", boolArg(wait), file)
}

// SoundGet reads a mixer setting. Empty arguments mean master volume on
// the first device.
func (e *Engine) SoundGet(ctx context.Context, component, control, device string) (string, error) {
	return call[string](ctx, e, "SoundGet", component, control, device)
}

// SoundSet changes a mixer setting. value may be relative ("+10").
func (e *Engine) SoundSet(ctx context.Context, value, component, control, device string) error {
	return e.exec(ctx, "SoundSet", value, component, control, device)
}

// ---- registry ----

// RegRead reads a registry value. An empty name reads the key's default
// value.
func (e *Engine) RegRead(ctx context.Context, key, name string) (string, error) {
	return call[string](ctx, e, "RegRead", key, name)
}

// RegWrite writes a registry value of type valueType (REG_SZ, REG_DWORD...).
func (e *Engine) RegWrite(ctx context.Context, valueType, key, name, value string) error {
	return e.exec(ctx, "RegWrite", valueType, key, name, value)
}

// RegDelete deletes a registry value, or the whole key when name is empty.
func (e *Engine) RegDelete(ctx context.Context, key, name string) error {
	return e.exec(ctx, "RegDelete", key, name)
}

// SetRegView selects the 32 or 64 bit registry view ("32", "64",
// "Default").
func (e *Engine) SetRegView(ctx context.Context, view string) error {
	return e.exec(ctx, "SetRegView", view)
}

// ---- modes ----

// CoordMode sets what target ("Mouse", "Pixel", "ToolTip", "Menu",
// "Caret") coordinates are relative to.
func (e *Engine) CoordMode(ctx context.Context, target, relativeTo string) error {
	return e.exec(ctx, "CoordMode", target, relativeTo)
}

// SendMode sets the default method used by Send ("Input", "Play",
// "Event", "InputThenPlay").
func (e *Engine) SendMode(ctx context.Context, mode string) error {
	return e.exec(ctx, "SendMode", mode)
}

// SendLevel sets the level of generated input (0-100).
func (e *Engine) SendLevel(ctx context.Context, level int) error {
	return e.exec(ctx, "SendLevel", itoa(level))
}

// SetTitleMatchMode sets the default title match mode of the daemon.
func (e *Engine) SetTitleMatchMode(ctx context.Context, mode string) error {
	return e.exec(ctx, "SetTitleMatchMode", mode)
}

// DetectHiddenWindows sets whether window verbs see hidden windows.
func (e *Engine) DetectHiddenWindows(ctx context.Context, on bool) error {
	return e.exec(ctx, "DetectHiddenWindows", onOff(on))
}
