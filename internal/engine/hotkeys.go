package engine

import (
	"context"

	"github.com/lydakis/ahkx/internal/hotkeys"
)

// Hotkey and hotstring types, re-exported for callers of this package.
type (
	Hotkey            = hotkeys.Hotkey
	Hotstring         = hotkeys.Hotstring
	ExceptionHandler  = hotkeys.ExceptionHandler
	ClipboardCallback = hotkeys.ClipboardCallback
)

// AddHotkey registers h. If hotkeys are running the hotkey interpreter is
// restarted so the binding takes effect.
func (e *Engine) AddHotkey(h Hotkey) error { return e.hotkeys.AddHotkey(h) }

// AddHotstring registers hs.
func (e *Engine) AddHotstring(hs Hotstring) error { return e.hotkeys.AddHotstring(hs) }

// RemoveHotkey unregisters the hotkey for keyName.
func (e *Engine) RemoveHotkey(keyName string) error { return e.hotkeys.RemoveHotkey(keyName) }

// RemoveHotstring unregisters the hotstring for trigger.
func (e *Engine) RemoveHotstring(trigger string) error { return e.hotkeys.RemoveHotstring(trigger) }

// ClearHotkeys removes every hotkey.
func (e *Engine) ClearHotkeys() error { return e.hotkeys.ClearHotkeys() }

// ClearHotstrings removes every hotstring.
func (e *Engine) ClearHotstrings() error { return e.hotkeys.ClearHotstrings() }

// OnClipboardChange sets the clipboard change callback; nil removes it.
func (e *Engine) OnClipboardChange(cb ClipboardCallback, handler ExceptionHandler) error {
	return e.hotkeys.OnClipboardChange(cb, handler)
}

// StartHotkeys launches the hotkey interpreter.
func (e *Engine) StartHotkeys(ctx context.Context) error {
	if e.isClosed() {
		return ErrClosed
	}
	return e.hotkeys.Start(ctx)
}

// StopHotkeys stops the hotkey interpreter. No callback starts after it
// returns.
func (e *Engine) StopHotkeys() error { return e.hotkeys.Stop() }

// HotkeysRunning reports whether the hotkey interpreter is started.
func (e *Engine) HotkeysRunning() bool { return e.hotkeys.Running() }
