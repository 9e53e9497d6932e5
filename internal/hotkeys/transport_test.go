package hotkeys

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lydakis/ahkx/internal/message"
)

func newTestTransport(t *testing.T) *Transport {
	t.Helper()
	tr := New(Options{ScratchDir: t.TempDir(), SilenceTimeout: -1, StopTimeout: time.Second})
	t.Cleanup(func() { _ = tr.Stop() })
	return tr
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestHotkeyCallbackRunsOncePerTrigger(t *testing.T) {
	restore := saveTransportHooks()
	defer restore()
	fs := installFakes()

	tr := newTestTransport(t)
	var calls atomic.Int32
	if err := tr.AddHotkey(Hotkey{KeyName: "#n", Callback: func() error {
		calls.Add(1)
		return nil
	}}); err != nil {
		t.Fatalf("AddHotkey() error = %v", err)
	}
	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !strings.Contains(fs.lastScript(), "#n::") {
		t.Fatalf("script does not bind #n:\n%s", fs.lastScript())
	}

	fs.last().emit(HotkeyID("#n"))
	waitFor(t, "callback", func() bool { return calls.Load() == 1 })
	time.Sleep(50 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("callback ran %d times, want 1", got)
	}
}

func TestFailingCallbackGoesToHandlerAndDispatchContinues(t *testing.T) {
	restore := saveTransportHooks()
	defer restore()
	fs := installFakes()

	tr := newTestTransport(t)
	boom := errors.New("boom")
	type report struct {
		id  string
		err error
	}
	reports := make(chan report, 1)
	if err := tr.AddHotkey(Hotkey{
		KeyName:          "^j",
		Callback:         func() error { return boom },
		ExceptionHandler: func(id string, err error) { reports <- report{id, err} },
	}); err != nil {
		t.Fatalf("AddHotkey() error = %v", err)
	}
	var ok atomic.Int32
	if err := tr.AddHotkey(Hotkey{KeyName: "^k", Callback: func() error {
		ok.Add(1)
		return nil
	}}); err != nil {
		t.Fatalf("AddHotkey() error = %v", err)
	}
	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	fs.last().emit(HotkeyID("^j"))
	fs.last().emit(HotkeyID("^k"))

	select {
	case r := <-reports:
		if r.id != HotkeyID("^j") {
			t.Fatalf("handler id = %q, want %q", r.id, HotkeyID("^j"))
		}
		var cbErr *CallbackError
		if !errors.As(r.err, &cbErr) || !errors.Is(r.err, boom) {
			t.Fatalf("handler error = %v, want CallbackError wrapping boom", r.err)
		}
	case <-time.After(time.Second):
		t.Fatal("exception handler was not called")
	}
	waitFor(t, "second callback", func() bool { return ok.Load() == 1 })
}

func TestPanickingCallbackIsRecovered(t *testing.T) {
	restore := saveTransportHooks()
	defer restore()
	fs := installFakes()

	tr := newTestTransport(t)
	errs := make(chan error, 1)
	if err := tr.AddHotkey(Hotkey{
		KeyName:          "F9",
		Callback:         func() error { panic("kaboom") },
		ExceptionHandler: func(_ string, err error) { errs <- err },
	}); err != nil {
		t.Fatalf("AddHotkey() error = %v", err)
	}
	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	fs.last().emit(HotkeyID("F9"))

	select {
	case err := <-errs:
		var cbErr *CallbackError
		if !errors.As(err, &cbErr) || cbErr.Panic != "kaboom" {
			t.Fatalf("handler error = %v, want recovered panic", err)
		}
	case <-time.After(time.Second):
		t.Fatal("exception handler was not called")
	}
}

func TestClipboardChangeDeliversChangeType(t *testing.T) {
	restore := saveTransportHooks()
	defer restore()
	fs := installFakes()

	tr := newTestTransport(t)
	got := make(chan int, 1)
	if err := tr.OnClipboardChange(func(changeType int) error {
		got <- changeType
		return nil
	}, nil); err != nil {
		t.Fatalf("OnClipboardChange() error = %v", err)
	}
	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !strings.Contains(fs.lastScript(), `OnClipboardChange("AHKXClipboardChanged")`) {
		t.Fatal("script does not subscribe to clipboard changes")
	}

	fs.last().emit(message.ClipboardMarker + "2")
	select {
	case ct := <-got:
		if ct != 2 {
			t.Fatalf("change type = %d, want 2", ct)
		}
	case <-time.After(time.Second):
		t.Fatal("clipboard callback was not called")
	}
}

func TestKeepaliveIsNeverDispatched(t *testing.T) {
	restore := saveTransportHooks()
	defer restore()
	fs := installFakes()

	tr := newTestTransport(t)
	var calls atomic.Int32
	if err := tr.AddHotkey(Hotkey{KeyName: "a", Callback: func() error {
		calls.Add(1)
		return nil
	}}); err != nil {
		t.Fatalf("AddHotkey() error = %v", err)
	}
	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	p := fs.last()
	for i := 0; i < 5; i++ {
		p.emit(message.Sentinel)
	}
	p.emit(HotkeyID("a"))
	waitFor(t, "callback", func() bool { return calls.Load() == 1 })
	time.Sleep(30 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("callback ran %d times, want 1", got)
	}
}

func TestReplacingBindingRestartsInterpreter(t *testing.T) {
	restore := saveTransportHooks()
	defer restore()
	fs := installFakes()

	tr := newTestTransport(t)
	var first, second atomic.Int32
	if err := tr.AddHotkey(Hotkey{KeyName: "#n", Callback: func() error { first.Add(1); return nil }}); err != nil {
		t.Fatalf("AddHotkey() error = %v", err)
	}
	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	old := fs.last()

	if err := tr.AddHotkey(Hotkey{KeyName: "#n", Callback: func() error { second.Add(1); return nil }}); err != nil {
		t.Fatalf("AddHotkey(replace) error = %v", err)
	}
	if fs.count() != 2 {
		t.Fatalf("starts = %d, want 2", fs.count())
	}
	if !old.isKilled() {
		t.Fatal("previous interpreter was not killed")
	}
	if _, err := os.Stat(old.script); !os.IsNotExist(err) {
		t.Fatalf("previous script still present: %v", err)
	}
	if ids := tr.IDs(); len(ids) != 1 || ids[0] != HotkeyID("#n") {
		t.Fatalf("IDs() = %q, want one binding", ids)
	}
	if n := strings.Count(fs.lastScript(), "#n::"); n != 1 {
		t.Fatalf("script binds #n %d times, want 1", n)
	}

	fs.last().emit(HotkeyID("#n"))
	waitFor(t, "replacement callback", func() bool { return second.Load() == 1 })
	if first.Load() != 0 {
		t.Fatal("replaced callback ran")
	}
}

func TestNoCallbacksAfterStop(t *testing.T) {
	restore := saveTransportHooks()
	defer restore()
	fs := installFakes()

	tr := newTestTransport(t)
	release := make(chan struct{})
	var calls atomic.Int32
	if err := tr.AddHotkey(Hotkey{KeyName: "x", Callback: func() error {
		calls.Add(1)
		<-release
		return nil
	}}); err != nil {
		t.Fatalf("AddHotkey() error = %v", err)
	}
	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	p := fs.last()
	p.emit(HotkeyID("x"))
	waitFor(t, "first callback", func() bool { return calls.Load() == 1 })

	for i := 0; i < 10; i++ {
		p.emit(HotkeyID("x"))
	}
	if err := tr.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	// let callbacks dispatched before Stop land
	time.Sleep(30 * time.Millisecond)
	settled := calls.Load()
	close(release)
	time.Sleep(50 * time.Millisecond)
	if got := calls.Load(); got != settled {
		t.Fatalf("callbacks after Stop: before %d, after %d", settled, got)
	}
	if tr.Running() {
		t.Fatal("Running() = true after Stop")
	}
}

func TestRemoveAndClear(t *testing.T) {
	tr := New(Options{})
	cb := func() error { return nil }
	if err := tr.AddHotkey(Hotkey{KeyName: "a", Callback: cb}); err != nil {
		t.Fatal(err)
	}
	if err := tr.AddHotstring(Hotstring{Trigger: "btw", Replacement: "by the way"}); err != nil {
		t.Fatal(err)
	}
	if err := tr.RemoveHotkey("b"); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("RemoveHotkey(unknown) error = %v, want ErrNotRegistered", err)
	}
	if err := tr.ClearHotkeys(); err != nil {
		t.Fatal(err)
	}
	if ids := tr.IDs(); len(ids) != 1 || ids[0] != HotstringID("btw") {
		t.Fatalf("IDs() = %q, want only the hotstring", ids)
	}
	if err := tr.RemoveHotstring("btw"); err != nil {
		t.Fatalf("RemoveHotstring() error = %v", err)
	}
	if len(tr.IDs()) != 0 {
		t.Fatal("bindings left after removal")
	}
}

func TestInvalidBindingsAreRejected(t *testing.T) {
	cb := func() error { return nil }
	tests := []struct {
		name string
		add  func(*Transport) error
	}{
		{"empty key", func(tr *Transport) error { return tr.AddHotkey(Hotkey{Callback: cb}) }},
		{"no callback", func(tr *Transport) error { return tr.AddHotkey(Hotkey{KeyName: "a"}) }},
		{"newline key", func(tr *Transport) error { return tr.AddHotkey(Hotkey{KeyName: "a\nb", Callback: cb}) }},
		{"empty trigger", func(tr *Transport) error { return tr.AddHotstring(Hotstring{Replacement: "x"}) }},
		{"both", func(tr *Transport) error {
			return tr.AddHotstring(Hotstring{Trigger: "t", Replacement: "x", Callback: cb})
		}},
		{"neither", func(tr *Transport) error { return tr.AddHotstring(Hotstring{Trigger: "t"}) }},
		{"bad options", func(tr *Transport) error {
			return tr.AddHotstring(Hotstring{Trigger: "t", Replacement: "x", Options: "Q"})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(Options{})
			if err := tt.add(tr); !errors.Is(err, ErrInvalidBinding) {
				t.Fatalf("error = %v, want ErrInvalidBinding", err)
			}
			if len(tr.IDs()) != 0 {
				t.Fatal("invalid binding was registered")
			}
		})
	}
}

func TestIDsAreStable(t *testing.T) {
	if HotkeyID("#n") != HotkeyID("#n") {
		t.Fatal("HotkeyID is not deterministic")
	}
	if HotkeyID("btw") == HotstringID("btw") {
		t.Fatal("hotkey and hotstring ids collide")
	}
	if len(HotkeyID("#n")) != 16 {
		t.Fatalf("len(HotkeyID) = %d, want 16", len(HotkeyID("#n")))
	}
}
