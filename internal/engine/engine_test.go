package engine

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lydakis/ahkx/internal/extension"
	"github.com/lydakis/ahkx/internal/message"
	"github.com/lydakis/ahkx/internal/transcript"
)

type fakeCaller struct {
	mu      sync.Mutex
	calls   []message.Request
	respond func(req message.Request) message.Response
}

func (f *fakeCaller) FunctionCall(_ context.Context, name string, args ...string) (message.Response, error) {
	req := message.Request{Function: name, Args: append([]string(nil), args...)}
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.respond == nil {
		return message.NoValueResponse(), nil
	}
	return f.respond(req), nil
}

func (f *fakeCaller) lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.String()
	}
	return out
}

func newTestEngine(t *testing.T, c Caller) *Engine {
	t.Helper()
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	e, err := New(Options{Caller: c, Registry: extension.NewRegistry(nil)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func respondWith(k *message.Kind, payload string) func(message.Request) message.Response {
	return func(message.Request) message.Response { return message.NewResponse(k, payload) }
}

func TestMousePositionRoundTrip(t *testing.T) {
	c := &fakeCaller{respond: respondWith(message.Coordinate, "(123, 456)")}
	e := newTestEngine(t, c)

	pt, err := e.MousePosition(context.Background())
	if err != nil {
		t.Fatalf("MousePosition() error = %v", err)
	}
	if pt != (message.Point{X: 123, Y: 456}) {
		t.Fatalf("MousePosition() = %v, want (123, 456)", pt)
	}
	if got := c.lines(); !reflect.DeepEqual(got, []string{"MouseGetPos"}) {
		t.Fatalf("requests = %q, want [MouseGetPos]", got)
	}
}

func TestListWindowsReturnsWindowHandles(t *testing.T) {
	c := &fakeCaller{respond: respondWith(message.WindowIDList, "0xAB,0xCD,0xEF")}
	e := newTestEngine(t, c)

	windows, err := e.ListWindows(context.Background(), WinQuery{})
	if err != nil {
		t.Fatalf("ListWindows() error = %v", err)
	}
	var ids []string
	for _, w := range windows {
		ids = append(ids, w.ID)
		if w.engine != e {
			t.Fatalf("window %s not bound to engine", w.ID)
		}
	}
	if want := []string{"0xAB", "0xCD", "0xEF"}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("ids = %q, want %q", ids, want)
	}
	if got := c.lines(); !reflect.DeepEqual(got, []string{"WindowList"}) {
		t.Fatalf("requests = %q, want [WindowList]", got)
	}
	if h, err := windows[0].Handle(); err != nil || h != 0xAB {
		t.Fatalf("Handle() = %d, %v", h, err)
	}
}

func TestExecutionFailurePropagatesInterpreterText(t *testing.T) {
	c := &fakeCaller{respond: respondWith(message.Exception, "window not found")}
	e := newTestEngine(t, c)

	_, err := e.WinGetPID(context.Background(), ByTitle("nonexistent"))
	var execErr *message.ExecutionError
	if !errors.As(err, &execErr) || execErr.Message != "window not found" {
		t.Fatalf("WinGetPID() error = %v, want execution failure", err)
	}
	if errors.Is(err, ErrWindowNotFound) {
		t.Fatal("execution failure reported as ErrWindowNotFound")
	}
	if !IsExecutionError(err) || IsFatal(err) {
		t.Fatalf("IsExecutionError/IsFatal wrong for %v", err)
	}
	if got := c.lines(); !reflect.DeepEqual(got, []string{"WinGetPID,nonexistent"}) {
		t.Fatalf("requests = %q", got)
	}
}

func TestMissingWindowBecomesErrWindowNotFound(t *testing.T) {
	c := &fakeCaller{}
	e := newTestEngine(t, c)

	if _, err := e.WinGetTitle(context.Background(), ByTitle("Untitled - Notepad")); !errors.Is(err, ErrWindowNotFound) {
		t.Fatalf("WinGetTitle() error = %v, want ErrWindowNotFound", err)
	}
	if err := e.Window("0x1").Activate(context.Background()); !errors.Is(err, ErrWindowNotFound) {
		t.Fatalf("Activate() error = %v, want ErrWindowNotFound", err)
	}
	if got := c.lines()[1]; got != "WinActivate,ahk_id 0x1" {
		t.Fatalf("request = %q", got)
	}
}

func TestVerbArgumentOrder(t *testing.T) {
	c := &fakeCaller{respond: func(req message.Request) message.Response {
		if strings.HasPrefix(req.Function, "Win") {
			return message.NewResponse(message.Boolean, "1")
		}
		return message.NoValueResponse()
	}}
	e := newTestEngine(t, c)
	ctx := context.Background()

	q := WinQuery{Title: "Notepad", MatchMode: MatchContains, DetectHidden: true}
	steps := []struct {
		run  func() error
		want string
	}{
		{func() error { return e.WinMove(ctx, q, message.Rect{X: 10, Y: 20}) }, "WinMove,Notepad,,,,2,On,10,20"},
		{func() error { return e.WinClose(ctx, ByTitle("a"), 1500*time.Millisecond) }, "WinClose,a,,,,,,1.5"},
		{func() error { return e.WinSetTransparent(ctx, ByTitle("a"), -1) }, "WinSetTransparent,a,,,,,,Off"},
		{func() error { return e.WinSetAlwaysOnTop(ctx, ByID("0x2"), true) }, "WinSetAlwaysOnTop,ahk_id 0x2,,,,,,On"},
		{func() error { return e.MouseMove(ctx, 5, 6, MoveOptions{Speed: -1}) }, "MouseMove,5,6"},
		{func() error { return e.MouseMove(ctx, 5, 6, MoveOptions{Speed: 0, Relative: true}) }, "MouseMove,5,6,0,R"},
		{func() error {
			return e.MouseClickDrag(ctx, "Left", message.Point{X: 1, Y: 2}, message.Point{X: 3, Y: 4}, MoveOptions{Speed: -1})
		}, "MouseClickDrag,Left,1,2,3,4"},
		{func() error { return e.Send(ctx, "hello, world", SendOptions{}) }, "Send,,,hello, world"},
		{func() error { return e.Send(ctx, "x", SendOptions{Delay: -1, PressDuration: 20 * time.Millisecond}) }, "Send,-1,20,x"},
		{func() error { return e.SendInput(ctx, "{Enter}") }, "SendInput,{Enter}"},
		{func() error { return e.SetClipboard(ctx, "a\nb") }, "SetClipboard,a`nb"},
		{func() error { return e.MouseWheel(ctx, WheelDown, 0) }, "MouseWheel,Down,1"},
		{func() error { return e.DetectHiddenWindows(ctx, false) }, "DetectHiddenWindows,Off"},
		{func() error { return e.SoundBeep(ctx, 0, 0) }, "SoundBeep"},
		{func() error { return e.RegWrite(ctx, "REG_SZ", `HKCU\Software\ahkx`, "k", "v") }, `RegWrite,REG_SZ,HKCU\Software\ahkx,k,v`},
		{func() error { return e.ToolTip(ctx, "hi", &message.Point{X: 1, Y: 2}, 1) }, "ToolTip,1,2,,hi"},
	}
	for i, step := range steps {
		if err := step.run(); err != nil {
			t.Fatalf("step %d error = %v", i, err)
		}
		lines := c.lines()
		if got := lines[len(lines)-1]; got != step.want {
			t.Fatalf("step %d request = %q, want %q", i, got, step.want)
		}
	}
}

func TestOptionalResults(t *testing.T) {
	c := &fakeCaller{}
	e := newTestEngine(t, c)
	ctx := context.Background()

	if _, found, err := e.PixelSearch(ctx, Region{0, 0, 10, 10}, "0xFFFFFF", 0, "", ""); err != nil || found {
		t.Fatalf("PixelSearch() found = %v, err = %v; want not found", found, err)
	}
	if _, ok, err := e.InputBox(ctx, InputBoxOptions{Prompt: "name?"}); err != nil || ok {
		t.Fatalf("InputBox() ok = %v, err = %v; want cancelled", ok, err)
	}

	c.respond = respondWith(message.Coordinate, "(4, 5)")
	pt, found, err := e.ImageSearch(ctx, Region{0, 0, 100, 100}, `C:\img.png`, "")
	if err != nil || !found || pt != (message.Point{X: 4, Y: 5}) {
		t.Fatalf("ImageSearch() = %v, %v, %v", pt, found, err)
	}
}

func TestTimeoutsSurfaceAsTimeoutErrors(t *testing.T) {
	c := &fakeCaller{respond: respondWith(message.Timeout, "key wait: LButton")}
	e := newTestEngine(t, c)

	err := e.KeyWait(context.Background(), "LButton", "T1")
	if !IsTimeout(err) {
		t.Fatalf("KeyWait() error = %v, want timeout", err)
	}
}

func TestClipboardAllIsBase64OnTheWire(t *testing.T) {
	blob := []byte{0, 1, 2, 250}
	c := &fakeCaller{respond: respondWith(message.Binary, base64.StdEncoding.EncodeToString(blob))}
	e := newTestEngine(t, c)

	got, err := e.GetClipboardAll(context.Background())
	if err != nil || !reflect.DeepEqual(got, blob) {
		t.Fatalf("GetClipboardAll() = %v, %v", got, err)
	}
	if err := e.SetClipboardAll(context.Background(), blob); err != nil {
		t.Fatalf("SetClipboardAll() error = %v", err)
	}
	lines := c.lines()
	if want := "SetClipboardAll," + base64.StdEncoding.EncodeToString(blob); lines[1] != want {
		t.Fatalf("request = %q, want %q", lines[1], want)
	}
}

func TestControlsCarryOwningWindow(t *testing.T) {
	c := &fakeCaller{respond: respondWith(message.WindowControlList, "0x10\n0x11,Edit1\n0x12,Button1")}
	e := newTestEngine(t, c)

	controls, err := e.WinGetControlList(context.Background(), ByTitle("Notepad"))
	if err != nil {
		t.Fatalf("WinGetControlList() error = %v", err)
	}
	if len(controls) != 2 || controls[1].Class != "Button1" || controls[1].HWND != "0x12" || controls[0].Window.ID != "0x10" {
		t.Fatalf("controls = %+v", controls)
	}
	if got := c.lines(); !reflect.DeepEqual(got, []string{"WinGetControlList,Notepad"}) {
		t.Fatalf("requests = %q, want one WinGetControlList", got)
	}
}

func TestExtensionMethodsRouteThroughEngine(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	reg := extension.NewRegistry(nil)
	ext, err := reg.New(extension.Spec{Name: "math", Script: "AHKX_Add(a, b) {\n    return AHKXInteger(a + b)\n}", Functions: []string{"Add"}})
	if err != nil {
		t.Fatal(err)
	}
	if err := ext.Forward("Add"); err != nil {
		t.Fatal(err)
	}
	other, _ := reg.New(extension.Spec{Name: "unused"})
	_ = other.Forward("Unused")

	c := &fakeCaller{respond: respondWith(message.Integer, "5")}
	e, err := New(Options{Caller: c, Registry: reg, Extensions: []string{"math"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	got, err := e.Call(context.Background(), "Add", "2", "3")
	if err != nil || got != 5 {
		t.Fatalf("Call(Add) = %v, %v; want 5", got, err)
	}
	add, ok := e.Method("Add")
	if !ok {
		t.Fatal("Method(Add) not found")
	}
	if got, err := add(context.Background(), "1", "1"); err != nil || got != 5 {
		t.Fatalf("bound Add = %v, %v", got, err)
	}
	if _, err := e.Call(context.Background(), "Unused"); !errors.Is(err, extension.ErrUnknownMethod) {
		t.Fatalf("Call(Unused) error = %v, want ErrUnknownMethod for unselected extension", err)
	}
	if got := e.Methods(); !reflect.DeepEqual(got, []string{"Add"}) {
		t.Fatalf("Methods() = %q", got)
	}
	if got := c.lines(); got[0] != "Add,2,3" {
		t.Fatalf("request = %q", got[0])
	}
}

func TestReplayedTranscriptDrivesEngine(t *testing.T) {
	r := transcript.NewReplayer([]transcript.Entry{
		{Seq: 1, Function: "MouseGetPos", TOM: message.Coordinate.TOM, Kind: message.NameCoordinate, Payload: []byte("(7, 8)")},
		{Seq: 2, Function: "GetClipboard", TOM: message.String.TOM, Kind: message.NameString, Payload: []byte("line1\nline2")},
	}, nil)
	e := newTestEngine(t, r)
	ctx := context.Background()

	if pt, err := e.MousePosition(ctx); err != nil || pt != (message.Point{X: 7, Y: 8}) {
		t.Fatalf("MousePosition() = %v, %v", pt, err)
	}
	if text, err := e.GetClipboard(ctx); err != nil || text != "line1\nline2" {
		t.Fatalf("GetClipboard() = %q, %v", text, err)
	}
	if _, err := e.MousePosition(ctx); !errors.Is(err, transcript.ErrExhausted) {
		t.Fatalf("MousePosition() past end error = %v", err)
	}
}

func TestCloseRemovesRunDirAndRejectsCalls(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	tpath := filepath.Join(t.TempDir(), "t.cbor")
	e, err := New(Options{Registry: extension.NewRegistry(nil), Transcript: tpath})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := os.MkdirAll(e.runDir, 0o700); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(tpath); err != nil {
		t.Fatalf("transcript not created: %v", err)
	}

	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(e.runDir); !os.IsNotExist(err) {
		t.Fatalf("run dir still present: %v", err)
	}
	if _, err := e.MousePosition(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("MousePosition() after Close error = %v, want ErrClosed", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
