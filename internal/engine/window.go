package engine

import (
	"context"
	"strconv"
	"time"

	"github.com/lydakis/ahkx/internal/message"
)

// Title match modes accepted by WinQuery.MatchMode.
const (
	MatchStartsWith = "1"
	MatchContains   = "2"
	MatchExact      = "3"
	MatchRegEx      = "RegEx"
)

// WinQuery selects windows the way the interpreter's WinTitle parameters
// do. The zero value matches the last found window.
type WinQuery struct {
	Title        string
	Text         string
	ExcludeTitle string
	ExcludeText  string
	// MatchMode overrides the title match mode for this call.
	MatchMode string
	// DetectHidden includes hidden windows for this call.
	DetectHidden bool
}

// ByTitle matches windows whose title starts with title.
func ByTitle(title string) WinQuery { return WinQuery{Title: title} }

// ByID matches exactly one window by its handle.
func ByID(id string) WinQuery { return WinQuery{Title: "ahk_id " + id} }

func (q WinQuery) args(extra ...string) []string {
	hidden := ""
	if q.DetectHidden {
		hidden = "On"
	}
	return append([]string{q.Title, q.Text, q.ExcludeTitle, q.ExcludeText, q.MatchMode, hidden}, extra...)
}

// Window is a handle to one top-level window. It does not own the engine.
type Window struct {
	engine *Engine
	ID     string
}

// Window returns a handle for id.
func (e *Engine) Window(id string) Window { return Window{engine: e, ID: id} }

func (w Window) String() string { return "Window(" + w.ID + ")" }

// Query returns the query that matches exactly this window.
func (w Window) Query() WinQuery { return ByID(w.ID) }

// Control is one child control of a window.
type Control struct {
	Window Window
	HWND   string
	// Class is the ClassNN name, e.g. "Edit1".
	Class string
}

func (c Control) String() string { return c.Class + "@" + c.Window.ID }

// ---- queries ----

// WinExists reports whether a window matches q.
func (e *Engine) WinExists(ctx context.Context, q WinQuery) (bool, error) {
	return call[bool](ctx, e, "WinExists", q.args()...)
}

// WinGetTitle returns the title of the window matching q.
func (e *Engine) WinGetTitle(ctx context.Context, q WinQuery) (string, error) {
	return callWindow[string](ctx, e, "WinGetTitle", q.args()...)
}

// WinGetClass returns the window class name.
func (e *Engine) WinGetClass(ctx context.Context, q WinQuery) (string, error) {
	return callWindow[string](ctx, e, "WinGetClass", q.args()...)
}

// WinGetText returns the window's visible text.
func (e *Engine) WinGetText(ctx context.Context, q WinQuery) (string, error) {
	return callWindow[string](ctx, e, "WinGetText", q.args()...)
}

// WinGetPID returns the owning process id.
func (e *Engine) WinGetPID(ctx context.Context, q WinQuery) (int, error) {
	return callWindow[int](ctx, e, "WinGetPID", q.args()...)
}

// WinGetProcessName returns the owning process's executable name.
func (e *Engine) WinGetProcessName(ctx context.Context, q WinQuery) (string, error) {
	return callWindow[string](ctx, e, "WinGetProcessName", q.args()...)
}

// WinGetProcessPath returns the owning process's executable path.
func (e *Engine) WinGetProcessPath(ctx context.Context, q WinQuery) (string, error) {
	return callWindow[string](ctx, e, "WinGetProcessPath", q.args()...)
}

// WinGetMinMax returns -1 when minimized, 1 when maximized, else 0.
func (e *Engine) WinGetMinMax(ctx context.Context, q WinQuery) (int, error) {
	return callWindow[int](ctx, e, "WinGetMinMax", q.args()...)
}

// WinGetTransparent returns the transparency level, 255 when opaque.
func (e *Engine) WinGetTransparent(ctx context.Context, q WinQuery) (int, error) {
	return callWindow[int](ctx, e, "WinGetTransparent", q.args()...)
}

// WinGetStyle returns the window style bits.
func (e *Engine) WinGetStyle(ctx context.Context, q WinQuery) (int, error) {
	return callWindow[int](ctx, e, "WinGetStyle", q.args()...)
}

// WinGetExStyle returns the extended window style bits.
func (e *Engine) WinGetExStyle(ctx context.Context, q WinQuery) (int, error) {
	return callWindow[int](ctx, e, "WinGetExStyle", q.args()...)
}

// WinIsAlwaysOnTop reports whether the window is topmost.
func (e *Engine) WinIsAlwaysOnTop(ctx context.Context, q WinQuery) (bool, error) {
	return callWindow[bool](ctx, e, "WinIsAlwaysOnTop", q.args()...)
}

// WinGetControlList returns the window's controls.
func (e *Engine) WinGetControlList(ctx context.Context, q WinQuery) ([]Control, error) {
	list, err := callWindow[message.ControlList](ctx, e, "WinGetControlList", q.args()...)
	if err != nil {
		return nil, err
	}
	owner := e.Window(list.Window)
	controls := make([]Control, len(list.Controls))
	for i, ref := range list.Controls {
		controls[i] = Control{Window: owner, HWND: ref.HWND, Class: ref.Class}
	}
	return controls, nil
}

// ListWindows returns every window matching q, topmost first.
func (e *Engine) ListWindows(ctx context.Context, q WinQuery) ([]Window, error) {
	ids, err := call[[]string](ctx, e, "WindowList", q.args()...)
	if err != nil {
		return nil, err
	}
	windows := make([]Window, len(ids))
	for i, id := range ids {
		windows[i] = e.Window(id)
	}
	return windows, nil
}

// WinGetCount returns how many windows match q.
func (e *Engine) WinGetCount(ctx context.Context, q WinQuery) (int, error) {
	return call[int](ctx, e, "WinGetCount", q.args()...)
}

// WinGetID returns the topmost window matching q.
func (e *Engine) WinGetID(ctx context.Context, q WinQuery) (Window, error) {
	id, err := callWindow[string](ctx, e, "WinGetID", q.args()...)
	if err != nil {
		return Window{}, err
	}
	return e.Window(id), nil
}

// WinGetIDLast returns the bottommost window matching q.
func (e *Engine) WinGetIDLast(ctx context.Context, q WinQuery) (Window, error) {
	id, err := callWindow[string](ctx, e, "WinGetIDLast", q.args()...)
	if err != nil {
		return Window{}, err
	}
	return e.Window(id), nil
}

// WinFromMouse returns the window under the mouse cursor.
func (e *Engine) WinFromMouse(ctx context.Context) (Window, error) {
	id, err := callWindow[string](ctx, e, "WinFromMouse")
	if err != nil {
		return Window{}, err
	}
	return e.Window(id), nil
}

// WinGetPos returns the window's position and size.
func (e *Engine) WinGetPos(ctx context.Context, q WinQuery) (message.Rect, error) {
	return callWindow[message.Rect](ctx, e, "WinGetPos", q.args()...)
}

// ---- manipulation ----

func (e *Engine) winDo(ctx context.Context, name string, q WinQuery, extra ...string) error {
	_, err := callWindow[bool](ctx, e, name, q.args(extra...)...)
	return err
}

// WinActivate brings the window to the foreground.
func (e *Engine) WinActivate(ctx context.Context, q WinQuery) error {
	return e.winDo(ctx, "WinActivate", q)
}

// WinActivateBottom activates the bottommost matching window.
func (e *Engine) WinActivateBottom(ctx context.Context, q WinQuery) error {
	return e.winDo(ctx, "WinActivateBottom", q)
}

// WinClose asks the window to close, waiting up to wait for it to go.
func (e *Engine) WinClose(ctx context.Context, q WinQuery, wait time.Duration) error {
	return e.winDo(ctx, "WinClose", q, seconds(wait))
}

// WinKill forces the window closed, waiting up to wait.
func (e *Engine) WinKill(ctx context.Context, q WinQuery, wait time.Duration) error {
	return e.winDo(ctx, "WinKill", q, seconds(wait))
}

// WinHide hides the window.
func (e *Engine) WinHide(ctx context.Context, q WinQuery) error { return e.winDo(ctx, "WinHide", q) }

// WinShow shows a hidden window.
func (e *Engine) WinShow(ctx context.Context, q WinQuery) error { return e.winDo(ctx, "WinShow", q) }

// WinMaximize maximizes the window.
func (e *Engine) WinMaximize(ctx context.Context, q WinQuery) error {
	return e.winDo(ctx, "WinMaximize", q)
}

// WinMinimize minimizes the window.
func (e *Engine) WinMinimize(ctx context.Context, q WinQuery) error {
	return e.winDo(ctx, "WinMinimize", q)
}

// WinRestore restores a minimized or maximized window.
func (e *Engine) WinRestore(ctx context.Context, q WinQuery) error {
	return e.winDo(ctx, "WinRestore", q)
}

// WinMove moves the window to r. A zero width or height keeps that
// dimension.
func (e *Engine) WinMove(ctx context.Context, q WinQuery, r message.Rect) error {
	w, h := "", ""
	if r.Width > 0 {
		w = itoa(r.Width)
	}
	if r.Height > 0 {
		h = itoa(r.Height)
	}
	return e.winDo(ctx, "WinMove", q, itoa(r.X), itoa(r.Y), w, h)
}

// WinSetTitle renames the window.
func (e *Engine) WinSetTitle(ctx context.Context, q WinQuery, title string) error {
	return e.winDo(ctx, "WinSetTitle", q, title)
}

// WinSetStyle changes style bits; value takes the interpreter's +, - and ^
// prefixes.
func (e *Engine) WinSetStyle(ctx context.Context, q WinQuery, value string) error {
	return e.winDo(ctx, "WinSetStyle", q, value)
}

// WinSetExStyle changes extended style bits.
func (e *Engine) WinSetExStyle(ctx context.Context, q WinQuery, value string) error {
	return e.winDo(ctx, "WinSetExStyle", q, value)
}

// WinSetRegion clips the window to a region spec. An empty spec restores
// the window's original shape.
func (e *Engine) WinSetRegion(ctx context.Context, q WinQuery, spec string) error {
	return e.winDo(ctx, "WinSetRegion", q, spec)
}

// WinSetTransparent sets the transparency level (0-255). A negative level
// turns transparency off.
func (e *Engine) WinSetTransparent(ctx context.Context, q WinQuery, level int) error {
	value := "Off"
	if level >= 0 {
		value = itoa(level)
	}
	return e.winDo(ctx, "WinSetTransparent", q, value)
}

// WinSetTransColor makes one color transparent, e.g. "EEAA99" or
// "EEAA99 150". "Off" disables it.
func (e *Engine) WinSetTransColor(ctx context.Context, q WinQuery, color string) error {
	return e.winDo(ctx, "WinSetTransColor", q, color)
}

// WinSetAlwaysOnTop pins or unpins the window.
func (e *Engine) WinSetAlwaysOnTop(ctx context.Context, q WinQuery, on bool) error {
	return e.winDo(ctx, "WinSetAlwaysOnTop", q, onOff(on))
}

// WinSetTop raises the window without activating it.
func (e *Engine) WinSetTop(ctx context.Context, q WinQuery) error {
	return e.winDo(ctx, "WinSetTop", q)
}

// WinSetBottom sends the window to the bottom of the z-order.
func (e *Engine) WinSetBottom(ctx context.Context, q WinQuery) error {
	return e.winDo(ctx, "WinSetBottom", q)
}

// WinSetDisable disables input to the window.
func (e *Engine) WinSetDisable(ctx context.Context, q WinQuery) error {
	return e.winDo(ctx, "WinSetDisable", q)
}

// WinSetEnable re-enables input to the window.
func (e *Engine) WinSetEnable(ctx context.Context, q WinQuery) error {
	return e.winDo(ctx, "WinSetEnable", q)
}

// WinSetRedraw forces a repaint.
func (e *Engine) WinSetRedraw(ctx context.Context, q WinQuery) error {
	return e.winDo(ctx, "WinSetRedraw", q)
}

// ---- Window methods ----

// Exists reports whether the window still exists.
func (w Window) Exists(ctx context.Context) (bool, error) {
	return w.engine.WinExists(ctx, w.Query())
}

// Title returns the window title.
func (w Window) Title(ctx context.Context) (string, error) {
	return w.engine.WinGetTitle(ctx, w.Query())
}

// Class returns the window class.
func (w Window) Class(ctx context.Context) (string, error) {
	return w.engine.WinGetClass(ctx, w.Query())
}

// Text returns the window's visible text.
func (w Window) Text(ctx context.Context) (string, error) {
	return w.engine.WinGetText(ctx, w.Query())
}

// PID returns the owning process id.
func (w Window) PID(ctx context.Context) (int, error) {
	return w.engine.WinGetPID(ctx, w.Query())
}

// ProcessName returns the owning process's executable name.
func (w Window) ProcessName(ctx context.Context) (string, error) {
	return w.engine.WinGetProcessName(ctx, w.Query())
}

// ProcessPath returns the owning process's executable path.
func (w Window) ProcessPath(ctx context.Context) (string, error) {
	return w.engine.WinGetProcessPath(ctx, w.Query())
}

// Rect returns the window position and size.
func (w Window) Rect(ctx context.Context) (message.Rect, error) {
	return w.engine.WinGetPos(ctx, w.Query())
}

// Controls returns the window's controls.
func (w Window) Controls(ctx context.Context) ([]Control, error) {
	return w.engine.WinGetControlList(ctx, w.Query())
}

// AlwaysOnTop reports whether the window is topmost.
func (w Window) AlwaysOnTop(ctx context.Context) (bool, error) {
	return w.engine.WinIsAlwaysOnTop(ctx, w.Query())
}

// Activate brings the window to the foreground.
func (w Window) Activate(ctx context.Context) error { return w.engine.WinActivate(ctx, w.Query()) }

// Close asks the window to close.
func (w Window) Close(ctx context.Context, wait time.Duration) error {
	return w.engine.WinClose(ctx, w.Query(), wait)
}

// Kill forces the window closed.
func (w Window) Kill(ctx context.Context, wait time.Duration) error {
	return w.engine.WinKill(ctx, w.Query(), wait)
}

// Hide hides the window.
func (w Window) Hide(ctx context.Context) error { return w.engine.WinHide(ctx, w.Query()) }

// Show shows the window.
func (w Window) Show(ctx context.Context) error { return w.engine.WinShow(ctx, w.Query()) }

// Maximize maximizes the window.
func (w Window) Maximize(ctx context.Context) error { return w.engine.WinMaximize(ctx, w.Query()) }

// Minimize minimizes the window.
func (w Window) Minimize(ctx context.Context) error { return w.engine.WinMinimize(ctx, w.Query()) }

// Restore restores the window.
func (w Window) Restore(ctx context.Context) error { return w.engine.WinRestore(ctx, w.Query()) }

// Move moves and optionally resizes the window.
func (w Window) Move(ctx context.Context, r message.Rect) error {
	return w.engine.WinMove(ctx, w.Query(), r)
}

// SetTitle renames the window.
func (w Window) SetTitle(ctx context.Context, title string) error {
	return w.engine.WinSetTitle(ctx, w.Query(), title)
}

// SetAlwaysOnTop pins or unpins the window.
func (w Window) SetAlwaysOnTop(ctx context.Context, on bool) error {
	return w.engine.WinSetAlwaysOnTop(ctx, w.Query(), on)
}

// SetTransparent sets the transparency level; negative turns it off.
func (w Window) SetTransparent(ctx context.Context, level int) error {
	return w.engine.WinSetTransparent(ctx, w.Query(), level)
}

// Handle parses the window id as a number.
func (w Window) Handle() (uint64, error) {
	return strconv.ParseUint(w.ID, 0, 64)
}
