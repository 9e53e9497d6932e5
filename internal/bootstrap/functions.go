package bootstrap

import "github.com/lydakis/ahkx/internal/message"

// Function is one handler installed by the daemon bootstrap script.
type Function struct {
	Name    string
	Group   string
	Returns string
}

// functions is the closed set of daemon handlers. The rendered script
// defines AHKX_<Name> for each entry and the engine calls them by these
// names only.
var functions = []Function{
	// window query
	{"WinExists", "window", message.NameBoolean},
	{"WinGetTitle", "window", message.NameString},
	{"WinGetClass", "window", message.NameString},
	{"WinGetText", "window", message.NameString},
	{"WinGetPID", "window", message.NameInteger},
	{"WinGetProcessName", "window", message.NameString},
	{"WinGetProcessPath", "window", message.NameString},
	{"WinGetMinMax", "window", message.NameInteger},
	{"WinGetControlList", "window", message.NameWindowControlList},
	{"WinGetTransparent", "window", message.NameInteger},
	{"WinGetStyle", "window", message.NameInteger},
	{"WinGetExStyle", "window", message.NameInteger},
	{"WinIsAlwaysOnTop", "window", message.NameBoolean},
	{"WindowList", "window", message.NameWindowIDList},
	{"WinGetCount", "window", message.NameInteger},
	{"WinGetID", "window", message.NameWindow},
	{"WinGetIDLast", "window", message.NameWindow},
	{"WinFromMouse", "window", message.NameWindow},
	{"WinGetPos", "window", message.NamePosition},

	// window manipulation
	{"WinActivate", "window", message.NameBoolean},
	{"WinActivateBottom", "window", message.NameBoolean},
	{"WinClose", "window", message.NameBoolean},
	{"WinHide", "window", message.NameBoolean},
	{"WinKill", "window", message.NameBoolean},
	{"WinMaximize", "window", message.NameBoolean},
	{"WinMinimize", "window", message.NameBoolean},
	{"WinRestore", "window", message.NameBoolean},
	{"WinShow", "window", message.NameBoolean},
	{"WinMove", "window", message.NameBoolean},
	{"WinSetTitle", "window", message.NameBoolean},
	{"WinSetStyle", "window", message.NameBoolean},
	{"WinSetExStyle", "window", message.NameBoolean},
	{"WinSetRegion", "window", message.NameBoolean},
	{"WinSetTransparent", "window", message.NameBoolean},
	{"WinSetTransColor", "window", message.NameBoolean},
	{"WinSetAlwaysOnTop", "window", message.NameBoolean},
	{"WinSetTop", "window", message.NameBoolean},
	{"WinSetBottom", "window", message.NameBoolean},
	{"WinSetDisable", "window", message.NameBoolean},
	{"WinSetEnable", "window", message.NameBoolean},
	{"WinSetRedraw", "window", message.NameBoolean},

	// mouse
	{"MouseGetPos", "mouse", message.NameCoordinate},
	{"MouseMove", "mouse", message.NameNoValue},
	{"Click", "mouse", message.NameNoValue},
	{"MouseClickDrag", "mouse", message.NameNoValue},
	{"MouseWheel", "mouse", message.NameNoValue},

	// keyboard
	{"Send", "keyboard", message.NameNoValue},
	{"SendRaw", "keyboard", message.NameNoValue},
	{"SendInput", "keyboard", message.NameNoValue},
	{"SendEvent", "keyboard", message.NameNoValue},
	{"SendPlay", "keyboard", message.NameNoValue},
	{"GetKeyState", "keyboard", message.NameBoolean},
	{"KeyWait", "keyboard", message.NameNoValue},
	{"SetCapsLockState", "keyboard", message.NameNoValue},

	// screen
	{"PixelGetColor", "screen", message.NameString},
	{"PixelSearch", "screen", message.NameCoordinate},
	{"ImageSearch", "screen", message.NameCoordinate},

	// clipboard
	{"GetClipboard", "clipboard", message.NameString},
	{"SetClipboard", "clipboard", message.NameNoValue},
	{"GetClipboardAll", "clipboard", message.NameBinary},
	{"SetClipboardAll", "clipboard", message.NameNoValue},
	{"ClipWait", "clipboard", message.NameNoValue},

	// gui
	{"MsgBox", "gui", message.NameString},
	{"InputBox", "gui", message.NameString},
	{"ToolTip", "gui", message.NameNoValue},
	{"TrayTip", "gui", message.NameNoValue},

	// sound
	{"SoundBeep", "sound", message.NameNoValue},
	{"SoundPlay", "sound", message.NameNoValue},
	{"SoundGet", "sound", message.NameString},
	{"SoundSet", "sound", message.NameNoValue},

	// registry
	{"RegRead", "registry", message.NameString},
	{"RegWrite", "registry", message.NameNoValue},
	{"RegDelete", "registry", message.NameNoValue},
	{"SetRegView", "registry", message.NameNoValue},

	// modes
	{"CoordMode", "mode", message.NameNoValue},
	{"SendMode", "mode", message.NameNoValue},
	{"SendLevel", "mode", message.NameNoValue},
	{"SetTitleMatchMode", "mode", message.NameNoValue},
	{"DetectHiddenWindows", "mode", message.NameNoValue},
}

var functionsByName = func() map[string]Function {
	m := make(map[string]Function, len(functions))
	for _, fn := range functions {
		m[fn.Name] = fn
	}
	return m
}()

// Functions returns the daemon handler table in declaration order.
func Functions() []Function {
	return append([]Function(nil), functions...)
}

// LookupFunction returns the handler named name.
func LookupFunction(name string) (Function, bool) {
	fn, ok := functionsByName[name]
	return fn, ok
}
