package hotkeys

import (
	"strings"
	"testing"
	"time"
)

func TestRenderScriptOrdersAndEscapes(t *testing.T) {
	cb := func() error { return nil }
	bindings := map[string]*binding{
		HotstringID("a:b"): {id: HotstringID("a:b"), seq: 2, hotstring: &Hotstring{
			Trigger: "a:b", Replacement: "line1\nline2;x", Options: "*",
		}},
		HotkeyID("#n"): {id: HotkeyID("#n"), seq: 1, hotkey: &Hotkey{KeyName: "#n", Callback: cb}},
		HotstringID("brb"): {id: HotstringID("brb"), seq: 3, hotstring: &Hotstring{Trigger: "brb", Callback: cb}},
	}
	out, err := renderScript(bindings, false, 250*time.Millisecond)
	if err != nil {
		t.Fatalf("renderScript() error = %v", err)
	}
	script := string(out)

	for _, want := range []string{
		"SetTimer, AHKXKeepalive, 250",
		"#n::\n    AHKXEmit(\"" + HotkeyID("#n") + "\")",
		":*:a`:b::line1`nline2`;x",
		"\n::brb::\n    AHKXEmit(\"" + HotstringID("brb") + "\")",
	} {
		if !strings.Contains(script, want) {
			t.Fatalf("script missing %q:\n%s", want, script)
		}
	}
	if strings.Contains(script, "OnClipboardChange") {
		t.Fatal("clipboard subscription rendered without a callback")
	}
	if strings.Index(script, "#n::") > strings.Index(script, "a`:b") {
		t.Fatal("bindings not rendered in registration order")
	}
}

func TestRenderScriptDefaultsKeepalive(t *testing.T) {
	out, err := renderScript(nil, true, 0)
	if err != nil {
		t.Fatalf("renderScript() error = %v", err)
	}
	if !strings.Contains(string(out), "SetTimer, AHKXKeepalive, 1000") {
		t.Fatalf("keepalive not defaulted:\n%s", out)
	}
}
