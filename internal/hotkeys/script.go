package hotkeys

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"text/template"
	"time"
)

//go:embed templates/hotkeys.ahk.tmpl
var hotkeysTemplateText string

var hotkeysTemplate = template.Must(template.New("hotkeys.ahk").Parse(hotkeysTemplateText))

type renderedHotkey struct {
	ID      string
	KeyName string
}

type renderedHotstring struct {
	ID          string
	Options     string
	Trigger     string
	Replacement string
	Callback    bool
}

type scriptData struct {
	KeepaliveMillis int64
	Clipboard       bool
	Hotkeys         []renderedHotkey
	Hotstrings      []renderedHotstring
}

// renderScript produces the trigger script for bindings, in registration
// order.
func renderScript(bindings map[string]*binding, clipboard bool, keepalive time.Duration) ([]byte, error) {
	ordered := make([]*binding, 0, len(bindings))
	for _, b := range bindings {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].seq < ordered[j].seq })

	millis := keepalive.Milliseconds()
	if millis <= 0 {
		millis = defaultKeepaliveInterval.Milliseconds()
	}
	data := scriptData{KeepaliveMillis: millis, Clipboard: clipboard}
	for _, b := range ordered {
		if b.hotkey != nil {
			data.Hotkeys = append(data.Hotkeys, renderedHotkey{ID: b.id, KeyName: b.hotkey.KeyName})
			continue
		}
		hs := b.hotstring
		data.Hotstrings = append(data.Hotstrings, renderedHotstring{
			ID:          b.id,
			Options:     hs.Options,
			Trigger:     escapeTrigger(hs.Trigger),
			Replacement: escapeReplacement(hs.Replacement),
			Callback:    hs.Callback != nil,
		})
	}

	var buf bytes.Buffer
	if err := hotkeysTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering hotkey script: %w", err)
	}
	return buf.Bytes(), nil
}
