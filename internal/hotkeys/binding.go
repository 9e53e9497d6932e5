package hotkeys

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// ExceptionHandler receives failures from a binding's callback.
type ExceptionHandler func(id string, err error)

// ClipboardCallback receives the interpreter's clipboard change type:
// 0 empty, 1 text, 2 non-text.
type ClipboardCallback func(changeType int) error

// Hotkey binds a key combination, in the interpreter's key syntax, to a
// callback.
type Hotkey struct {
	KeyName          string
	Callback         func() error
	ExceptionHandler ExceptionHandler
}

// Hotstring binds typed text to either a replacement or a callback.
type Hotstring struct {
	Trigger          string
	Replacement      string
	Callback         func() error
	Options          string
	ExceptionHandler ExceptionHandler
}

var hotstringOptionsRe = regexp.MustCompile(`(?i)^[*?BCEIKOPRSTXZ0-9 ]*$`)

const idHexLen = 16

func hashID(kind, spec string) string {
	sum := sha256.Sum256([]byte(kind + "\x00" + spec))
	return hex.EncodeToString(sum[:])[:idHexLen]
}

// HotkeyID is the trigger id the interpreter emits when keyName fires.
func HotkeyID(keyName string) string {
	return hashID("hotkey", keyName)
}

// HotstringID is the trigger id the interpreter emits when trigger fires.
func HotstringID(trigger string) string {
	return hashID("hotstring", trigger)
}

func (h Hotkey) validate() error {
	if strings.TrimSpace(h.KeyName) == "" {
		return invalidf("hotkey has an empty key name")
	}
	if strings.ContainsAny(h.KeyName, "\r\n") {
		return invalidf("hotkey %q contains a newline", h.KeyName)
	}
	if h.Callback == nil {
		return invalidf("hotkey %q has no callback", h.KeyName)
	}
	return nil
}

func (h Hotstring) validate() error {
	if h.Trigger == "" {
		return invalidf("hotstring has an empty trigger")
	}
	if strings.ContainsAny(h.Trigger, "\r\n") {
		return invalidf("hotstring trigger %q contains a newline", h.Trigger)
	}
	if !hotstringOptionsRe.MatchString(h.Options) {
		return invalidf("hotstring %q has invalid options %q", h.Trigger, h.Options)
	}
	switch {
	case h.Callback != nil && h.Replacement != "":
		return invalidf("hotstring %q has both a replacement and a callback", h.Trigger)
	case h.Callback == nil && h.Replacement == "":
		return invalidf("hotstring %q needs a replacement or a callback", h.Trigger)
	}
	return nil
}

var triggerEscaper = strings.NewReplacer("`", "``", ":", "`:", ";", "`;")

var replacementEscaper = strings.NewReplacer(
	"`", "``",
	";", "`;",
	"\r", "`r",
	"\n", "`n",
	"\t", "`t",
)

func escapeTrigger(s string) string {
	return triggerEscaper.Replace(s)
}

func escapeReplacement(s string) string {
	return replacementEscaper.Replace(s)
}

// binding is one registered hotkey or hotstring.
type binding struct {
	id        string
	seq       uint64
	hotkey    *Hotkey
	hotstring *Hotstring
}

func (b *binding) callback() func() error {
	if b.hotkey != nil {
		return b.hotkey.Callback
	}
	return b.hotstring.Callback
}

func (b *binding) handler() ExceptionHandler {
	if b.hotkey != nil {
		return b.hotkey.ExceptionHandler
	}
	return b.hotstring.ExceptionHandler
}

func (b *binding) String() string {
	if b.hotkey != nil {
		return "hotkey " + b.hotkey.KeyName
	}
	return "hotstring " + b.hotstring.Trigger
}

type clipboardBinding struct {
	callback ClipboardCallback
	handler  ExceptionHandler
}
