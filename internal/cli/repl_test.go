package cli

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ergochat/readline"

	"github.com/lydakis/ahkx/internal/message"
)

func TestREPLEvaluatesPipedLines(t *testing.T) {
	input := strings.Join([]string{
		"; comment",
		"",
		"WinGetTitle 'ahk_class Notepad'",
		`Send "" "" 'hello, world'`,
		":json",
		"MouseGetPos",
		":quit",
		"WinGetTitle never",
	}, "\n")
	h := installCLIFakes(t, map[string]message.Response{
		"WinGetTitle": message.NewResponse(message.String, "Untitled"),
		"MouseGetPos": message.NewResponse(message.Coordinate, "(1, 2)"),
	}, input)

	if code := Run([]string{"repl"}); code != ExitOK {
		t.Fatalf("Run(repl) = %d, want %d; stderr=%q", code, ExitOK, h.errOut.String())
	}

	want := []string{"WinGetTitle,ahk_class Notepad", "Send,,,hello, world", "MouseGetPos"}
	if got := h.caller.lines(); !reflect.DeepEqual(got, want) {
		t.Fatalf("calls = %q, want %q", got, want)
	}
	out := h.out.String()
	if !strings.HasPrefix(out, "Untitled\n") {
		t.Fatalf("output = %q, want title first", out)
	}
	if !strings.Contains(out, `"kind":"Coordinate"`) {
		t.Fatalf("output = %q, want JSON coordinate", out)
	}
	if strings.Contains(out, "ahkx> ") {
		t.Fatalf("output = %q, want no prompt for piped input", out)
	}
}

func TestREPLReportsFailuresAndContinues(t *testing.T) {
	input := "RegRead nope\nWinGetTitle x\n:bogus\n"
	h := installCLIFakes(t, map[string]message.Response{
		"RegRead":     message.NewResponse(message.Exception, "cannot read"),
		"WinGetTitle": message.NewResponse(message.String, "ok"),
	}, input)

	if code := Run([]string{"repl"}); code != ExitCallErr {
		t.Fatalf("Run(repl) = %d, want %d", code, ExitCallErr)
	}
	if !strings.Contains(h.errOut.String(), "cannot read") {
		t.Fatalf("stderr = %q, want interpreter text", h.errOut.String())
	}
	if !strings.Contains(h.errOut.String(), "unknown repl command: :bogus") {
		t.Fatalf("stderr = %q, want unknown command", h.errOut.String())
	}
	if h.out.String() != "ok\n" {
		t.Fatalf("output = %q, want %q", h.out.String(), "ok\n")
	}
}

func TestREPLUnbalancedQuote(t *testing.T) {
	h := installCLIFakes(t, nil, "Send 'unterminated\n")
	if code := Run([]string{"repl"}); code != ExitUsageErr {
		t.Fatalf("Run(repl) = %d, want %d", code, ExitUsageErr)
	}
	if len(h.caller.lines()) != 0 {
		t.Fatalf("calls = %q, want none", h.caller.lines())
	}
}

func TestREPLListsFunctions(t *testing.T) {
	h := installCLIFakes(t, nil, ":functions\n")
	if code := Run([]string{"repl"}); code != ExitOK {
		t.Fatalf("Run(repl) = %d, want %d", code, ExitOK)
	}
	if !strings.Contains(h.out.String(), "WinGetTitle") || !strings.Contains(h.out.String(), "MouseGetPos") {
		t.Fatalf("output = %q, want function table", h.out.String())
	}
}

func TestREPLRejectsArguments(t *testing.T) {
	installCLIFakes(t, nil, "")
	if code := Run([]string{"repl", "extra"}); code != ExitUsageErr {
		t.Fatalf("Run(repl extra) = %d, want %d", code, ExitUsageErr)
	}
}

func TestREPLCompleterCompletesCommandsAndFunctions(t *testing.T) {
	completer := readline.NewPrefixCompleter(replCompletions()...)

	line := []rune(":rest")
	got, offset := completer.Do(line, len(line))
	if len(got) != 1 || string(got[0]) != "art " || offset != len(line) {
		t.Fatalf("Do(%q) = %q, %d; want [\"art \"], %d", string(line), got, offset, len(line))
	}

	line = []rune("MouseGetP")
	got, _ = completer.Do(line, len(line))
	if len(got) != 1 || string(got[0]) != "os " {
		t.Fatalf("Do(%q) = %q, want [\"os \"]", string(line), got)
	}
}
