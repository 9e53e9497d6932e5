package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/lydakis/ahkx/internal/bootstrap"
	"github.com/lydakis/ahkx/internal/extension"
)

var subcommands = []string{"call", "repl", "mcp", "resolve", "transcript", "version", "completion", "help"}

func runCompletionCommand(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "ahkx: usage: ahkx completion <bash|zsh|fish>")
		return ExitUsageErr
	}

	script, ok := completionScripts[strings.ToLower(args[0])]
	if !ok {
		fmt.Fprintf(stderr, "ahkx: unknown shell for completion: %s\n", args[0])
		return ExitUsageErr
	}

	_, _ = io.WriteString(stdout, script)
	return ExitOK
}

func runInternalCompletion(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "ahkx: usage: ahkx __complete <commands|functions>")
		return ExitUsageErr
	}

	switch args[0] {
	case "commands":
		if len(args) != 1 {
			fmt.Fprintln(stderr, "ahkx: usage: ahkx __complete commands")
			return ExitUsageErr
		}
		for _, cmd := range subcommands {
			fmt.Fprintln(stdout, cmd)
		}
		return ExitOK
	case "functions":
		if len(args) != 1 {
			fmt.Fprintln(stderr, "ahkx: usage: ahkx __complete functions")
			return ExitUsageErr
		}
		for _, fn := range bootstrap.Functions() {
			fmt.Fprintln(stdout, fn.Name)
		}
		for _, name := range extension.Default.Methods() {
			fmt.Fprintln(stdout, name)
		}
		return ExitOK
	default:
		fmt.Fprintf(stderr, "ahkx: unknown completion query: %s\n", args[0])
		return ExitUsageErr
	}
}
