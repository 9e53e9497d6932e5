package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lydakis/ahkx/internal/config"
	"github.com/lydakis/ahkx/internal/engine"
)

type callArgs struct {
	function string
	args     []string
	mode     outputMode
	help     bool
}

func parseCallArgs(args []string) (callArgs, error) {
	var parsed callArgs
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--json":
			parsed.mode = outputModeJSON
			continue
		case arg == "-h" || arg == "--help":
			parsed.help = true
			continue
		case arg == "--":
			if i+1 >= len(args) {
				return callArgs{}, fmt.Errorf("missing function name after --")
			}
			parsed.function = args[i+1]
			parsed.args = args[i+2:]
			return parsed, nil
		case strings.HasPrefix(arg, "-"):
			return callArgs{}, fmt.Errorf("unsupported flag for call: %s", arg)
		}
		parsed.function = arg
		parsed.args = args[i+1:]
		return parsed, nil
	}
	if parsed.help {
		return parsed, nil
	}
	return callArgs{}, fmt.Errorf("missing function name")
}

func runCall(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) int {
	parsed, err := parseCallArgs(args)
	if err != nil {
		fmt.Fprintf(rootStderr, "ahkx: %v\n", err)
		fmt.Fprintln(rootStderr, "usage: ahkx call [--json] <Function> [args...]")
		return ExitUsageErr
	}
	if parsed.help {
		printCallHelp(rootStdout)
		return ExitOK
	}

	e, err := openEngine(cfg, logger)
	if err != nil {
		fmt.Fprintf(rootStderr, "ahkx: %v\n", err)
		return ExitInternal
	}
	defer e.Close()

	res, err := invoke(ctx, e, parsed.function, parsed.args)
	if err != nil {
		return exitCodeFor(rootStderr, err)
	}
	if err := writeResult(rootStdout, parsed.mode, res); err != nil {
		fmt.Fprintf(rootStderr, "ahkx: %v\n", err)
		return ExitInternal
	}
	return ExitOK
}

// invoke runs name as an extension method when one is loaded and as a
// daemon function otherwise.
func invoke(ctx context.Context, e *engine.Engine, name string, args []string) (callResult, error) {
	if method, ok := e.Method(name); ok {
		v, err := method(ctx, args...)
		if err != nil {
			return callResult{}, err
		}
		return callResult{Value: v}, nil
	}

	resp, err := e.FunctionCall(ctx, name, args...)
	if err != nil {
		return callResult{}, err
	}
	v, err := resp.Unpack()
	if err != nil {
		return callResult{}, err
	}
	return callResult{Kind: resp.Kind.Name, Value: v}, nil
}

func printCallHelp(w io.Writer) {
	fmt.Fprintln(w, "Usage: ahkx call [--json] <Function> [args...]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Calls one interpreter function or extension method and prints the result.")
	fmt.Fprintln(w, "Arguments are passed positionally; empty strings leave a parameter at its default.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  --json       Print {\"kind\":...,\"value\":...} instead of plain text")
	fmt.Fprintln(w, "  --help, -h   Show this help")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0  success")
	fmt.Fprintln(w, "  1  the interpreter reported a failure, a wait timed out, or the window was not found")
	fmt.Fprintln(w, "  2  usage error or unknown function")
	fmt.Fprintln(w, "  3  internal error (interpreter missing, transport dead)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  ahkx call MouseGetPos")
	fmt.Fprintln(w, "  ahkx call --json WindowList")
	fmt.Fprintln(w, "  ahkx call WinGetTitle ahk_class Notepad")
}
