package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"
	"mvdan.cc/sh/v3/shell"

	"github.com/lydakis/ahkx/internal/bootstrap"
	"github.com/lydakis/ahkx/internal/config"
	"github.com/lydakis/ahkx/internal/engine"
	"github.com/lydakis/ahkx/internal/paths"
)

const (
	replPrompt      = "ahkx> "
	replHistorySize = 500
)

// lineEditor reads REPL input with readline on a terminal and with a plain
// scanner when stdin is piped.
type lineEditor struct {
	rl      *readline.Instance
	scanner *bufio.Scanner
	out     io.Writer
}

var stdinIsTerminalFn = func() bool {
	f, ok := rootStdin.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newLineEditor(logger *slog.Logger) *lineEditor {
	plain := &lineEditor{scanner: bufio.NewScanner(rootStdin), out: rootStdout}
	if !stdinIsTerminalFn() {
		return plain
	}

	history := paths.HistoryFile()
	if err := paths.EnsureDir(paths.StateDir()); err != nil {
		logger.Warn("repl history disabled", "error", err)
		history = ""
	}
	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:                 replPrompt,
		HistoryFile:            history,
		HistoryLimit:           replHistorySize,
		DisableAutoSaveHistory: true,
		AutoComplete:           readline.NewPrefixCompleter(replCompletions()...),
	})
	if err != nil {
		logger.Warn("readline unavailable, using plain input", "error", err)
		return plain
	}
	return &lineEditor{rl: rl, out: rootStdout}
}

func (le *lineEditor) readLine() (string, error) {
	if le.rl != nil {
		line, err := le.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			return "", io.EOF
		}
		if err != nil {
			return "", err
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			_ = le.rl.SaveToHistory(trimmed)
		}
		return line, nil
	}

	if !le.scanner.Scan() {
		if err := le.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return le.scanner.Text(), nil
}

func (le *lineEditor) Close() {
	if le.rl != nil {
		le.rl.Close()
		le.rl = nil
	}
}

func replCompletions() []*readline.PrefixCompleter {
	items := make([]*readline.PrefixCompleter, 0, len(bootstrap.Functions())+len(replCommands))
	for _, cmd := range replCommands {
		items = append(items, readline.PcItem(cmd))
	}
	for _, fn := range bootstrap.Functions() {
		items = append(items, readline.PcItem(fn.Name))
	}
	return items
}

var replCommands = []string{":help", ":functions", ":methods", ":json", ":text", ":restart", ":quit"}

func runREPL(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) int {
	if len(args) > 0 {
		if args[0] == "-h" || args[0] == "--help" {
			printREPLHelp(rootStdout)
			return ExitOK
		}
		fmt.Fprintf(rootStderr, "ahkx: repl takes no arguments\n")
		return ExitUsageErr
	}

	e, err := openEngine(cfg, logger)
	if err != nil {
		fmt.Fprintf(rootStderr, "ahkx: %v\n", err)
		return ExitInternal
	}
	defer e.Close()

	le := newLineEditor(logger)
	defer le.Close()

	r := &repl{engine: e, out: rootStdout, errOut: rootStderr}
	for {
		if le.rl == nil && stdinIsTerminalFn() {
			fmt.Fprint(rootStdout, replPrompt)
		}
		line, err := le.readLine()
		if errors.Is(err, io.EOF) {
			return r.status
		}
		if err != nil {
			fmt.Fprintf(rootStderr, "ahkx: %v\n", err)
			return ExitInternal
		}
		if ctx.Err() != nil {
			return r.status
		}
		if done := r.eval(ctx, line); done {
			return r.status
		}
	}
}

// repl evaluates one input line at a time against an engine.
type repl struct {
	engine *engine.Engine
	mode   outputMode
	out    io.Writer
	errOut io.Writer
	// status is the exit code of the last failed line, for piped input.
	status int
}

func (r *repl) eval(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, ";") {
		return false
	}

	if strings.HasPrefix(line, ":") {
		return r.command(ctx, line)
	}

	words, err := shell.Fields(line, func(string) string { return "" })
	if err != nil {
		fmt.Fprintf(r.errOut, "ahkx: %v\n", err)
		r.status = ExitUsageErr
		return false
	}
	if len(words) == 0 {
		return false
	}

	res, err := invoke(ctx, r.engine, words[0], words[1:])
	if err != nil {
		r.status = exitCodeFor(r.errOut, err)
		if engine.IsFatal(err) {
			fmt.Fprintln(r.errOut, "ahkx: interpreter is gone; use :restart")
		}
		return false
	}
	if err := writeResult(r.out, r.mode, res); err != nil {
		fmt.Fprintf(r.errOut, "ahkx: %v\n", err)
	}
	return false
}

func (r *repl) command(ctx context.Context, line string) bool {
	switch strings.Fields(line)[0] {
	case ":q", ":quit", ":exit":
		return true
	case ":help":
		printREPLHelp(r.out)
	case ":functions":
		for _, fn := range bootstrap.Functions() {
			fmt.Fprintf(r.out, "%-22s %-8s %s\n", fn.Name, fn.Group, fn.Returns)
		}
	case ":methods":
		names := r.engine.Methods()
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintln(r.out, name)
		}
	case ":json":
		r.mode = outputModeJSON
	case ":text":
		r.mode = outputModeText
	case ":restart":
		if err := r.engine.Restart(ctx); err != nil {
			r.status = exitCodeFor(r.errOut, err)
		}
	default:
		fmt.Fprintf(r.errOut, "ahkx: unknown repl command: %s\n", line)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	fmt.Fprintln(w, "Usage: ahkx repl")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Each line is a function call: <Function> [args...]")
	fmt.Fprintln(w, "Words are split like a shell; quote arguments holding spaces or # (for example: Send '#r').")
	fmt.Fprintln(w, "Lines starting with ; are comments.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  :functions   List interpreter functions")
	fmt.Fprintln(w, "  :methods     List loaded extension methods")
	fmt.Fprintln(w, "  :json        Print results as JSON")
	fmt.Fprintln(w, "  :text        Print results as text")
	fmt.Fprintln(w, "  :restart     Replace the interpreter after a fatal error")
	fmt.Fprintln(w, "  :quit        Exit")
}
