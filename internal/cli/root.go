// Package cli implements the ahkx command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lydakis/ahkx/internal/config"
	"github.com/lydakis/ahkx/internal/daemon"
	"github.com/lydakis/ahkx/internal/engine"
	"github.com/lydakis/ahkx/internal/extension"
	"github.com/lydakis/ahkx/internal/process"
)

var (
	newEngineFn  = engine.New
	loadConfigFn = loadConfig
)

// Run is the main CLI entry point. Returns an exit code.
func Run(args []string) int {
	defer process.KillAll()

	if handled, code := handleRootFlags(args); handled {
		return code
	}

	opts, rest, err := parseRootOptions(args)
	if err != nil {
		fmt.Fprintf(rootStderr, "ahkx: %v\n", err)
		return ExitUsageErr
	}
	if len(rest) == 0 {
		printRootHelp(rootStderr)
		return ExitUsageErr
	}

	if handled, code := maybeHandleCompletionCommand(rest, rootStdout, rootStderr); handled {
		return code
	}

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "help":
		printRootHelp(rootStdout)
		return ExitOK
	case "version":
		fmt.Fprintf(rootStdout, "ahkx %s\n", buildVersion)
		return ExitOK
	case "transcript":
		return runTranscript(cmdArgs, rootStdout, rootStderr)
	}

	cfg, err := loadConfigFn(opts.configPath)
	if err != nil {
		fmt.Fprintf(rootStderr, "ahkx: %v\n", err)
		return ExitInternal
	}
	if verr := config.Validate(cfg); verr != nil {
		fmt.Fprintf(rootStderr, "ahkx: invalid config: %v\n", verr)
		return ExitUsageErr
	}
	if verr := checkExtensions(cfg, extension.Default); verr != nil {
		fmt.Fprintf(rootStderr, "ahkx: invalid config: %v\n", verr)
		return ExitUsageErr
	}
	logger := newLogger(rootStderr, cfg, opts.verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "call":
		return runCall(ctx, cfg, logger, cmdArgs)
	case "repl":
		return runREPL(ctx, cfg, logger, cmdArgs)
	case "mcp":
		return runMCP(ctx, cfg, logger, cmdArgs)
	case "resolve":
		return runResolve(cfg, opts.configPath, cmdArgs, rootStdout, rootStderr)
	default:
		fmt.Fprintf(rootStderr, "ahkx: unknown command: %s\n", cmd)
		printRootHelp(rootStderr)
		return ExitUsageErr
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// checkExtensions rejects extension names the registry does not hold. The
// ahkx binary registers none, so any name here only means something to a
// program that embeds the engine and registers its own.
func checkExtensions(cfg *config.Config, reg *extension.Registry) error {
	for _, name := range cfg.Extensions {
		if _, ok := reg.Get(name); !ok {
			return fmt.Errorf("extensions: %q is not registered; the ahkx binary ships no extensions, this setting is for programs embedding the engine", name)
		}
	}
	return nil
}

func newLogger(w io.Writer, cfg *config.Config, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level() {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func openEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	opts := engine.OptionsFromConfig(cfg)
	opts.Logger = logger
	return newEngineFn(opts)
}

func maybeHandleCompletionCommand(args []string, stdout, stderr io.Writer) (bool, int) {
	if len(args) == 0 {
		return false, 0
	}

	switch args[0] {
	case "completion":
		return true, runCompletionCommand(args[1:], stdout, stderr)
	case "__complete":
		return true, runInternalCompletion(args[1:], stdout, stderr)
	default:
		return false, 0
	}
}

// exitCodeFor maps a call error onto an exit code and prints it.
func exitCodeFor(stderr io.Writer, err error) int {
	if err == nil {
		return ExitOK
	}
	switch {
	case engine.IsExecutionError(err), engine.IsTimeout(err), errors.Is(err, engine.ErrWindowNotFound):
		fmt.Fprintf(stderr, "ahkx: %s\n", strings.TrimSpace(err.Error()))
		return ExitCallErr
	case errors.Is(err, extension.ErrUnknownMethod), errors.Is(err, daemon.ErrUnknownFunction):
		fmt.Fprintf(stderr, "ahkx: %v\n", err)
		return ExitUsageErr
	default:
		fmt.Fprintf(stderr, "ahkx: %v\n", err)
		return ExitInternal
	}
}
