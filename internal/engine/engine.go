// Package engine is the user-facing automation API. An Engine owns one
// daemon interpreter for request/response verbs and one hotkey interpreter
// for asynchronous triggers.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lydakis/ahkx/internal/bootstrap"
	"github.com/lydakis/ahkx/internal/config"
	"github.com/lydakis/ahkx/internal/daemon"
	"github.com/lydakis/ahkx/internal/extension"
	"github.com/lydakis/ahkx/internal/hotkeys"
	"github.com/lydakis/ahkx/internal/message"
	"github.com/lydakis/ahkx/internal/paths"
	"github.com/lydakis/ahkx/internal/transcript"
)

// Caller sends one function call to the interpreter. *daemon.Transport and
// *transcript.Replayer implement it.
type Caller = extension.Caller

// HotkeyOptions tunes the hotkey interpreter.
type HotkeyOptions struct {
	KeepaliveInterval time.Duration
	SilenceTimeout    time.Duration
	StopTimeout       time.Duration
}

// Options configures an Engine.
type Options struct {
	// Executable is an explicit interpreter path. Empty means resolve.
	Executable string
	// Extensions selects extensions by name from Registry. Nil means all.
	Extensions []string
	// Registry holds the extensions. Nil means extension.Default.
	Registry *extension.Registry
	// CallTimeout bounds each daemon call. Zero disables it.
	CallTimeout time.Duration
	// Transcript, when set, records every daemon call to this file.
	Transcript string
	// Caller replaces the daemon interpreter. Used for replay and tests.
	Caller  Caller
	Hotkeys HotkeyOptions
	Logger  *slog.Logger
}

// Engine is safe for concurrent use. Verbs are served one at a time by the
// daemon interpreter in call order.
type Engine struct {
	id         string
	runDir     string
	logger     *slog.Logger
	caller     Caller
	daemon     *daemon.Transport
	hotkeys    *hotkeys.Transport
	extensions []*extension.Extension
	registry   *extension.Registry
	recorder   *transcript.Recorder

	closeOnce sync.Once
	closeErr  error
	closed    chan struct{}
}

// New builds an engine. Neither interpreter starts until it is first
// needed.
func New(opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := opts.Registry
	if registry == nil {
		registry = extension.Default
	}
	exts, err := registry.Select(opts.Extensions)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	e := &Engine{
		id:         id,
		runDir:     paths.RunDir(id),
		logger:     logger.With("run", id),
		extensions: exts,
		registry:   registry,
		closed:     make(chan struct{}),
	}

	e.hotkeys = hotkeys.New(hotkeys.Options{
		Executable:        opts.Executable,
		ScratchDir:        e.runDir,
		KeepaliveInterval: opts.Hotkeys.KeepaliveInterval,
		SilenceTimeout:    opts.Hotkeys.SilenceTimeout,
		StopTimeout:       opts.Hotkeys.StopTimeout,
		Logger:            e.logger,
	})

	if opts.Caller != nil {
		e.caller = opts.Caller
		return e, nil
	}

	script, functions, err := renderDaemonScript(exts)
	if err != nil {
		return nil, err
	}
	var recorder daemon.Recorder
	if opts.Transcript != "" {
		rec, err := transcript.Create(opts.Transcript)
		if err != nil {
			return nil, err
		}
		e.recorder = rec
		recorder = rec
	}
	e.daemon = daemon.New(daemon.Options{
		Executable:  opts.Executable,
		Script:      script,
		ScratchDir:  e.runDir,
		Functions:   functions,
		CallTimeout: opts.CallTimeout,
		Recorder:    recorder,
		Logger:      e.logger,
	})
	e.caller = e.daemon
	return e, nil
}

func renderDaemonScript(exts []*extension.Extension) ([]byte, []string, error) {
	var s bootstrap.DaemonScript
	var functions []string
	for _, ext := range exts {
		s.Includes = append(s.Includes, ext.Includes()...)
		if frag := ext.ScriptFragment(); frag != "" {
			s.Fragments = append(s.Fragments, frag)
		}
		functions = append(functions, ext.Functions()...)
	}
	script, err := bootstrap.RenderDaemon(s)
	if err != nil {
		return nil, nil, err
	}
	return script, functions, nil
}

// OptionsFromConfig maps a loaded config onto engine options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Executable:  cfg.Executable,
		Extensions:  cfg.Extensions,
		CallTimeout: cfg.CallTimeoutDuration(),
		Transcript:  cfg.Transcript,
		Hotkeys: HotkeyOptions{
			KeepaliveInterval: cfg.Hotkeys.KeepaliveIntervalDuration(),
			SilenceTimeout:    cfg.Hotkeys.SilenceTimeoutDuration(),
			StopTimeout:       cfg.Hotkeys.StopTimeoutDuration(),
		},
	}
}

// Default loads the user's config file and builds an engine from it. It
// is never called implicitly.
func Default() (*Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", config.ExampleConfigPath(), err)
	}
	return New(OptionsFromConfig(cfg))
}

// ID returns the run id that names the engine's scratch directory.
func (e *Engine) ID() string { return e.id }

// Start launches the daemon interpreter now instead of on the first verb.
func (e *Engine) Start(ctx context.Context) error {
	if e.daemon == nil {
		return nil
	}
	return e.daemon.Start(ctx)
}

// Restart replaces the daemon interpreter with a fresh one. It is the only
// way to recover after a fatal transport error short of a new Engine.
func (e *Engine) Restart(ctx context.Context) error {
	if e.isClosed() {
		return ErrClosed
	}
	if e.daemon == nil {
		return nil
	}
	return e.daemon.Restart(ctx)
}

// PID returns the daemon interpreter's process id, or 0.
func (e *Engine) PID() int {
	if e.daemon == nil {
		return 0
	}
	return e.daemon.PID()
}

// Close stops both interpreters and removes the scratch directory.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		close(e.closed)
		var errs []error
		errs = append(errs, e.hotkeys.Stop())
		if e.daemon != nil {
			errs = append(errs, e.daemon.Close())
		}
		if e.recorder != nil {
			errs = append(errs, e.recorder.Close())
		}
		if err := os.RemoveAll(e.runDir); err != nil {
			errs = append(errs, fmt.Errorf("removing run directory: %w", err))
		}
		e.closeErr = errors.Join(errs...)
		e.logger.Debug("engine closed")
	})
	return e.closeErr
}

func (e *Engine) isClosed() bool {
	select {
	case <-e.closed:
		return true
	default:
		return false
	}
}

// FunctionCall sends a raw call and returns the undecoded response.
func (e *Engine) FunctionCall(ctx context.Context, name string, args ...string) (message.Response, error) {
	if e.isClosed() {
		return message.Response{}, ErrClosed
	}
	return e.caller.FunctionCall(ctx, name, trimArgs(args)...)
}

// trimArgs drops trailing empty arguments so the interpreter applies its
// own defaults.
func trimArgs(args []string) []string {
	n := len(args)
	for n > 0 && args[n-1] == "" {
		n--
	}
	return args[:n]
}

func call[T any](ctx context.Context, e *Engine, name string, args ...string) (T, error) {
	var zero T
	resp, err := e.FunctionCall(ctx, name, args...)
	if err != nil {
		return zero, err
	}
	return message.As[T](resp)
}

// callWindow is call for verbs whose NoValue result means the target
// window does not exist.
func callWindow[T any](ctx context.Context, e *Engine, name string, args ...string) (T, error) {
	var zero T
	resp, err := e.FunctionCall(ctx, name, args...)
	if err != nil {
		return zero, err
	}
	if resp.IsNoValue() {
		return zero, fmt.Errorf("%s: %w", name, ErrWindowNotFound)
	}
	return message.As[T](resp)
}

// callOptional is call for verbs whose NoValue result means "nothing found".
func callOptional[T any](ctx context.Context, e *Engine, name string, args ...string) (T, bool, error) {
	var zero T
	resp, err := e.FunctionCall(ctx, name, args...)
	if err != nil {
		return zero, false, err
	}
	if resp.IsNoValue() {
		return zero, false, nil
	}
	v, err := message.As[T](resp)
	return v, err == nil, err
}

// exec runs a verb that returns no value. Exception and Timeout responses
// still surface as errors.
func (e *Engine) exec(ctx context.Context, name string, args ...string) error {
	resp, err := e.FunctionCall(ctx, name, args...)
	if err != nil {
		return err
	}
	_, err = resp.Unpack()
	return err
}

func itoa(n int) string { return strconv.Itoa(n) }

func boolArg(b bool) string {
	if b {
		return "1"
	}
	return ""
}

func onOff(b bool) string {
	if b {
		return "On"
	}
	return "Off"
}

// seconds formats d for interpreter arguments measured in seconds. Zero
// leaves the argument empty.
func seconds(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// millis formats d in milliseconds. Zero leaves the argument empty and a
// negative duration means "none" (-1).
func millis(d time.Duration) string {
	switch {
	case d == 0:
		return ""
	case d < 0:
		return "-1"
	default:
		return strconv.FormatInt(d.Milliseconds(), 10)
	}
}
