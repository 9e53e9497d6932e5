// Package daemon runs the request/response dialogue with the primary
// interpreter process.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/lydakis/ahkx/internal/bootstrap"
	"github.com/lydakis/ahkx/internal/message"
	"github.com/lydakis/ahkx/internal/process"
)

var (
	// ErrTransportDead reports that the interpreter died or the stream was
	// corrupted. The transport must be recreated or restarted.
	ErrTransportDead = errors.New("interpreter transport is dead")
	// ErrUnknownFunction reports a call to a function the bootstrap script
	// does not define.
	ErrUnknownFunction = errors.New("unknown interpreter function")
)

// interpreter is the part of process.Handle the transport uses.
type interpreter interface {
	Write(p []byte) error
	Flush() error
	ReadLine() []byte
	Kill()
	PID() int
	StderrTail() string
}

var (
	startInterpreterFn = func(exe string, args []string, opts process.Options) (interpreter, error) {
		return process.Start(exe, args, opts)
	}
	resolveExecutableFn = bootstrap.ResolveExecutable
)

// Recorder receives every completed request/response pair.
type Recorder interface {
	Record(req message.Request, resp message.Response) error
}

// Options configures a Transport.
type Options struct {
	// Executable is an explicit interpreter path; empty means resolve.
	Executable string
	// Script is the rendered bootstrap script.
	Script []byte
	// ScratchDir receives the script file.
	ScratchDir string
	// Registry decodes responses; nil means message.Default.
	Registry *message.Registry
	// Functions extends the built-in handler names with extension functions.
	Functions []string
	// CallTimeout bounds each call; zero disables the deadline.
	CallTimeout time.Duration
	Recorder    Recorder
	Logger      *slog.Logger
}

// Transport serializes calls to one interpreter. Callers are served one at
// a time in arrival order; each call writes one request line and reads
// exactly one response frame.
type Transport struct {
	opts     Options
	registry *message.Registry
	extra    map[string]bool
	logger   *slog.Logger

	// turn is a one-slot semaphore held for the whole request/response pair.
	turn chan struct{}

	mu         sync.Mutex
	state      State
	proc       interpreter
	scriptPath string
}

// New returns an unstarted transport. The interpreter starts on the first
// call or on Start.
func New(opts Options) *Transport {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := opts.Registry
	if registry == nil {
		registry = message.Default
	}
	extra := make(map[string]bool, len(opts.Functions))
	for _, name := range opts.Functions {
		extra[name] = true
	}
	return &Transport{
		opts:     opts,
		registry: registry,
		extra:    extra,
		logger:   logger.With("component", "daemon"),
		turn:     make(chan struct{}, 1),
	}
}

// State returns the current lifecycle stage.
func (t *Transport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// PID returns the interpreter's process id, or 0 when not running.
func (t *Transport) PID() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.proc == nil {
		return 0
	}
	return t.proc.PID()
}

// Known reports whether name is a callable function.
func (t *Transport) Known(name string) bool {
	if _, ok := bootstrap.LookupFunction(name); ok {
		return true
	}
	return t.extra[name]
}

func (t *Transport) acquire(ctx context.Context) error {
	select {
	case t.turn <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Transport) release() {
	<-t.turn
}

// Start launches the interpreter if it is not running yet.
func (t *Transport) Start(ctx context.Context) error {
	if err := t.acquire(ctx); err != nil {
		return err
	}
	defer t.release()
	_, err := t.ensureStarted()
	return err
}

// Restart kills the current interpreter, if any, and starts a fresh one.
// It also revives a Killed transport.
func (t *Transport) Restart(ctx context.Context) error {
	if err := t.acquire(ctx); err != nil {
		return err
	}
	defer t.release()

	t.mu.Lock()
	proc := t.proc
	t.proc = nil
	t.state = StateUninitialized
	t.mu.Unlock()
	if proc != nil {
		proc.Kill()
	}
	t.logger.Info("restarting interpreter")
	_, err := t.ensureStarted()
	return err
}

// Close kills the interpreter and moves the transport to Killed.
func (t *Transport) Close() error {
	t.kill("closed")
	t.mu.Lock()
	path := t.scriptPath
	t.scriptPath = ""
	t.mu.Unlock()
	if path != "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing daemon script: %w", err)
		}
	}
	return nil
}

func (t *Transport) kill(reason string) {
	t.mu.Lock()
	proc := t.proc
	t.proc = nil
	t.state = StateKilled
	t.mu.Unlock()
	if proc != nil {
		t.logger.Debug("killing interpreter", "reason", reason, "pid", proc.PID())
		proc.Kill()
	}
}

// killProc kills proc and moves the transport to Killed only if proc is
// still the current interpreter. A late kill aimed at a replaced
// interpreter leaves its successor alone.
func (t *Transport) killProc(proc interpreter, reason string) {
	t.mu.Lock()
	current := t.proc == proc
	if current {
		t.proc = nil
		t.state = StateKilled
	}
	t.mu.Unlock()
	t.logger.Debug("killing interpreter", "reason", reason, "pid", proc.PID(), "current", current)
	proc.Kill()
}

// ensureStarted must be called while holding the turn.
func (t *Transport) ensureStarted() (interpreter, error) {
	t.mu.Lock()
	switch t.state {
	case StateReady:
		proc := t.proc
		t.mu.Unlock()
		return proc, nil
	case StateKilled:
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: transport was shut down", ErrTransportDead)
	}
	t.state = StateStarting
	t.mu.Unlock()

	proc, err := t.spawn()

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.state = StateUninitialized
		return nil, err
	}
	if t.state == StateKilled {
		// Closed while starting.
		proc.Kill()
		return nil, fmt.Errorf("%w: transport was shut down", ErrTransportDead)
	}
	t.proc = proc
	t.state = StateReady
	return proc, nil
}

func (t *Transport) spawn() (interpreter, error) {
	exe, err := resolveExecutableFn(t.opts.Executable)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	path := t.scriptPath
	t.mu.Unlock()
	if path == "" {
		dir := t.opts.ScratchDir
		if dir == "" {
			dir = os.TempDir()
		}
		path, err = bootstrap.WriteScript(dir, "daemon-*.ahk", t.opts.Script)
		if err != nil {
			return nil, err
		}
		t.mu.Lock()
		t.scriptPath = path
		t.mu.Unlock()
	}

	proc, err := startInterpreterFn(exe, bootstrap.InterpreterArgs(path), process.Options{Logger: t.logger})
	if err != nil {
		return nil, fmt.Errorf("starting daemon interpreter: %w", err)
	}
	t.logger.Info("interpreter ready", "exe", exe, "pid", proc.PID())
	return proc, nil
}

// FunctionCall sends one request and returns its response. An Exception
// response is returned as a value; its error surfaces from Unpack. Errors
// returned here are transport level: unknown function, framing, or a dead
// interpreter, and all but the first leave the transport Killed.
func (t *Transport) FunctionCall(ctx context.Context, name string, args ...string) (message.Response, error) {
	if !t.Known(name) {
		return message.Response{}, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	if err := t.acquire(ctx); err != nil {
		return message.Response{}, err
	}
	defer t.release()

	proc, err := t.ensureStarted()
	if err != nil {
		return message.Response{}, err
	}

	if t.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.opts.CallTimeout)
		defer cancel()
	}
	// Abandoning a call mid-read would desynchronize the stream, so a
	// deadline kills the interpreter instead.
	stop := context.AfterFunc(ctx, func() { t.killProc(proc, "call deadline exceeded") })
	defer stop()

	req := message.Request{Function: name, Args: args}
	if err := proc.Write(req.Encode()); err != nil {
		return message.Response{}, t.dead(ctx, proc, "writing request", err)
	}
	if err := proc.Flush(); err != nil {
		return message.Response{}, t.dead(ctx, proc, "writing request", err)
	}

	resp, err := t.registry.DecodeFrom(proc)
	if err != nil {
		return message.Response{}, t.dead(ctx, proc, "reading response to "+name, err)
	}
	// The deadline kill may have started just as the frame arrived. The
	// interpreter is gone then, so the call is reported as dead.
	if !stop() {
		return message.Response{}, t.dead(ctx, proc, "reading response to "+name, context.Cause(ctx))
	}

	if t.opts.Recorder != nil {
		if rerr := t.opts.Recorder.Record(req, resp); rerr != nil {
			t.logger.Warn("recording transcript", "error", rerr)
		}
	}
	return resp, nil
}

func (t *Transport) dead(ctx context.Context, proc interpreter, op string, cause error) error {
	stderr := proc.StderrTail()
	t.killProc(proc, op+" failed")

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %s: %w", ErrTransportDead, op, ctxErr)
	}
	if errors.Is(cause, io.ErrUnexpectedEOF) {
		cause = errors.New("interpreter closed its output")
	}
	if stderr != "" {
		t.logger.Error("interpreter died", "op", op, "stderr", stderr)
		return fmt.Errorf("%w: %s: %w (stderr: %s)", ErrTransportDead, op, cause, stderr)
	}
	return fmt.Errorf("%w: %s: %w", ErrTransportDead, op, cause)
}
