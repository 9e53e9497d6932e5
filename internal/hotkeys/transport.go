// Package hotkeys runs the second interpreter, which reports hotkey,
// hotstring, and clipboard events back to the host as trigger lines.
package hotkeys

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lydakis/ahkx/internal/bootstrap"
	"github.com/lydakis/ahkx/internal/message"
	"github.com/lydakis/ahkx/internal/process"
)

const (
	defaultKeepaliveInterval = time.Second
	defaultSilenceTimeout    = 10 * time.Second
	defaultStopTimeout       = 5 * time.Second
)

type interpreter interface {
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

// Options configures a Transport.
type Options struct {
	Executable string
	ScratchDir string
	// KeepaliveInterval is how often the interpreter emits a keepalive line.
	KeepaliveInterval time.Duration
	// SilenceTimeout is how long the listener may go without any line before
	// it logs a warning. Negative disables the watchdog.
	SilenceTimeout time.Duration
	// StopTimeout bounds how long Stop waits for the workers.
	StopTimeout time.Duration
	Logger      *slog.Logger
}

// Transport owns the registered bindings and, while started, the interpreter
// that watches for them.
type Transport struct {
	opts   Options
	logger *slog.Logger

	mu        sync.Mutex
	seq       uint64
	bindings  map[string]*binding
	clipboard *clipboardBinding
	run       *run
}

// New returns a stopped transport with no bindings.
func New(opts Options) *Transport {
	if opts.KeepaliveInterval <= 0 {
		opts.KeepaliveInterval = defaultKeepaliveInterval
	}
	if opts.SilenceTimeout == 0 {
		opts.SilenceTimeout = defaultSilenceTimeout
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = defaultStopTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		opts:     opts,
		logger:   logger.With("component", "hotkeys"),
		bindings: make(map[string]*binding),
	}
}

// AddHotkey registers h, replacing any hotkey with the same key name.
func (t *Transport) AddHotkey(h Hotkey) error {
	if err := h.validate(); err != nil {
		return err
	}
	return t.put(&binding{id: HotkeyID(h.KeyName), hotkey: &h})
}

// AddHotstring registers hs, replacing any hotstring with the same trigger.
func (t *Transport) AddHotstring(hs Hotstring) error {
	if err := hs.validate(); err != nil {
		return err
	}
	return t.put(&binding{id: HotstringID(hs.Trigger), hotstring: &hs})
}

func (t *Transport) put(b *binding) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.bindings[b.id]; ok {
		t.logger.Warn("replacing existing binding", "binding", prev.String(), "id", b.id)
	}
	t.seq++
	b.seq = t.seq
	t.bindings[b.id] = b
	return t.restartIfRunningLocked()
}

// RemoveHotkey unregisters the hotkey for keyName.
func (t *Transport) RemoveHotkey(keyName string) error {
	return t.remove(HotkeyID(keyName), "hotkey "+keyName)
}

// RemoveHotstring unregisters the hotstring for trigger.
func (t *Transport) RemoveHotstring(trigger string) error {
	return t.remove(HotstringID(trigger), "hotstring "+trigger)
}

func (t *Transport) remove(id, what string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.bindings[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, what)
	}
	delete(t.bindings, id)
	return t.restartIfRunningLocked()
}

// ClearHotkeys removes every hotkey.
func (t *Transport) ClearHotkeys() error {
	return t.clear(func(b *binding) bool { return b.hotkey != nil })
}

// ClearHotstrings removes every hotstring.
func (t *Transport) ClearHotstrings() error {
	return t.clear(func(b *binding) bool { return b.hotstring != nil })
}

func (t *Transport) clear(match func(*binding) bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for id, b := range t.bindings {
		if match(b) {
			delete(t.bindings, id)
			removed++
		}
	}
	if removed == 0 {
		return nil
	}
	return t.restartIfRunningLocked()
}

// OnClipboardChange sets the clipboard callback. A nil callback removes it.
func (t *Transport) OnClipboardChange(cb ClipboardCallback, handler ExceptionHandler) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cb == nil {
		if t.clipboard == nil {
			return nil
		}
		t.clipboard = nil
		return t.restartIfRunningLocked()
	}
	if t.clipboard != nil {
		t.logger.Warn("replacing clipboard change callback")
	}
	t.clipboard = &clipboardBinding{callback: cb, handler: handler}
	return t.restartIfRunningLocked()
}

// IDs returns the ids of every registered binding, sorted.
func (t *Transport) IDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, 0, len(t.bindings))
	for id := range t.bindings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Running reports whether the interpreter is started.
func (t *Transport) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.run != nil
}

// Start renders the trigger script and launches the interpreter, listener
// and dispatcher. Starting a running transport does nothing.
func (t *Transport) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.run != nil {
		return nil
	}
	return t.startLocked()
}

// Stop kills the interpreter and waits, bounded by StopTimeout, for the
// listener and dispatcher to exit. Callbacks already running finish on
// their own; queued triggers are dropped.
func (t *Transport) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopLocked()
}

// Restart is Stop followed by Start.
func (t *Transport) Restart(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.stopLocked(); err != nil {
		return err
	}
	return t.startLocked()
}

func (t *Transport) restartIfRunningLocked() error {
	if t.run == nil {
		return nil
	}
	t.logger.Debug("bindings changed, restarting hotkey interpreter")
	if err := t.stopLocked(); err != nil {
		return err
	}
	return t.startLocked()
}

func (t *Transport) startLocked() error {
	script, err := renderScript(t.bindings, t.clipboard != nil, t.opts.KeepaliveInterval)
	if err != nil {
		return err
	}
	exe, err := resolveExecutableFn(t.opts.Executable)
	if err != nil {
		return err
	}
	dir := t.opts.ScratchDir
	if dir == "" {
		dir = os.TempDir()
	}
	path, err := bootstrap.WriteScript(dir, "hotkeys-*.ahk", script)
	if err != nil {
		return err
	}
	proc, err := startInterpreterFn(exe, bootstrap.InterpreterArgs(path), process.Options{Logger: t.logger})
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("starting hotkey interpreter: %w", err)
	}

	callbacks := make(map[string]*binding, len(t.bindings))
	for id, b := range t.bindings {
		callbacks[id] = b
	}
	r := &run{
		proc:           proc,
		script:         path,
		queue:          newQueue(),
		callbacks:      callbacks,
		clipboard:      t.clipboard,
		running:        true,
		listenerDone:   make(chan struct{}),
		dispatcherDone: make(chan struct{}),
		logger:         t.logger.With("pid", proc.PID()),
	}
	r.watchdog = newWatchdog(t.opts.SilenceTimeout, func(d time.Duration) {
		r.logger.Warn("hotkey interpreter has been silent", "for", d)
	})
	r.watchdog.Touch()

	go r.listen()
	go r.dispatch()
	t.run = r
	t.logger.Info("hotkey interpreter started", "bindings", len(callbacks), "clipboard", t.clipboard != nil)
	return nil
}

func (t *Transport) stopLocked() error {
	r := t.run
	if r == nil {
		return nil
	}
	t.run = nil

	r.gate.Lock()
	r.running = false
	r.gate.Unlock()
	r.queue.push(event{stop: true})
	r.proc.Kill()
	r.watchdog.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), t.opts.StopTimeout)
	defer cancel()
	for _, w := range []struct {
		name string
		done <-chan struct{}
	}{{"listener", r.listenerDone}, {"dispatcher", r.dispatcherDone}} {
		select {
		case <-w.done:
		case <-ctx.Done():
			t.logger.Warn("hotkey worker did not stop in time", "worker", w.name, "timeout", t.opts.StopTimeout)
		}
	}

	if err := os.Remove(r.script); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing hotkey script: %w", err)
	}
	t.logger.Info("hotkey interpreter stopped")
	return nil
}

// run is one started interpreter and its workers.
type run struct {
	proc      interpreter
	script    string
	queue     *queue
	callbacks map[string]*binding
	clipboard *clipboardBinding
	watchdog  *watchdog
	logger    *slog.Logger

	// gate orders the running flag against dispatch decisions.
	gate    sync.Mutex
	running bool

	listenerDone   chan struct{}
	dispatcherDone chan struct{}
}

func (r *run) isRunning() bool {
	r.gate.Lock()
	defer r.gate.Unlock()
	return r.running
}

func (r *run) listen() {
	defer close(r.listenerDone)
	for {
		raw := r.proc.ReadLine()
		if len(raw) == 0 {
			if r.isRunning() {
				r.logger.Warn("hotkey interpreter exited", "stderr", r.proc.StderrTail())
			}
			return
		}
		r.watchdog.Touch()
		line := strings.TrimRight(string(raw), "\r\n")
		if line == "" || line == message.Sentinel {
			continue
		}
		r.queue.push(event{line: line})
	}
}

func (r *run) dispatch() {
	defer close(r.dispatcherDone)
	for {
		ev := r.queue.pop()
		if ev.stop {
			return
		}
		r.gate.Lock()
		if !r.running {
			r.gate.Unlock()
			return
		}
		r.route(ev.line)
		r.gate.Unlock()
	}
}

// route must be called with gate held.
func (r *run) route(line string) {
	if rest, ok := strings.CutPrefix(line, message.ClipboardMarker); ok {
		if r.clipboard == nil {
			r.logger.Warn("clipboard change with no callback registered")
			return
		}
		changeType, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			r.logger.Warn("malformed clipboard change line", "line", line)
			return
		}
		cb := r.clipboard.callback
		r.invoke("clipboard", func() error { return cb(changeType) }, r.clipboard.handler)
		return
	}

	b, ok := r.callbacks[line]
	if !ok {
		r.logger.Warn("unknown trigger id", "id", line)
		return
	}
	cb := b.callback()
	if cb == nil {
		return
	}
	r.invoke(b.id, cb, b.handler())
}

func (r *run) invoke(id string, fn func() error, handler ExceptionHandler) {
	go func() {
		err := callSafely(id, fn)
		if err == nil {
			return
		}
		if handler == nil {
			r.logger.Error("hotkey callback failed", "id", id, "error", err)
			return
		}
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error("hotkey exception handler panicked", "id", id, "panic", p)
			}
		}()
		handler(id, err)
	}()
}

func callSafely(id string, fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &CallbackError{ID: id, Panic: p}
		}
	}()
	if err := fn(); err != nil {
		return &CallbackError{ID: id, Err: err}
	}
	return nil
}
