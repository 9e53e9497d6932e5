package daemon

import (
	"bytes"
	"errors"
	"strings"
	"sync"

	"github.com/lydakis/ahkx/internal/message"
	"github.com/lydakis/ahkx/internal/process"
)

// fakeInterpreter answers each flushed request line with respond(line).
// An empty answer leaves the reader blocked until Kill.
type fakeInterpreter struct {
	mu       sync.Mutex
	respond  func(line string) string
	out      bytes.Buffer
	pending  bytes.Buffer
	requests []string
	killed   chan struct{}
	killOnce sync.Once
	pid      int
}

func newFakeInterpreter(pid int, respond func(line string) string) *fakeInterpreter {
	return &fakeInterpreter{respond: respond, killed: make(chan struct{}), pid: pid}
}

func (f *fakeInterpreter) Write(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	select {
	case <-f.killed:
		return errors.New("write on killed interpreter")
	default:
	}
	f.out.Write(p)
	return nil
}

func (f *fakeInterpreter) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for {
		line, err := f.out.ReadString('\n')
		if err != nil {
			f.out.WriteString(line)
			return nil
		}
		line = strings.TrimSuffix(line, "\n")
		f.requests = append(f.requests, line)
		f.pending.WriteString(f.respond(line))
	}
}

func (f *fakeInterpreter) ReadLine() []byte {
	f.mu.Lock()
	if f.pending.Len() > 0 {
		line, _ := f.pending.ReadBytes('\n')
		f.mu.Unlock()
		return line
	}
	f.mu.Unlock()
	<-f.killed
	return nil
}

func (f *fakeInterpreter) Kill() {
	f.killOnce.Do(func() { close(f.killed) })
}

func (f *fakeInterpreter) PID() int { return f.pid }

func (f *fakeInterpreter) StderrTail() string { return "" }

func (f *fakeInterpreter) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeInterpreter) isKilled() bool {
	select {
	case <-f.killed:
		return true
	default:
		return false
	}
}

func frame(k *message.Kind, payload string) string {
	return string(message.Encode(message.NewResponse(k, payload)))
}

type startCall struct {
	exe  string
	args []string
}

func saveTransportHooks() func() {
	origStart := startInterpreterFn
	origResolve := resolveExecutableFn
	return func() {
		startInterpreterFn = origStart
		resolveExecutableFn = origResolve
	}
}

// installFakes makes every start return a new fake built by respond.
func installFakes(respond func(line string) string) (*[]*fakeInterpreter, *[]startCall) {
	var mu sync.Mutex
	fakes := &[]*fakeInterpreter{}
	starts := &[]startCall{}
	resolveExecutableFn = func(explicit string) (string, error) {
		if explicit != "" {
			return explicit, nil
		}
		return `C:\AutoHotkey\AutoHotkey.exe`, nil
	}
	startInterpreterFn = func(exe string, args []string, _ process.Options) (interpreter, error) {
		mu.Lock()
		defer mu.Unlock()
		f := newFakeInterpreter(1000+len(*fakes), respond)
		*fakes = append(*fakes, f)
		*starts = append(*starts, startCall{exe: exe, args: args})
		return f, nil
	}
	return fakes, starts
}
