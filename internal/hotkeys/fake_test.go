package hotkeys

import (
	"os"
	"sync"

	"github.com/lydakis/ahkx/internal/process"
)

// fakeInterpreter serves lines pushed with emit until it is killed.
type fakeInterpreter struct {
	lines    chan string
	killed   chan struct{}
	killOnce sync.Once
	pid      int
	script   string
}

func newFakeInterpreter(pid int, script string) *fakeInterpreter {
	return &fakeInterpreter{
		lines:  make(chan string, 64),
		killed: make(chan struct{}),
		pid:    pid,
		script: script,
	}
}

func (f *fakeInterpreter) emit(line string) {
	f.lines <- line + "\n"
}

func (f *fakeInterpreter) ReadLine() []byte {
	select {
	case <-f.killed:
		return nil
	case line := <-f.lines:
		return []byte(line)
	}
}

func (f *fakeInterpreter) Kill() {
	f.killOnce.Do(func() { close(f.killed) })
}

func (f *fakeInterpreter) isKilled() bool {
	select {
	case <-f.killed:
		return true
	default:
		return false
	}
}

func (f *fakeInterpreter) PID() int { return f.pid }

func (f *fakeInterpreter) StderrTail() string { return "" }

func saveTransportHooks() func() {
	origStart := startInterpreterFn
	origResolve := resolveExecutableFn
	return func() {
		startInterpreterFn = origStart
		resolveExecutableFn = origResolve
	}
}

type fakes struct {
	mu    sync.Mutex
	procs []*fakeInterpreter
	// scripts holds the script contents each start was given.
	scripts []string
}

func (f *fakes) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.procs)
}

func (f *fakes) last() *fakeInterpreter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.procs[len(f.procs)-1]
}

func (f *fakes) lastScript() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scripts[len(f.scripts)-1]
}

func installFakes() *fakes {
	fs := &fakes{}
	resolveExecutableFn = func(string) (string, error) {
		return `C:\AutoHotkey\AutoHotkey.exe`, nil
	}
	startInterpreterFn = func(_ string, args []string, _ process.Options) (interpreter, error) {
		fs.mu.Lock()
		defer fs.mu.Unlock()
		path := args[len(args)-1]
		data, _ := os.ReadFile(path)
		p := newFakeInterpreter(2000+len(fs.procs), path)
		fs.procs = append(fs.procs, p)
		fs.scripts = append(fs.scripts, string(data))
		return p, nil
	}
	return fs
}
