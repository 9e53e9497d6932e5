package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/lydakis/ahkx/internal/config"
	"github.com/lydakis/ahkx/internal/engine"
	"github.com/lydakis/ahkx/internal/message"
)

type scriptedCaller struct {
	mu      sync.Mutex
	calls   []string
	replies map[string]message.Response
}

func (c *scriptedCaller) FunctionCall(_ context.Context, name string, args ...string) (message.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, message.Request{Function: name, Args: args}.String())
	if resp, ok := c.replies[name]; ok {
		return resp, nil
	}
	return message.NoValueResponse(), nil
}

func (c *scriptedCaller) lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

type cliHarness struct {
	caller *scriptedCaller
	stdin  *strings.Reader
	out    bytes.Buffer
	errOut bytes.Buffer
}

// installCLIFakes swaps the engine, config loader, and standard streams for
// the duration of the test.
func installCLIFakes(t *testing.T, replies map[string]message.Response, stdin string) *cliHarness {
	t.Helper()
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	h := &cliHarness{
		caller: &scriptedCaller{replies: replies},
		stdin:  strings.NewReader(stdin),
	}

	oldEngine := newEngineFn
	oldLoad := loadConfigFn
	oldIn, oldOut, oldErr := rootStdin, rootStdout, rootStderr
	oldTerminal := stdinIsTerminalFn
	t.Cleanup(func() {
		newEngineFn = oldEngine
		loadConfigFn = oldLoad
		rootStdin, rootStdout, rootStderr = oldIn, oldOut, oldErr
		stdinIsTerminalFn = oldTerminal
	})

	newEngineFn = func(opts engine.Options) (*engine.Engine, error) {
		opts.Caller = h.caller
		return engine.New(opts)
	}
	loadConfigFn = func(string) (*config.Config, error) { return &config.Config{}, nil }
	rootStdin = h.stdin
	rootStdout = &h.out
	rootStderr = &h.errOut
	stdinIsTerminalFn = func() bool { return false }
	return h
}
