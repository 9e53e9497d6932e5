// Package process owns one child interpreter: its pipes, its lifetime, and
// the guarantee that it dies with the host.
package process

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"
)

var execCommandFn = exec.Command

const (
	stderrTailLines = 20
	killWaitTimeout = 3 * time.Second
)

// Options configures Start.
type Options struct {
	Dir    string
	Env    []string
	Logger *slog.Logger
}

// Handle is a running child interpreter.
type Handle struct {
	cmd    *exec.Cmd
	pid    int
	logger *slog.Logger

	stdin  *os.File
	writer *bufio.Writer
	stdout *os.File
	reader *bufio.Reader
	wmu    sync.Mutex
	rmu    sync.Mutex

	stderr *tail
	guard  *killGuard

	killOnce sync.Once
	exited   chan struct{}
	waitErr  error
}

// Start spawns exe with args. Stdin, stdout and stderr are piped; stderr is
// drained in the background and its last lines kept for diagnostics.
func Start(exe string, args []string, opts Options) (*Handle, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cmd := execCommandFn(exe, args...)
	cmd.Dir = opts.Dir
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}
	prepareCommand(cmd)

	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdin pipe: %w", err)
	}
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		closeAll(stdinR, stdinW)
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		closeAll(stdinR, stdinW, stdoutR, stdoutW)
		return nil, fmt.Errorf("creating stderr pipe: %w", err)
	}
	cmd.Stdin = stdinR
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	if err := cmd.Start(); err != nil {
		closeAll(stdinR, stdinW, stdoutR, stdoutW, stderrR, stderrW)
		return nil, fmt.Errorf("starting %s: %w", exe, err)
	}
	// The child holds its own copies now.
	closeAll(stdinR, stdoutW, stderrW)

	h := &Handle{
		cmd:    cmd,
		pid:    cmd.Process.Pid,
		logger: logger.With("pid", cmd.Process.Pid),
		stdin:  stdinW,
		writer: bufio.NewWriter(stdinW),
		stdout: stdoutR,
		reader: bufio.NewReader(stdoutR),
		stderr: newTail(stderrTailLines),
		exited: make(chan struct{}),
	}

	guard, err := attachGuard(cmd)
	if err != nil {
		h.logger.Warn("child will not be killed automatically if the host crashes", "error", err)
	}
	h.guard = guard

	track(h)
	go h.drainStderr(stderrR)
	go func() {
		h.waitErr = cmd.Wait()
		close(h.exited)
	}()

	h.logger.Debug("interpreter started", "exe", exe, "args", args)
	return h, nil
}

// PID returns the child's process id.
func (h *Handle) PID() int {
	return h.pid
}

// Write buffers p for the child's stdin.
func (h *Handle) Write(p []byte) error {
	h.wmu.Lock()
	defer h.wmu.Unlock()
	if _, err := h.writer.Write(p); err != nil {
		return fmt.Errorf("writing to interpreter stdin: %w", err)
	}
	return nil
}

// Flush sends buffered stdin bytes to the child.
func (h *Handle) Flush() error {
	h.wmu.Lock()
	defer h.wmu.Unlock()
	if err := h.writer.Flush(); err != nil {
		return fmt.Errorf("flushing interpreter stdin: %w", err)
	}
	return nil
}

// ReadLine returns the next line of stdout including its newline. At end of
// stream it returns whatever partial line remains, or nothing.
func (h *Handle) ReadLine() []byte {
	h.rmu.Lock()
	defer h.rmu.Unlock()
	line, err := h.reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		h.logger.Debug("interpreter stdout read failed", "error", err)
	}
	return line
}

// StderrTail returns the most recent stderr lines.
func (h *Handle) StderrTail() string {
	return h.stderr.String()
}

// Exited is closed once the child has been reaped.
func (h *Handle) Exited() <-chan struct{} {
	return h.exited
}

// Kill terminates the child and releases its pipes. It is safe to call more
// than once and from several goroutines.
func (h *Handle) Kill() {
	h.killOnce.Do(func() {
		untrack(h)
		_ = h.stdin.Close()
		h.guard.kill(h.pid)
		if err := h.cmd.Process.Kill(); err != nil {
			select {
			case <-h.exited:
			default:
				h.logger.Debug("killing interpreter", "error", err)
			}
		}
		select {
		case <-h.exited:
		case <-time.After(killWaitTimeout):
			h.logger.Warn("interpreter did not exit after kill", "timeout", killWaitTimeout)
		}
		h.guard.release()
		_ = h.stdout.Close()
		h.logger.Debug("interpreter stopped", "wait", h.waitErr)
	})
}

func (h *Handle) drainStderr(r *os.File) {
	defer r.Close()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		h.stderr.add(line)
		h.logger.Debug("interpreter stderr", "line", line)
	}
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
