//go:build unix

package process

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// killGuard kills the child's whole process group, so helpers the
// interpreter spawned go with it.
type killGuard struct{}

func prepareCommand(cmd *exec.Cmd) {
	attr := &syscall.SysProcAttr{Setpgid: true}
	setDeathSignal(attr)
	cmd.SysProcAttr = attr
}

func attachGuard(*exec.Cmd) (*killGuard, error) {
	return &killGuard{}, nil
}

func (g *killGuard) kill(pid int) {
	if g == nil || pid <= 0 {
		return
	}
	_ = unix.Kill(-pid, unix.SIGKILL)
}

func (g *killGuard) release() {}
