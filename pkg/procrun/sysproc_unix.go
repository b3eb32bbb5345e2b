//go:build !windows

package procrun

import (
	"errors"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

func prepareCommand(cmd *exec.Cmd, spec Spec) {
	if spec.Group {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	}
}

// killProcess kills the child, or its whole process group when it leads one.
func killProcess(cmd *exec.Cmd, group bool) error {
	if !group {
		return cmd.Process.Kill()
	}
	err := unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	if errors.Is(err, unix.ESRCH) {
		return cmd.Process.Kill()
	}
	return err
}

// afterStart applies the requested priority as a nice value.
func afterStart(pid int, p Priority) error {
	var nice int
	switch p {
	case PriorityLow:
		nice = 10
	case PriorityHigh:
		nice = -5
	default:
		return nil
	}
	return unix.Setpriority(unix.PRIO_PROCESS, pid, nice)
}
