//go:build windows

package procrun

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// prepareCommand sets the priority class and passes the command line quoted
// the same way it is logged.
func prepareCommand(cmd *exec.Cmd, spec Spec) {
	var flags uint32 = windows.CREATE_NO_WINDOW
	switch spec.Priority {
	case PriorityLow:
		flags |= windows.BELOW_NORMAL_PRIORITY_CLASS
	case PriorityHigh:
		flags |= windows.ABOVE_NORMAL_PRIORITY_CLASS
	default:
		flags |= windows.NORMAL_PRIORITY_CLASS
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: flags,
		CmdLine:       CommandLine(spec.Command),
	}
}

// killProcess kills the child. Descendants are not tracked on Windows.
func killProcess(cmd *exec.Cmd, group bool) error {
	return cmd.Process.Kill()
}

func afterStart(pid int, p Priority) error {
	return nil
}
