//go:build !windows

package workenv

import (
	"errors"

	"golang.org/x/sys/unix"
)

// IsProcessRunning checks if a process with given PID is still running
func IsProcessRunning(pid int) bool {
	err := unix.Kill(pid, 0)
	// EPERM means the process exists but belongs to someone else.
	return err == nil || errors.Is(err, unix.EPERM)
}
