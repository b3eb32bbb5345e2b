//go:build !windows

package workenv

import "golang.org/x/sys/unix"

// availableSpace returns available disk space in bytes for Unix systems
func availableSpace(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return uint64(stat.Bavail) * uint64(stat.Bsize), nil
}
