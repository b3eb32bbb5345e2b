package workenv

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/jlaunch/pkg/container"
)

// existingAncestor walks up from path to the first directory that exists.
func existingAncestor(path string) string {
	for {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}

// CheckFreeSpace returns container.ErrFreeSpace when the filesystem holding
// dir has less than required bytes available. Failure to query the
// filesystem is logged and tolerated.
func CheckFreeSpace(dir string, required uint64, logger hclog.Logger) error {
	if required == 0 {
		return nil
	}
	target := existingAncestor(dir)
	available, err := availableSpace(target)
	if err != nil {
		logger.Debug("⚠️ Could not query free space", "path", target, "error", err)
		return nil
	}
	logger.Trace("💾 Free space", "path", target, "available", available, "required", required)
	if available < required {
		return fmt.Errorf("%w at %s: %d bytes required, %d available", container.ErrFreeSpace, dir, required, available)
	}
	return nil
}

// SpaceChecker adapts CheckFreeSpace for container.ResourceReader.
func SpaceChecker(logger hclog.Logger) container.SpaceChecker {
	return func(dir string, required uint64) error {
		return CheckFreeSpace(dir, required, logger)
	}
}
