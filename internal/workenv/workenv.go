// Package workenv manages the launcher's temporary work directory
package workenv

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/jlaunch/pkg/container"
)

// TempPrefix starts the name of every random work directory.
const TempPrefix = ".jlaunch-"

// TempSuffix ends the name of every random work directory.
const TempSuffix = ".tmp"

// Workenv is a directory the launcher extracts into.
type Workenv struct {
	Dir string
	// Created is true when the launcher created Dir and owns its removal.
	Created bool
}

// TempRoot returns the directory random work directories are created in.
func TempRoot(override string) string {
	if override != "" {
		return override
	}
	if dir := os.Getenv("JLAUNCH_TMPDIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// RandomName returns a fresh work directory name tagged with the current pid.
func RandomName() string {
	return fmt.Sprintf("%s%d-%s%s", TempPrefix, os.Getpid(), uuid.NewString()[:8], TempSuffix)
}

// Create prepares the work directory. With random set a new subdirectory of
// base is used; otherwise base itself is the work directory.
func Create(base string, random bool, logger hclog.Logger) (*Workenv, error) {
	dir := base
	if random {
		dir = filepath.Join(base, RandomName())
	}
	abs, err := filepath.Abs(dir)
	if err == nil {
		dir = abs
	}

	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return nil, fmt.Errorf("%w: %s exists and is not a directory", container.ErrIO, dir)
	case err == nil:
		logger.Debug("📁 Using existing work directory", "path", dir)
		return &Workenv{Dir: dir}, nil
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("%w: stat %s: %v", container.ErrIO, dir, err)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", container.ErrIO, dir, err)
	}
	logger.Debug("📁 Created work directory", "path", dir)
	return &Workenv{Dir: dir, Created: true}, nil
}

// Remove deletes the work directory if the launcher created it.
func (w *Workenv) Remove(logger hclog.Logger) {
	if w == nil || !w.Created {
		return
	}
	if err := os.RemoveAll(w.Dir); err != nil {
		logger.Debug("⚠️ Failed to remove work directory", "path", w.Dir, "error", err)
		return
	}
	logger.Debug("🧹 Removed work directory", "path", w.Dir)
}

// ownerPid extracts the pid from a random work directory name.
func ownerPid(name string) (int, bool) {
	if !strings.HasPrefix(name, TempPrefix) || !strings.HasSuffix(name, TempSuffix) {
		return 0, false
	}
	rest := strings.TrimPrefix(name, TempPrefix)
	dash := strings.IndexByte(rest, '-')
	if dash <= 0 {
		return 0, false
	}
	pid, err := strconv.Atoi(rest[:dash])
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// CleanupStale removes work directories in base left behind by launchers
// that are no longer running.
func CleanupStale(base string, logger hclog.Logger) error {
	entries, err := os.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	self := os.Getpid()
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pid, ok := ownerPid(entry.Name())
		if !ok || pid == self || IsProcessRunning(pid) {
			continue
		}
		stale := filepath.Join(base, entry.Name())
		logger.Info("🧹 Cleaning up stale work directory from dead process", "pid", pid, "path", stale)
		if err := os.RemoveAll(stale); err != nil {
			logger.Debug("⚠️ Failed to remove stale directory", "path", stale, "error", err)
		}
	}
	return nil
}
