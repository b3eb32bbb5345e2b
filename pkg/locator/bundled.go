package locator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/jlaunch/pkg/container"
	"github.com/provide-io/jlaunch/pkg/operations"
	_ "github.com/provide-io/jlaunch/pkg/operations/bundle"
	_ "github.com/provide-io/jlaunch/pkg/operations/compress"
	"github.com/provide-io/jlaunch/pkg/procrun"
)

const (
	// InstallTimeout bounds a silent bundled runtime installer.
	InstallTimeout = 180 * time.Second
	// UnpackTimeout bounds a silent unpack200 run for one jar.
	UnpackTimeout = 60 * time.Second

	packedJarSuffix = ".jar.pack.gz"
	packSuffix      = ".pack.gz"
)

// BundledStrategy installs the runtimes shipped inside the container. The
// first installer that runs is final: a failure to install or verify it
// ends the search.
type BundledStrategy struct {
	Installers []string
	// Stdout and Stderr receive installer output when set.
	Stdout io.Writer
	Stderr io.Writer

	runner         *procrun.Runner
	installTimeout time.Duration
	unpackTimeout  time.Duration
	logger         hclog.Logger
}

// NewBundledStrategy returns a strategy running installers with runner.
func NewBundledStrategy(installers []string, runner *procrun.Runner, logger hclog.Logger) *BundledStrategy {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &BundledStrategy{
		Installers:     installers,
		runner:         runner,
		installTimeout: InstallTimeout,
		unpackTimeout:  UnpackTimeout,
		logger:         logger,
	}
}

func (s *BundledStrategy) Kind() StrategyKind { return KindBundled }

func (s *BundledStrategy) Search(ctx context.Context, check CheckFunc) (*Runtime, error) {
	for _, installer := range s.Installers {
		s.logger.Info("📦 Installing bundled java", "installer", installer)
		dir, err := s.install(ctx, installer)
		if err != nil {
			if errors.Is(err, container.ErrCancelled) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrBundledExtraction, err)
		}

		rt, err := check(ctx, dir)
		if rt != nil {
			return rt, nil
		}
		if errors.Is(err, container.ErrCancelled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrBundledVerification, err)
	}
	return nil, nil
}

// install runs installer into <installer dir>/_jvm and expands packed
// libraries in the result.
func (s *BundledStrategy) install(ctx context.Context, installer string) (string, error) {
	dir := filepath.Join(filepath.Dir(installer), "_jvm")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	// Extracted files do not carry the executable bit.
	if err := os.Chmod(installer, 0o755); err != nil {
		return "", err
	}

	if err := s.run(ctx, []string{installer, "-d", dir}, dir, s.installTimeout); err != nil {
		return "", err
	}
	if err := s.expandTree(ctx, dir); err != nil {
		return "", err
	}
	return dir, nil
}

func (s *BundledStrategy) run(ctx context.Context, command []string, dir string, timeout time.Duration) error {
	res := s.runner.Run(ctx, procrun.Spec{
		Command: command,
		Dir:     dir,
		Timeout: timeout,
		Stdout:  s.Stdout,
		Stderr:  s.Stderr,
		Group:   true,
	})
	switch {
	case res.Outcome == procrun.Cancelled:
		return container.ErrCancelled
	case res.Outcome != procrun.Completed:
		return fmt.Errorf("%s: %s: %v", filepath.Base(command[0]), res.Outcome, res.Err)
	case res.ExitCode != 0:
		return fmt.Errorf("%s: exit code %d", filepath.Base(command[0]), res.ExitCode)
	}
	return nil
}

// expandTree unpacks pack200 jars with the runtime's own unpack200 and
// expands tar archives in place.
func (s *BundledStrategy) expandTree(ctx context.Context, dir string) error {
	var packed, archives []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := strings.ToLower(d.Name())
		if strings.HasSuffix(name, packedJarSuffix) {
			packed = append(packed, path)
		} else if _, ok := operations.ChainForFile(name); ok {
			archives = append(archives, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(packed) > 0 {
		unpack200 := filepath.Join(dir, "bin", "unpack200"+exeSuffix)
		if _, err := os.Stat(unpack200); err != nil {
			return fmt.Errorf("no unpack200 command for %d packed jars", len(packed))
		}
		for _, in := range packed {
			if err := ctx.Err(); err != nil {
				return container.ErrCancelled
			}
			out := in[:len(in)-len(packSuffix)]
			s.logger.Debug("Unpacking jar", "jar", out)
			if err := s.run(ctx, []string{unpack200, "-r", in, out}, "", s.unpackTimeout); err != nil {
				return err
			}
		}
	}

	for _, archive := range archives {
		if err := ctx.Err(); err != nil {
			return container.ErrCancelled
		}
		if err := operations.UnpackFile(archive, filepath.Dir(archive), s.logger); err != nil {
			return err
		}
		if err := os.Remove(archive); err != nil {
			return err
		}
	}
	return nil
}
