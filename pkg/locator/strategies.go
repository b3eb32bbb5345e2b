package locator

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/jlaunch/internal/workenv"
	"github.com/provide-io/jlaunch/pkg/procrun"
)

// JavaHomeVariables are consulted in order by the environment strategy.
var JavaHomeVariables = []string{
	"JAVA_HOME", "JAVAHOME", "JAVA_PATH", "JDK_HOME",
	"JDKHOME", "ANT_JAVA", "JAVA", "JDK",
}

// searchAll checks locations in order, skipping candidates that are merely
// absent or incompatible.
func searchAll(ctx context.Context, check CheckFunc, locations []string) (*Runtime, error) {
	for _, loc := range locations {
		rt, err := check(ctx, loc)
		if rt != nil {
			return rt, nil
		}
		if err != nil && !Recoverable(err) {
			return nil, err
		}
	}
	return nil, nil
}

// InstallFolderStrategy looks for a runtime shipped next to the launcher in
// bin/jre. The runtime is copied into the work directory before it is
// verified so the installed copy can be removed while the application runs.
type InstallFolderStrategy struct {
	InstallDir string
	WorkDir    string
	logger     hclog.Logger
}

// NewInstallFolderStrategy returns a strategy for installDir/bin/jre.
func NewInstallFolderStrategy(installDir, workDir string, logger hclog.Logger) *InstallFolderStrategy {
	return &InstallFolderStrategy{InstallDir: installDir, WorkDir: workDir, logger: logger}
}

func (s *InstallFolderStrategy) Kind() StrategyKind { return KindInstallFolder }

func (s *InstallFolderStrategy) Search(ctx context.Context, check CheckFunc) (*Runtime, error) {
	if s.InstallDir == "" || s.WorkDir == "" {
		return nil, nil
	}
	nested := filepath.Join(s.InstallDir, "bin", "jre")
	if info, err := os.Stat(nested); err != nil || !info.IsDir() {
		return nil, nil
	}

	dest := filepath.Join(s.WorkDir, "_jvm")
	s.logger.Debug("📋 Copying nested runtime", "from", nested, "to", dest)
	if err := workenv.CopyDir(nested, dest); err != nil {
		s.logger.Warn("Could not copy nested runtime", "error", err)
		return nil, nil
	}
	return searchAll(ctx, check, []string{dest})
}

// LocationsStrategy checks a fixed list of locations, the external JVM
// resources declared by the container.
type LocationsStrategy struct {
	Locations []string
}

func (s *LocationsStrategy) Kind() StrategyKind { return KindSystemLocations }

func (s *LocationsStrategy) Search(ctx context.Context, check CheckFunc) (*Runtime, error) {
	return searchAll(ctx, check, s.Locations)
}

// EnvStrategy checks the directories named by JavaHomeVariables.
type EnvStrategy struct {
	Getenv func(string) string
	logger hclog.Logger
}

// NewEnvStrategy returns an EnvStrategy over getenv (os.Getenv when nil).
func NewEnvStrategy(getenv func(string) string, logger hclog.Logger) *EnvStrategy {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &EnvStrategy{Getenv: getenv, logger: logger}
}

func (s *EnvStrategy) Kind() StrategyKind { return KindEnvironment }

func (s *EnvStrategy) Search(ctx context.Context, check CheckFunc) (*Runtime, error) {
	var locations []string
	for _, name := range JavaHomeVariables {
		if value := s.Getenv(name); value != "" {
			s.logger.Trace("Java environment variable", "name", name, "value", value)
			locations = append(locations, value)
		}
	}
	return searchAll(ctx, check, locations)
}

// PathStrategy checks the parent of every PATH entry holding a java
// executable.
type PathStrategy struct {
	Getenv func(string) string
	logger hclog.Logger
}

// NewPathStrategy returns a PathStrategy over getenv (os.Getenv when nil).
func NewPathStrategy(getenv func(string) string, logger hclog.Logger) *PathStrategy {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &PathStrategy{Getenv: getenv, logger: logger}
}

func (s *PathStrategy) Kind() StrategyKind { return KindPath }

func (s *PathStrategy) Search(ctx context.Context, check CheckFunc) (*Runtime, error) {
	var locations []string
	for _, entry := range filepath.SplitList(s.Getenv("PATH")) {
		if entry == "" {
			continue
		}
		exe := filepath.Join(entry, "java"+exeSuffix)
		if info, err := os.Stat(exe); err != nil || info.IsDir() {
			continue
		}
		s.logger.Trace("Potential java on PATH", "dir", entry)
		locations = append(locations, filepath.Dir(filepath.Clean(entry)))
	}
	return searchAll(ctx, check, locations)
}

// Config collects what the default strategy chain needs.
type Config struct {
	// Installers are the extracted bundled runtime installers.
	Installers []string
	// InstallDir is the directory holding the launcher executable.
	InstallDir string
	// WorkDir is the launcher's temporary directory.
	WorkDir string
	// Locations are the resolved external JVM resources.
	Locations []string
	Getenv    func(string) string
	// Stdout and Stderr receive bundled installer output.
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultStrategies returns the full strategy chain in search order.
func DefaultStrategies(cfg Config, runner *procrun.Runner, logger hclog.Logger) []Strategy {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	bundled := NewBundledStrategy(cfg.Installers, runner, logger)
	bundled.Stdout, bundled.Stderr = cfg.Stdout, cfg.Stderr
	return []Strategy{
		bundled,
		NewInstallFolderStrategy(cfg.InstallDir, cfg.WorkDir, logger),
		&LocationsStrategy{Locations: cfg.Locations},
		NewEnvStrategy(cfg.Getenv, logger),
		NewPathStrategy(cfg.Getenv, logger),
		NewRegistryStrategy(logger),
	}
}
