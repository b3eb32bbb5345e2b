package locator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/jlaunch/pkg/container"
	"github.com/provide-io/jlaunch/pkg/javaver"
	"github.com/provide-io/jlaunch/pkg/procrun"
)

// ProbeTimeout bounds a silent verification run.
const ProbeTimeout = 10 * time.Second

// probeLines is the number of properties the probe class prints.
const probeLines = 5

// JavaExecutable returns the java launcher under home.
func JavaExecutable(home string) string {
	return filepath.Join(home, "bin", "java"+exeSuffix)
}

// ProcessProber verifies a location by running the probe class with the
// java executable found there.
type ProcessProber struct {
	runner    *procrun.Runner
	classpath string
	testClass string
	timeout   time.Duration
	logger    hclog.Logger
}

// NewProcessProber returns a prober running testClass from classpath.
func NewProcessProber(runner *procrun.Runner, classpath, testClass string, logger hclog.Logger) *ProcessProber {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ProcessProber{
		runner:    runner,
		classpath: classpath,
		testClass: testClass,
		timeout:   ProbeTimeout,
		logger:    logger,
	}
}

// Probe implements Prober.
func (p *ProcessProber) Probe(ctx context.Context, home string) (*Runtime, error) {
	exe := JavaExecutable(home)
	if info, err := os.Stat(exe); err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: no %s", ErrJvmNotFound, exe)
	}
	if info, err := os.Stat(filepath.Join(home, "lib")); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a java hierarchy", ErrJvmNotFound, home)
	}
	if p.testClass == "" {
		return nil, fmt.Errorf("%w: no probe class", ErrJvmNotFound)
	}

	cmd := []string{exe, "-classpath", p.classpath, p.testClass}
	p.logger.Debug("🧪 Probing java", "command", procrun.CommandLine(cmd))
	out, res := p.runner.Capture(ctx, procrun.Spec{
		Command: cmd,
		Timeout: p.timeout,
		Group:   true,
	})
	switch res.Outcome {
	case procrun.Cancelled:
		return nil, container.ErrCancelled
	case procrun.SpawnFailed, procrun.TimedOut:
		return nil, fmt.Errorf("%w: probe %s: %v", ErrJvmNotFound, res.Outcome, res.Err)
	}
	p.logger.Trace("Probe output", "home", home, "output", out)

	rt, err := ParseProbeOutput(out)
	if err != nil {
		return nil, err
	}
	rt.Home = home
	rt.Executable = exe
	return rt, nil
}

// ParseProbeOutput reads the five lines printed by the probe class:
// java.version, java.vm.version, java.vendor, os.name and os.arch.
func ParseProbeOutput(out string) (*Runtime, error) {
	out = strings.ReplaceAll(out, "\r", "")
	if strings.Count(out, "\n") != probeLines {
		return nil, fmt.Errorf("%w: unexpected probe output", ErrJvmNotFound)
	}
	lines := strings.Split(out, "\n")
	javaVersion, vmVersion := lines[0], lines[1]

	// The VM version often carries the build suffix the runtime version lacks.
	source := javaVersion
	if javaVersion != "" {
		if idx := strings.Index(vmVersion, javaVersion); idx >= 0 {
			source = vmVersion[idx:]
		}
	}
	v, ok := javaver.Parse(source)
	if !ok {
		return nil, fmt.Errorf("%w: unparseable version %q", ErrJvmNotFound, source)
	}
	return &Runtime{
		Version: v,
		Vendor:  lines[2],
		OSName:  lines[3],
		OSArch:  lines[4],
	}, nil
}
