// Package locator finds a Java runtime compatible with the launcher's rules.
//
// Strategies are tried in a fixed order and each one hands candidate
// locations to the Locator, which verifies every location at most once by
// running the probe class on it.
package locator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/jlaunch/pkg/container"
	"github.com/provide-io/jlaunch/pkg/javaver"
)

var (
	// ErrJvmNotFound means no runtime exists at a location, or none at all.
	ErrJvmNotFound = errors.New("java runtime not found")
	// ErrJvmIncompatible means a runtime exists but no rule accepts it.
	ErrJvmIncompatible = errors.New("java runtime incompatible")
	// ErrBundledExtraction means a bundled runtime could not be installed.
	ErrBundledExtraction = errors.New("bundled java runtime extraction failed")
	// ErrBundledVerification means an installed bundled runtime is unusable.
	ErrBundledVerification = errors.New("bundled java runtime verification failed")
)

// Runtime is a verified Java installation.
type Runtime struct {
	Home       string
	Executable string
	Version    javaver.Version
	Vendor     string
	OSName     string
	OSArch     string
}

func (r *Runtime) String() string {
	return fmt.Sprintf("%s (%s, %s, %s/%s)", r.Home, r.Version, r.Vendor, r.OSName, r.OSArch)
}

// StrategyKind identifies a search strategy. Kinds are declared in search
// order.
type StrategyKind int

const (
	KindBundled StrategyKind = iota
	KindInstallFolder
	KindSystemLocations
	KindEnvironment
	KindPath
	KindRegistry
)

func (k StrategyKind) String() string {
	switch k {
	case KindBundled:
		return "bundled"
	case KindInstallFolder:
		return "installation folder"
	case KindSystemLocations:
		return "system locations"
	case KindEnvironment:
		return "environment variables"
	case KindPath:
		return "executable path"
	case KindRegistry:
		return "registry"
	default:
		return fmt.Sprintf("strategy(%d)", int(k))
	}
}

// CheckFunc verifies one candidate location. It returns the runtime when the
// location holds a compatible one, and otherwise an error wrapping
// ErrJvmNotFound, ErrJvmIncompatible or container.ErrCancelled.
type CheckFunc func(ctx context.Context, location string) (*Runtime, error)

// Strategy produces candidate locations and checks them. Search returns
// (nil, nil) when the strategy found nothing usable; any error stops the
// whole search.
type Strategy interface {
	Kind() StrategyKind
	Search(ctx context.Context, check CheckFunc) (*Runtime, error)
}

// Prober inspects a location and reports the runtime installed there.
// It returns an error wrapping ErrJvmNotFound when there is none.
type Prober interface {
	Probe(ctx context.Context, home string) (*Runtime, error)
}

// Locator runs the strategies and owns the visited set.
type Locator struct {
	prober     Prober
	rules      []javaver.Rule
	strategies []Strategy
	visited    map[string]bool
	logger     hclog.Logger
}

// New returns a Locator trying strategies in the given order.
func New(prober Prober, rules []javaver.Rule, strategies []Strategy, logger hclog.Logger) *Locator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Locator{
		prober:     prober,
		rules:      rules,
		strategies: strategies,
		visited:    make(map[string]bool),
		logger:     logger,
	}
}

// Find runs every strategy in order and returns the first compatible
// runtime.
func (l *Locator) Find(ctx context.Context) (*Runtime, error) {
	for _, s := range l.strategies {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", container.ErrCancelled, err)
		}
		l.logger.Debug("🔍 Searching java", "strategy", s.Kind().String())

		rt, err := s.Search(ctx, l.Check)
		if err != nil {
			return nil, fmt.Errorf("%s search: %w", s.Kind(), err)
		}
		if rt != nil {
			l.logger.Info("☕ Compatible java found", "strategy", s.Kind().String(), "home", rt.Home, "version", rt.Version.String())
			return rt, nil
		}
	}
	l.logger.Debug("❌ No compatible java found")
	return nil, ErrJvmNotFound
}

// FindAt verifies a single user supplied location. Errors are returned
// as-is so the caller can report them against that location.
func (l *Locator) FindAt(ctx context.Context, home string) (*Runtime, error) {
	l.logger.Debug("🔍 Checking user supplied java", "home", home)
	return l.Check(ctx, home)
}

// Check verifies location, falling back to its private jre directory when
// nothing is installed there. Locations already checked are skipped.
func (l *Locator) Check(ctx context.Context, location string) (*Runtime, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", container.ErrCancelled, err)
	}
	if location == "" {
		return nil, ErrJvmNotFound
	}
	if !l.markVisited(location) {
		l.logger.Trace("Already checked location", "location", location)
		return nil, fmt.Errorf("%w: %s already checked", ErrJvmNotFound, location)
	}

	rt, err := l.verify(ctx, location)
	if !errors.Is(err, ErrJvmNotFound) {
		return rt, err
	}

	private := filepath.Join(location, "jre")
	if !l.markVisited(private) {
		return nil, err
	}
	l.logger.Trace("Checking private jre", "location", private)
	return l.verify(ctx, private)
}

func (l *Locator) markVisited(location string) bool {
	key := filepath.Clean(location)
	if l.visited[key] {
		return false
	}
	l.visited[key] = true
	return true
}

func (l *Locator) verify(ctx context.Context, location string) (*Runtime, error) {
	rt, err := l.prober.Probe(ctx, location)
	if err != nil {
		l.logger.Debug("No java at location", "location", location, "error", err)
		return nil, err
	}
	if !javaver.AnyMatches(l.rules, rt.Version, rt.Vendor, rt.OSName, rt.OSArch) {
		l.logger.Debug("Incompatible java", "location", location, "version", rt.Version.String(), "vendor", rt.Vendor)
		return nil, fmt.Errorf("%w: %s", ErrJvmIncompatible, rt)
	}
	return rt, nil
}

// Recoverable reports whether err only rules out one candidate.
func Recoverable(err error) bool {
	return errors.Is(err, ErrJvmNotFound) || errors.Is(err, ErrJvmIncompatible)
}
