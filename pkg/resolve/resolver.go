// Package resolve expands the $L{...} and $P{...} placeholders found in
// container paths and arguments.
package resolve

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/jlaunch/pkg/container"
)

// Launcher variables available through $L{name}.
const (
	VarTmpDir    = "nbi.launcher.tmp.dir"
	VarJavaHome  = "nbi.launcher.java.home"
	VarUserHome  = "nbi.launcher.user.home"
	VarParentDir = "nbi.launcher.parent.dir"
)

// MaxPasses bounds the number of substitution passes. A string still changing
// after MaxPasses passes is self-referential.
const MaxPasses = 64

const (
	launcherPrefix = "$L{"
	propertyPrefix = "$P{"
)

// Lookup supplies values for $P{name}.
type Lookup interface {
	Lookup(name string) (string, bool)
}

// Resolver substitutes placeholders until a fixpoint is reached.
type Resolver struct {
	vars       map[string]string
	properties Lookup
	logger     hclog.Logger
}

// New returns a Resolver using properties for $P{} lookups. properties may be
// nil.
func New(properties Lookup, logger hclog.Logger) *Resolver {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Resolver{
		vars:       make(map[string]string),
		properties: properties,
		logger:     logger,
	}
}

// Set assigns a launcher variable. An empty value leaves the variable
// unresolvable.
func (r *Resolver) Set(name, value string) {
	if value == "" {
		delete(r.vars, name)
		return
	}
	r.vars[name] = value
}

func (r *Resolver) launcherVar(name string) (string, bool) {
	v, ok := r.vars[name]
	return v, ok
}

func (r *Resolver) property(name string) (string, bool) {
	if r.properties == nil {
		return "", false
	}
	return r.properties.Lookup(name)
}

// Resolve expands every resolvable placeholder in raw. Unknown names are left
// in place.
func (r *Resolver) Resolve(raw string) (string, error) {
	cur := raw
	for pass := 0; ; pass++ {
		next := expand(cur, launcherPrefix, r.launcherVar)
		next = expand(next, propertyPrefix, r.property)
		if next == cur {
			if cur != raw {
				r.logger.Trace("🔧 Resolved string", "raw", raw, "resolved", cur)
			}
			return cur, nil
		}
		if pass+1 >= MaxPasses {
			r.logger.Debug("❌ Placeholder expansion does not converge", "raw", raw)
			return "", fmt.Errorf("%w: placeholders in %q do not converge", container.ErrIntegrity, raw)
		}
		cur = next
	}
}

// ResolvePath is Resolve followed by separator normalization.
func (r *Resolver) ResolvePath(raw string) (string, error) {
	s, err := r.Resolve(raw)
	if err != nil {
		return "", err
	}
	return NormalizeSeparators(s), nil
}

// NormalizeSeparators turns both '/' and '\' into the platform separator.
func NormalizeSeparators(s string) string {
	sep := string(filepath.Separator)
	s = strings.ReplaceAll(s, "/", sep)
	return strings.ReplaceAll(s, `\`, sep)
}

// expand performs one substitution pass for markers starting with prefix.
func expand(s, prefix string, lookup func(string) (string, bool)) string {
	if !strings.Contains(s, prefix) {
		return s
	}

	var sb strings.Builder
	for {
		i := strings.Index(s, prefix)
		if i < 0 {
			break
		}
		nameStart := i + len(prefix)
		end := strings.IndexByte(s[nameStart:], '}')
		if end < 0 {
			break
		}
		name := s[nameStart : nameStart+end]
		markerEnd := nameStart + end + 1

		sb.WriteString(s[:i])
		if v, ok := lookup(name); ok {
			sb.WriteString(v)
		} else {
			sb.WriteString(s[i:markerEnd])
		}
		s = s[markerEnd:]
	}
	sb.WriteString(s)
	return sb.String()
}

// UserHome returns the current user's home directory, or "" when unknown.
func UserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
