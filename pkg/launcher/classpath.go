package launcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/provide-io/jlaunch/pkg/container"
)

// ErrExternalResourceMissing is returned when an application jar does not
// exist on disk.
var ErrExternalResourceMissing = errors.New("external resource missing")

// MissingResourceError names the jar that was not found.
type MissingResourceError struct {
	Path string
}

func (e *MissingResourceError) Error() string {
	return fmt.Sprintf("%s: %s", ErrExternalResourceMissing, e.Path)
}

func (e *MissingResourceError) Is(target error) bool {
	return target == ErrExternalResourceMissing
}

// stderrNoise are substrings of JVM stderr lines that are not errors.
var stderrNoise = []string{
	"Picked up ",
	"fatal: Not a git repository",
}

// Resolver resolves placeholders in strings and paths.
type Resolver interface {
	container.PathResolver
	Resolve(raw string) (string, error)
}

// TestClasspath returns the classpath that makes the probe class loadable:
// the resource itself when it is a directory, the directory holding a
// .class file, or the archive containing the class.
func TestClasspath(resolved string) string {
	if info, err := os.Stat(resolved); err == nil && info.IsDir() {
		return resolved
	}
	if strings.HasSuffix(strings.ToLower(resolved), ".class") {
		return filepath.Dir(resolved)
	}
	return resolved
}

// BuildClasspath joins the prepended entries, the application jars and the
// appended entries with the platform list separator. Every jar must exist.
func BuildClasspath(prepend []string, jars []*container.Resource, appendEntries []string, resolver Resolver) (string, error) {
	var entries []string
	for _, entry := range prepend {
		resolved, err := resolver.Resolve(entry)
		if err != nil {
			return "", err
		}
		entries = append(entries, resolved)
	}

	for _, jar := range jars {
		path, err := jar.Resolve(resolver)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(path); err != nil {
			return "", &MissingResourceError{Path: path}
		}
		entries = append(entries, path)
	}

	for _, entry := range appendEntries {
		resolved, err := resolver.Resolve(entry)
		if err != nil {
			return "", err
		}
		entries = append(entries, resolved)
	}
	return strings.Join(entries, string(os.PathListSeparator)), nil
}

// BuildCommand assembles the JVM command line. java.io.tmpdir points at the
// parent of the work directory so the application's temporary files survive
// its removal.
func BuildCommand(java, workDir string, jvmArgs []string, classpath, mainClass string, appArgs []string) []string {
	cmd := make([]string, 0, len(jvmArgs)+len(appArgs)+5)
	cmd = append(cmd, java, "-Djava.io.tmpdir="+filepath.Dir(workDir))
	cmd = append(cmd, jvmArgs...)
	cmd = append(cmd, "-classpath", classpath, mainClass)
	return append(cmd, appArgs...)
}

// resolveAll resolves every argument in order.
func resolveAll(resolver Resolver, args ...[]string) ([]string, error) {
	var out []string
	for _, list := range args {
		for _, arg := range list {
			resolved, err := resolver.Resolve(arg)
			if err != nil {
				return nil, err
			}
			out = append(out, resolved)
		}
	}
	return out, nil
}

// meaningfulStderr reports whether stderr holds anything besides JVM notices
// and blank lines.
func meaningfulStderr(stderr string) bool {
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimRight(line, "\r")
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		noise := false
		for _, n := range stderrNoise {
			if strings.Contains(line, n) {
				noise = true
				break
			}
		}
		if !noise {
			return true
		}
	}
	return false
}
