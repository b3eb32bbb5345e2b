package builder

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/provide-io/jlaunch/pkg/javaver"
)

// ErrInvalidManifest is returned for manifests that cannot produce a
// container.
var ErrInvalidManifest = errors.New("invalid manifest")

// Manifest describes the application packed behind the launcher stub.
type Manifest struct {
	MainClass string         `yaml:"main_class"`
	TestClass string         `yaml:"test_class"`
	JVMArgs   []string       `yaml:"jvm_args"`
	AppArgs   []string       `yaml:"app_args"`
	Locales   []LocaleBlock  `yaml:"locales"`
	Rules     []RuleSpec     `yaml:"rules"`
	TestJVM   ResourceSpec   `yaml:"testjvm"`
	JVMs      []ResourceSpec `yaml:"jvms"`
	Jars      []ResourceSpec `yaml:"jars"`
	Other     []ResourceSpec `yaml:"other"`
}

// LocaleBlock overrides messages for locales containing Locale. An empty
// Locale applies everywhere.
type LocaleBlock struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// RuleSpec is a compatibility rule with versions in text form.
type RuleSpec struct {
	Min    string `yaml:"min"`
	Max    string `yaml:"max"`
	Vendor string `yaml:"vendor"`
	OSName string `yaml:"os_name"`
	OSArch string `yaml:"os_arch"`
}

// ResourceSpec names a file by its symbolic target path. Resources with a
// Source are bundled into the container; the others are external.
type ResourceSpec struct {
	Path   string `yaml:"path"`
	Source string `yaml:"source"`
}

// Bundled reports whether the resource's bytes are packed.
func (r ResourceSpec) Bundled() bool {
	return r.Source != ""
}

// LoadManifest reads a YAML manifest. Relative sources are taken relative to
// the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}
	m.resolveSources(filepath.Dir(path))
	return m, nil
}

// ParseManifest decodes and validates a YAML manifest. Unknown keys are
// rejected.
func ParseManifest(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the fields every container needs.
func (m *Manifest) Validate() error {
	if m.MainClass == "" {
		return fmt.Errorf("%w: main_class is required", ErrInvalidManifest)
	}
	if m.TestClass == "" {
		return fmt.Errorf("%w: test_class is required", ErrInvalidManifest)
	}
	if m.TestJVM.Path == "" {
		return fmt.Errorf("%w: testjvm.path is required", ErrInvalidManifest)
	}
	if _, err := m.CompileRules(); err != nil {
		return err
	}
	for _, list := range [][]ResourceSpec{m.JVMs, m.Jars, m.Other} {
		for i, r := range list {
			if r.Path == "" {
				return fmt.Errorf("%w: resource %d has no path", ErrInvalidManifest, i)
			}
		}
	}
	return nil
}

// CompileRules parses the rule versions.
func (m *Manifest) CompileRules() ([]javaver.Rule, error) {
	rules := make([]javaver.Rule, 0, len(m.Rules))
	for i, spec := range m.Rules {
		lo, ok := javaver.Parse(spec.Min)
		if !ok {
			return nil, fmt.Errorf("%w: rule %d: bad min version %q", ErrInvalidManifest, i, spec.Min)
		}
		hi, ok := javaver.Parse(spec.Max)
		if !ok {
			return nil, fmt.Errorf("%w: rule %d: bad max version %q", ErrInvalidManifest, i, spec.Max)
		}
		rules = append(rules, javaver.Rule{
			Min:    lo,
			Max:    hi,
			Vendor: spec.Vendor,
			OSName: spec.OSName,
			OSArch: spec.OSArch,
		})
	}
	return rules, nil
}

func (m *Manifest) resolveSources(base string) {
	fix := func(r *ResourceSpec) {
		if r.Source != "" && !filepath.IsAbs(r.Source) {
			r.Source = filepath.Join(base, r.Source)
		}
	}
	fix(&m.TestJVM)
	for _, list := range [][]ResourceSpec{m.JVMs, m.Jars, m.Other} {
		for i := range list {
			fix(&list[i])
		}
	}
}

// resources returns every resource in container order.
func (m *Manifest) resources() []ResourceSpec {
	all := []ResourceSpec{m.TestJVM}
	all = append(all, m.JVMs...)
	all = append(all, m.Jars...)
	return append(all, m.Other...)
}
