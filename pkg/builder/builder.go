// Package builder produces launcher executables: the stub padded to the
// stub size followed by the container described by a Manifest.
package builder

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/jlaunch/pkg/container"
	"github.com/provide-io/jlaunch/pkg/messages"
)

// ExecutablePerms is the mode of written launchers.
const ExecutablePerms = 0o755

// Options configure one build.
type Options struct {
	Manifest *Manifest
	// StubPath is the launcher stub binary.
	StubPath   string
	OutputPath string
	// StubSize is the offset of the container; zero means
	// container.DefaultStubSize.
	StubSize int64
}

// Build writes the launcher executable. The output is written next to its
// destination and renamed into place once complete.
func Build(opts Options, logger hclog.Logger) error {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if opts.StubSize == 0 {
		opts.StubSize = container.DefaultStubSize
	}
	m := opts.Manifest
	if err := m.Validate(); err != nil {
		return err
	}

	outputDir := filepath.Dir(opts.OutputPath)
	logger.Debug("📁 Ensuring output directory exists", "dir", outputDir)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(outputDir, "."+filepath.Base(opts.OutputPath)+"-*")
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := write(tmp, opts, logger); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	if err := os.Chmod(tmpPath, ExecutablePerms); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, opts.OutputPath); err != nil {
		return fmt.Errorf("replacing %s: %w", opts.OutputPath, err)
	}
	logger.Info("✅ Launcher built", "path", opts.OutputPath)
	return nil
}

func write(f *os.File, opts Options, logger hclog.Logger) error {
	stubSize, err := writeStub(f, opts.StubPath, opts.StubSize)
	if err != nil {
		return err
	}
	logger.Debug("✍️ Stub written", "size", stubSize, "padded_to", opts.StubSize)

	bw := bufio.NewWriter(f)
	if err := WriteContainer(bw, opts.Manifest, logger); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing container: %w", err)
	}
	return nil
}

// writeStub copies the stub and pads it with zeros to size.
func writeStub(w io.Writer, path string, size int64) (int64, error) {
	stub, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening stub: %w", err)
	}
	defer stub.Close()

	info, err := stub.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat stub: %w", err)
	}
	if info.Size() > size {
		return 0, fmt.Errorf("stub %s is %d bytes, larger than the stub size %d", path, info.Size(), size)
	}
	n, err := io.Copy(w, stub)
	if err != nil {
		return 0, fmt.Errorf("copying stub: %w", err)
	}
	if _, err := io.CopyN(w, zeros{}, size-n); err != nil {
		return 0, fmt.Errorf("padding stub: %w", err)
	}
	return n, nil
}

type zeros struct{}

func (zeros) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

// WriteContainer writes the container for m: the message table, the
// properties and the resource lists.
func WriteContainer(w io.Writer, m *Manifest, logger hclog.Logger) error {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	rules, err := m.CompileRules()
	if err != nil {
		return err
	}

	props := &container.Properties{
		JVMArgs:   m.JVMArgs,
		AppArgs:   m.AppArgs,
		MainClass: m.MainClass,
		TestClass: m.TestClass,
		Rules:     rules,
	}
	staged, err := stageSources(m.resources(), logger)
	if err != nil {
		return err
	}
	defer staged.Close()
	if props.BundledCount, props.BundledSize, err = staged.Size(m.resources()); err != nil {
		return err
	}
	logger.Debug("📦 Bundled files", "count", props.BundledCount, "size", props.BundledSize)

	cw := container.NewWriter(w)
	names, locales := messageTable(m.Locales)
	if err := cw.WriteMessages(names, locales); err != nil {
		return err
	}
	if err := cw.WriteProperties(props); err != nil {
		return err
	}

	if err := writeResource(cw, m.TestJVM, staged, logger); err != nil {
		return err
	}
	for _, list := range [][]ResourceSpec{m.JVMs, m.Jars, m.Other} {
		if err := cw.WriteUint(uint32(len(list))); err != nil {
			return err
		}
		for _, r := range list {
			if err := writeResource(cw, r, staged, logger); err != nil {
				return err
			}
		}
	}
	logger.Debug("Container written", "bytes", cw.Written())
	return cw.Err()
}

func writeResource(cw *container.Writer, r ResourceSpec, staged *staging, logger hclog.Logger) error {
	if !r.Bundled() {
		logger.Trace("🔗 External resource", "path", r.Path)
		return cw.WriteExternal(r.Path)
	}
	size, err := cw.WriteBundledFile(r.Path, staged.File(r.Source))
	if err != nil {
		return err
	}
	logger.Trace("📦 Bundled resource", "path", r.Path, "source", r.Source, "size", size)
	return nil
}

// messageTable returns the property names and locale blocks to write. The
// names cover the built-in keys plus any extra key used by a block; the
// first block is the default locale holding the built-in texts.
func messageTable(blocks []LocaleBlock) ([]string, []container.LocaleMessages) {
	seen := make(map[string]bool)
	names := messages.Keys()
	for _, k := range names {
		seen[k] = true
	}
	var extra []string
	for _, b := range blocks {
		for k := range b.Messages {
			if !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	names = append(names, extra...)

	defaults := make(map[string]string, len(names))
	for _, k := range names {
		if v, ok := messages.Default(k); ok {
			defaults[k] = v
		}
	}
	locales := []container.LocaleMessages{{Locale: "", Values: defaults}}
	for _, b := range blocks {
		locales = append(locales, container.LocaleMessages{Locale: b.Locale, Values: b.Messages})
	}
	return names, locales
}
