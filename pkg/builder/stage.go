package builder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/jlaunch/pkg/container"
	"github.com/provide-io/jlaunch/pkg/operations"
	_ "github.com/provide-io/jlaunch/pkg/operations/bundle"
	_ "github.com/provide-io/jlaunch/pkg/operations/compress"
)

// staging maps bundled sources to the files whose bytes are written. A
// directory source is packed into an archive first, using the chain named
// by the suffix of its target path, so that a runtime can ship as a tree.
type staging struct {
	dir   string
	files map[string]string
}

func stageSources(resources []ResourceSpec, logger hclog.Logger) (*staging, error) {
	s := &staging{files: make(map[string]string)}
	for _, r := range resources {
		if !r.Bundled() {
			continue
		}
		if _, done := s.files[r.Source]; done {
			continue
		}
		info, err := os.Stat(r.Source)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("%w: stat %s: %v", container.ErrIO, r.Source, err)
		}
		if !info.IsDir() {
			s.files[r.Source] = r.Source
			continue
		}
		packed, err := s.pack(r, logger)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.files[r.Source] = packed
	}
	return s, nil
}

func (s *staging) pack(r ResourceSpec, logger hclog.Logger) (string, error) {
	ops, ok := operations.ChainForFile(r.Path)
	if !ok {
		return "", fmt.Errorf("%w: directory %s needs an archive path, got %s", ErrInvalidManifest, r.Source, r.Path)
	}
	if s.dir == "" {
		dir, err := os.MkdirTemp("", "jlaunch-build-")
		if err != nil {
			return "", fmt.Errorf("%w: staging directory: %v", container.ErrIO, err)
		}
		s.dir = dir
	}

	f, err := os.CreateTemp(s.dir, "*-"+filepath.Base(r.Path))
	if err != nil {
		return "", fmt.Errorf("%w: %v", container.ErrIO, err)
	}
	defer f.Close()

	logger.Debug("🗜️ Packing directory", "source", r.Source, "chain", operations.ChainString(ops))
	if err := operations.Pack(r.Source, ops, f); err != nil {
		return "", fmt.Errorf("packing %s: %w", r.Source, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", container.ErrIO, err)
	}
	return f.Name(), nil
}

// File returns the file holding the bytes for source.
func (s *staging) File(source string) string {
	return s.files[source]
}

// Size sums the staged file sizes of the bundled resources.
func (s *staging) Size(resources []ResourceSpec) (uint32, uint64, error) {
	var (
		count uint32
		size  uint64
	)
	for _, r := range resources {
		if !r.Bundled() {
			continue
		}
		info, err := os.Stat(s.File(r.Source))
		if err != nil {
			return 0, 0, fmt.Errorf("%w: stat %s: %v", container.ErrIO, r.Source, err)
		}
		count++
		size += uint64(info.Size())
	}
	return count, size, nil
}

// Close removes packed archives.
func (s *staging) Close() {
	if s.dir != "" {
		os.RemoveAll(s.dir)
	}
}
