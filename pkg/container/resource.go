package container

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ResourceKind tells whether a resource's bytes travel inside the container.
type ResourceKind uint32

const (
	// Bundled resources are extracted from the container.
	Bundled ResourceKind = 0
	// External resources only name a path on the target machine.
	External ResourceKind = 1
)

func (k ResourceKind) String() string {
	if k == Bundled {
		return "bundled"
	}
	return "external"
}

// Resource is a file referenced by the container. Path is the symbolic name
// as stored; Resolved is filled once, either at extraction time or lazily by
// Resolve.
type Resource struct {
	Path     string
	Resolved string
	Kind     ResourceKind
}

// PathResolver expands placeholders in a symbolic path.
type PathResolver interface {
	ResolvePath(raw string) (string, error)
}

// SpaceChecker reports ErrFreeSpace when dir cannot hold required bytes.
type SpaceChecker func(dir string, required uint64) error

// Resolve returns the resolved path, computing it on first use.
func (r *Resource) Resolve(resolver PathResolver) (string, error) {
	if r.Resolved != "" {
		return r.Resolved, nil
	}
	resolved, err := resolver.ResolvePath(r.Path)
	if err != nil {
		return "", err
	}
	r.Resolved = resolved
	return resolved, nil
}

// ResourceReader reads resource records and extracts bundled payloads.
type ResourceReader struct {
	Extractor *Extractor
	Resolver  PathResolver
	// CheckSpace is optional; nil disables the free space check.
	CheckSpace SpaceChecker
}

// Read reads one resource record. Bundled payloads are written to their
// resolved location before Read returns.
func (rr *ResourceReader) Read(ctx context.Context) (*Resource, error) {
	e := rr.Extractor
	kind, err := e.ReadUint()
	if err != nil {
		return nil, err
	}

	if kind != uint32(Bundled) {
		path, err := e.ReadString(true)
		if err != nil {
			return nil, err
		}
		e.logger.Trace("🔗 External resource", "path", path)
		return &Resource{Path: path, Kind: External}, nil
	}

	name, err := e.ReadString(true)
	if err != nil {
		return nil, err
	}
	low, high, err := e.ReadSize()
	if err != nil {
		return nil, err
	}
	crc, err := e.ReadUint()
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, e.fail(fmt.Errorf("%w: bundled file without a name", ErrIntegrity))
	}

	dest, err := rr.Resolver.ResolvePath(name)
	if err != nil {
		return nil, e.fail(err)
	}
	size := Size64(low, high)
	dir := filepath.Dir(dest)
	e.logger.Debug("📦 Extracting bundled file", "name", name, "dest", dest, "size", size)

	if rr.CheckSpace != nil {
		if err := rr.CheckSpace(dir, size); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, e.fail(fmt.Errorf("%w: creating %s: %v", ErrIO, dir, err))
	}
	if err := e.ExtractFile(ctx, dest, size, crc); err != nil {
		return nil, err
	}

	return &Resource{Path: name, Resolved: dest, Kind: Bundled}, nil
}

// ReadList reads a count followed by that many resource records.
func (rr *ResourceReader) ReadList(ctx context.Context) ([]*Resource, error) {
	count, err := rr.Extractor.ReadUint()
	if err != nil {
		return nil, err
	}
	var list []*Resource
	for i := uint32(0); i < count; i++ {
		res, err := rr.Read(ctx)
		if err != nil {
			return nil, err
		}
		list = append(list, res)
	}
	return list, nil
}
