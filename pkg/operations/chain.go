package operations

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// ErrNotArchive is returned for files whose name maps to no known chain.
var ErrNotArchive = errors.New("not a recognized archive")

// Archive suffixes and the chains they denote, bundle operation first.
var suffixChains = []struct {
	suffix string
	ops    []uint8
}{
	{".tar.gz", []uint8{OP_TAR, OP_GZIP}},
	{".tgz", []uint8{OP_TAR, OP_GZIP}},
	{".tar.bz2", []uint8{OP_TAR, OP_BZIP2}},
	{".tbz2", []uint8{OP_TAR, OP_BZIP2}},
	{".tar.zst", []uint8{OP_TAR, OP_ZSTD}},
	{".tzst", []uint8{OP_TAR, OP_ZSTD}},
	{".tar.lz4", []uint8{OP_TAR, OP_LZ4}},
	{".tar", []uint8{OP_TAR}},
}

// ChainForFile returns the operation chain implied by name's suffix.
func ChainForFile(name string) ([]uint8, bool) {
	lower := strings.ToLower(name)
	for _, sc := range suffixChains {
		if strings.HasSuffix(lower, sc.suffix) {
			return sc.ops, true
		}
	}
	return nil, false
}

// ChainString renders a chain as "tar|gzip".
func ChainString(ops []uint8) string {
	if len(ops) == 0 {
		return "raw"
	}
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = strings.ToLower(GetName(op))
	}
	return strings.Join(names, "|")
}

// splitChain checks that ops is one bundle operation followed by
// compressors and resolves them from the registry.
func splitChain(ops []uint8) (Bundler, []Compressor, error) {
	if len(ops) == 0 {
		return nil, nil, fmt.Errorf("empty operation chain")
	}
	op, err := Get(ops[0])
	if err != nil {
		return nil, nil, err
	}
	bundler, ok := op.(Bundler)
	if !ok {
		return nil, nil, fmt.Errorf("operation %s is not a bundle operation", op.Name())
	}

	var compressors []Compressor
	for _, id := range ops[1:] {
		op, err := Get(id)
		if err != nil {
			return nil, nil, err
		}
		c, ok := op.(Compressor)
		if !ok {
			return nil, nil, fmt.Errorf("operation %s is not a compression operation", op.Name())
		}
		compressors = append(compressors, c)
	}
	return bundler, compressors, nil
}

// UnpackFile expands the archive at path into dir using the chain implied by
// its name.
func UnpackFile(path, dir string, logger hclog.Logger) error {
	ops, ok := ChainForFile(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotArchive, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	logger.Debug("📂 Unpacking archive", "path", path, "chain", ChainString(ops), "dest", dir)
	return Unpack(f, ops, dir)
}

// Unpack reverses ops on r and extracts the result into dir.
func Unpack(r io.Reader, ops []uint8, dir string) error {
	bundler, compressors, err := splitChain(ops)
	if err != nil {
		return err
	}

	current := r
	// Compression was applied last-to-first, so undo it from the end.
	for i := len(compressors) - 1; i >= 0; i-- {
		rc, err := compressors[i].NewReader(current)
		if err != nil {
			return fmt.Errorf("reversing %s: %w", compressors[i].Name(), err)
		}
		defer rc.Close()
		current = rc
	}

	if err := bundler.Unbundle(current, dir); err != nil {
		return fmt.Errorf("reversing %s: %w", bundler.Name(), err)
	}
	return nil
}

// Pack bundles dir and applies the compressors of ops, writing to w.
func Pack(dir string, ops []uint8, w io.Writer) error {
	bundler, compressors, err := splitChain(ops)
	if err != nil {
		return err
	}

	var closers []io.Closer
	current := w
	for i := len(compressors) - 1; i >= 0; i-- {
		wc, err := compressors[i].NewWriter(current)
		if err != nil {
			return fmt.Errorf("applying %s: %w", compressors[i].Name(), err)
		}
		closers = append(closers, wc)
		current = wc
	}

	if err := bundler.Bundle(dir, current); err != nil {
		return fmt.Errorf("applying %s: %w", bundler.Name(), err)
	}
	// Innermost writer first.
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			return err
		}
	}
	return nil
}
