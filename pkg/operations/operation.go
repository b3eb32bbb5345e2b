// Package operations provides the archive transformations used to expand
// packed runtime libraries after a bundled JVM is installed. Compression and
// bundle operations register themselves from the compress and bundle
// subpackages.
package operations

import (
	"fmt"
	"io"
	"sync"
)

// Operation constants
const (
	// No operation - raw data
	OP_NONE = 0x00

	// Bundle operations (0x01-0x0F)
	OP_TAR = 0x01 // POSIX TAR archive

	// Compression operations (0x10-0x2F)
	OP_GZIP  = 0x10 // GZIP compression
	OP_BZIP2 = 0x13 // BZIP2 compression
	OP_ZSTD  = 0x1B // Zstandard compression
	OP_LZ4   = 0x1E // LZ4 frame compression
)

// Operation represents a single transformation operation
type Operation interface {
	// ID returns the operation identifier (e.g., OP_GZIP)
	ID() uint8

	// Name returns the human-readable name
	Name() string
}

// Compressor is implemented by compression operations.
type Compressor interface {
	Operation

	// NewWriter wraps w so that bytes written are compressed.
	NewWriter(w io.Writer) (io.WriteCloser, error)

	// NewReader wraps r so that bytes read are decompressed.
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// Bundler is implemented by archive operations.
type Bundler interface {
	Operation

	// Bundle writes the tree rooted at dir to w.
	Bundle(dir string, w io.Writer) error

	// Unbundle recreates the archived tree under dir.
	Unbundle(r io.Reader, dir string) error
}

// BaseOperation provides common functionality for operations
type BaseOperation struct {
	OpID   uint8
	OpName string
}

func (o *BaseOperation) ID() uint8 {
	return o.OpID
}

func (o *BaseOperation) Name() string {
	return o.OpName
}

var (
	registryMu sync.RWMutex
	registry   = make(map[uint8]Operation)
)

// Register registers an operation implementation
func Register(op Operation) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[op.ID()] = op
}

// Get retrieves an operation by ID
func Get(id uint8) (Operation, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	op, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("unknown operation: 0x%02x", id)
	}
	return op, nil
}

// GetName returns the name of an operation by ID
func GetName(id uint8) string {
	switch id {
	case OP_NONE:
		return "NONE"
	case OP_TAR:
		return "TAR"
	case OP_GZIP:
		return "GZIP"
	case OP_BZIP2:
		return "BZIP2"
	case OP_ZSTD:
		return "ZSTD"
	case OP_LZ4:
		return "LZ4"
	default:
		return fmt.Sprintf("UNKNOWN_%02x", id)
	}
}
