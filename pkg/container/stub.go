package container

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultStubSize is the fixed size the launcher executable is padded to.
// The container starts at this offset.
const DefaultStubSize = 16 * 1024 * 1024

// ErrStubOnly is returned when an executable carries no container.
var ErrStubOnly = errors.New("launcher stub carries no container")

// OpenContainer opens the executable at path and positions the returned file
// at the start of the container.
func OpenContainer(path string, stubSize int64) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrIO, path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: stat %s: %v", ErrIO, path, err)
	}
	if info.Size() <= stubSize {
		f.Close()
		return nil, ErrStubOnly
	}

	if err := SkipStub(f, stubSize); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// SkipStub discards exactly stubSize bytes from r.
func SkipStub(r io.Reader, stubSize int64) error {
	if s, ok := r.(io.Seeker); ok {
		if _, err := s.Seek(stubSize, io.SeekStart); err != nil {
			return fmt.Errorf("%w: seeking past stub: %v", ErrIO, err)
		}
		return nil
	}
	n, err := io.CopyN(io.Discard, r, stubSize)
	if n < stubSize {
		return fmt.Errorf("%w: stub truncated at %d bytes", ErrIntegrity, n)
	}
	if err != nil {
		return fmt.Errorf("%w: skipping stub: %v", ErrIO, err)
	}
	return nil
}
