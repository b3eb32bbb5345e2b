// Package container reads and writes the binary container appended to a
// launcher stub: zero-terminated strings, decimal integers, 64-bit sizes and
// CRC-32 verified file payloads, all taken from one forward-only stream.
package container

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/text/encoding/unicode"
)

// DefaultChunkSize is the read-ahead granularity.
const DefaultChunkSize = 64 * 1024

// cancelCheckInterval is how many chunks ExtractFile copies between
// cancellation checks.
const cancelCheckInterval = 20

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Extractor parses container fields from a stream. Bytes read ahead but not
// yet consumed are kept in an owned residual buffer.
type Extractor struct {
	r         io.Reader
	residual  []byte
	chunkSize int
	err       error
	logger    hclog.Logger
}

// NewExtractor returns an Extractor reading r with DefaultChunkSize.
func NewExtractor(r io.Reader, logger hclog.Logger) *Extractor {
	return NewExtractorSize(r, DefaultChunkSize, logger)
}

// NewExtractorSize returns an Extractor with a custom read-ahead chunk size.
func NewExtractorSize(r io.Reader, chunkSize int, logger hclog.Logger) *Extractor {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Extractor{r: r, chunkSize: chunkSize, logger: logger}
}

// Err returns the sticky error, if any.
func (e *Extractor) Err() error {
	return e.err
}

// Buffered returns the number of residual bytes not yet consumed.
func (e *Extractor) Buffered() int {
	return len(e.residual)
}

func (e *Extractor) fail(err error) error {
	if e.err == nil {
		e.err = err
	}
	return e.err
}

// fill appends one chunk from the stream to the residual buffer and returns
// the number of bytes added; zero means the stream is exhausted.
func (e *Extractor) fill() (int, error) {
	chunk := make([]byte, e.chunkSize)
	n, err := io.ReadAtLeast(e.r, chunk, 1)
	if n > 0 {
		e.residual = append(e.residual, chunk[:n]...)
		return n, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return 0, nil
	}
	return 0, e.fail(fmt.Errorf("%w: reading container: %v", ErrIO, err))
}

// take removes and returns the first n residual bytes.
func (e *Extractor) take(n int) []byte {
	out := make([]byte, n)
	copy(out, e.residual[:n])
	e.residual = e.residual[n:]
	if len(e.residual) == 0 {
		e.residual = nil
	}
	return out
}

// findTerminator scans buf from start. In unicode mode the terminator is a
// zero 16-bit unit at an even offset. It returns the terminator offset and
// the offset to resume scanning from when none was found.
func findTerminator(buf []byte, start int, unicode bool) (int, int) {
	if !unicode {
		for i := start; i < len(buf); i++ {
			if buf[i] == 0 {
				return i, 0
			}
		}
		return -1, len(buf)
	}
	for i := start; i+1 < len(buf); i += 2 {
		if buf[i] == 0 && buf[i+1] == 0 {
			return i, 0
		}
	}
	return -1, len(buf) &^ 1
}

// ReadString reads a zero-terminated string. In unicode mode the bytes are
// UTF-16LE and are decoded to UTF-8.
func (e *Extractor) ReadString(unicode bool) (string, error) {
	if e.err != nil {
		return "", e.err
	}

	width := 1
	if unicode {
		width = 2
	}

	scanned := 0
	for {
		idx, resume := findTerminator(e.residual, scanned, unicode)
		if idx >= 0 {
			raw := e.take(idx + width)[:idx]
			if !unicode {
				return string(raw), nil
			}
			decoded, err := utf16le.NewDecoder().Bytes(raw)
			if err != nil {
				return "", e.fail(fmt.Errorf("%w: bad UTF-16 string: %v", ErrIntegrity, err))
			}
			return string(decoded), nil
		}
		scanned = resume

		n, err := e.fill()
		if err != nil {
			return "", err
		}
		if n == 0 {
			e.logger.Debug("❌ Container ended inside a string", "buffered", len(e.residual))
			return "", e.fail(fmt.Errorf("%w: unterminated string", ErrIntegrity))
		}
	}
}

// ReadUint reads a non-empty 8-bit string of decimal digits. Overflow wraps.
func (e *Extractor) ReadUint() (uint32, error) {
	s, err := e.ReadString(false)
	if err != nil {
		return 0, err
	}
	if s == "" {
		return 0, e.fail(fmt.Errorf("%w: empty number", ErrIntegrity))
	}
	var n uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, e.fail(fmt.Errorf("%w: %q is not a number", ErrIntegrity, s))
		}
		n = n*10 + uint32(c-'0')
	}
	return n, nil
}

// ReadSize reads a 64-bit size stored as two numbers, low word first.
func (e *Extractor) ReadSize() (low, high uint32, err error) {
	if low, err = e.ReadUint(); err != nil {
		return 0, 0, err
	}
	if high, err = e.ReadUint(); err != nil {
		return 0, 0, err
	}
	return low, high, nil
}

// Size64 combines a (low, high) pair.
func Size64(low, high uint32) uint64 {
	return uint64(high)<<32 | uint64(low)
}

// SplitSize is the inverse of Size64.
func SplitSize(size uint64) (low, high uint32) {
	return uint32(size), uint32(size >> 32)
}

// ExtractFile copies the next size bytes of the container to dest while
// computing their CRC-32. A checksum mismatch or premature end of data is
// ErrIntegrity. The context is polled every few chunks and cancellation
// returns ErrCancelled without recording a sticky failure.
func (e *Extractor) ExtractFile(ctx context.Context, dest string, size uint64, crc uint32) error {
	if e.err != nil {
		return e.err
	}

	f, err := os.Create(dest)
	if err != nil {
		return e.fail(fmt.Errorf("%w: creating %s: %v", ErrIO, dest, err))
	}
	defer f.Close()

	hash := crc32.NewIEEE()
	w := io.MultiWriter(f, hash)
	remaining := size

	if len(e.residual) > 0 && remaining > 0 {
		n := len(e.residual)
		if uint64(n) > remaining {
			n = int(remaining)
		}
		if _, err := w.Write(e.take(n)); err != nil {
			return e.fail(fmt.Errorf("%w: writing %s: %v", ErrIO, dest, err))
		}
		remaining -= uint64(n)
	}

	buf := make([]byte, e.chunkSize)
	for chunk := 0; remaining > 0; chunk++ {
		if chunk%cancelCheckInterval == 0 && ctx.Err() != nil {
			e.logger.Debug("⏹️ Extraction cancelled", "file", dest)
			return ErrCancelled
		}

		want := len(buf)
		if uint64(want) > remaining {
			want = int(remaining)
		}
		n, err := io.ReadFull(e.r, buf[:want])
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return e.fail(fmt.Errorf("%w: writing %s: %v", ErrIO, dest, werr))
			}
			remaining -= uint64(n)
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return e.fail(fmt.Errorf("%w: %s truncated, %d bytes missing", ErrIntegrity, dest, remaining))
			}
			return e.fail(fmt.Errorf("%w: reading container: %v", ErrIO, err))
		}
	}

	if err := f.Close(); err != nil {
		return e.fail(fmt.Errorf("%w: closing %s: %v", ErrIO, dest, err))
	}

	if sum := hash.Sum32(); sum != crc {
		e.logger.Debug("❌ Checksum mismatch", "file", dest, "expected", crc, "actual", sum)
		return e.fail(fmt.Errorf("%w: checksum mismatch for %s", ErrIntegrity, dest))
	}

	e.logger.Trace("✅ Extracted file", "file", dest, "size", size)
	return nil
}
