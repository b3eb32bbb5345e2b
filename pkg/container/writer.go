package container

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"strconv"
	"strings"
)

// LocaleMessages is one block of the message table.
type LocaleMessages struct {
	Locale string
	Values map[string]string
}

// Writer emits container fields in the layout the Extractor reads. The first
// error is sticky and returned by every later call.
type Writer struct {
	w   io.Writer
	n   int64
	err error
}

// NewWriter returns a Writer appending to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Written returns the number of bytes emitted so far.
func (cw *Writer) Written() int64 {
	return cw.n
}

// Err returns the sticky error, if any.
func (cw *Writer) Err() error {
	return cw.err
}

func (cw *Writer) write(p []byte) error {
	if cw.err != nil {
		return cw.err
	}
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	if err != nil {
		cw.err = fmt.Errorf("%w: writing container: %v", ErrIO, err)
	}
	return cw.err
}

// WriteString writes s with its terminator, as UTF-16LE in unicode mode.
func (cw *Writer) WriteString(s string, unicode bool) error {
	if cw.err != nil {
		return cw.err
	}
	if strings.IndexByte(s, 0) >= 0 {
		cw.err = fmt.Errorf("%w: string %q contains NUL", ErrIntegrity, s)
		return cw.err
	}
	if !unicode {
		return cw.write(append([]byte(s), 0))
	}
	encoded, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		cw.err = fmt.Errorf("%w: encoding %q: %v", ErrIntegrity, s, err)
		return cw.err
	}
	return cw.write(append(encoded, 0, 0))
}

// WriteUint writes n as a decimal string.
func (cw *Writer) WriteUint(n uint32) error {
	return cw.WriteString(strconv.FormatUint(uint64(n), 10), false)
}

// WriteSize writes a 64-bit size as (low, high).
func (cw *Writer) WriteSize(size uint64) error {
	low, high := SplitSize(size)
	if err := cw.WriteUint(low); err != nil {
		return err
	}
	return cw.WriteUint(high)
}

// WriteStringList writes a count followed by UTF-16 strings.
func (cw *Writer) WriteStringList(list []string) error {
	if err := cw.WriteUint(uint32(len(list))); err != nil {
		return err
	}
	for _, s := range list {
		if err := cw.WriteString(s, true); err != nil {
			return err
		}
	}
	return nil
}

// WriteMessages writes the message table. Missing values are written empty.
func (cw *Writer) WriteMessages(names []string, locales []LocaleMessages) error {
	if len(names) == 0 || len(locales) == 0 {
		return fmt.Errorf("%w: message table needs at least one locale and one property", ErrIntegrity)
	}
	cw.WriteUint(uint32(len(locales)))
	cw.WriteUint(uint32(len(names)))
	for _, name := range names {
		cw.WriteString(name, true)
	}
	for _, block := range locales {
		cw.WriteString(block.Locale, true)
		for _, name := range names {
			cw.WriteString(block.Values[name], true)
		}
	}
	return cw.err
}

// WriteProperties writes the launcher properties block.
func (cw *Writer) WriteProperties(p *Properties) error {
	cw.WriteStringList(p.JVMArgs)
	cw.WriteStringList(p.AppArgs)
	cw.WriteString(p.MainClass, true)
	cw.WriteString(p.TestClass, true)
	cw.WriteUint(uint32(len(p.Rules)))
	for _, r := range p.Rules {
		cw.WriteString(r.Min.String(), true)
		cw.WriteString(r.Max.String(), true)
		cw.WriteString(r.Vendor, true)
		cw.WriteString(r.OSName, false)
		cw.WriteString(r.OSArch, false)
	}
	cw.WriteUint(p.BundledCount)
	cw.WriteSize(p.BundledSize)
	return cw.err
}

// WriteExternal writes an external resource record.
func (cw *Writer) WriteExternal(path string) error {
	cw.WriteUint(uint32(External))
	return cw.WriteString(path, true)
}

// WriteBundled writes a bundled resource record holding data.
func (cw *Writer) WriteBundled(name string, data []byte) error {
	cw.WriteUint(uint32(Bundled))
	cw.WriteString(name, true)
	cw.WriteSize(uint64(len(data)))
	cw.WriteUint(crc32.ChecksumIEEE(data))
	return cw.write(data)
}

// WriteBundledFile writes a bundled resource record holding the contents of
// the local file source. It returns the payload size.
func (cw *Writer) WriteBundledFile(name, source string) (uint64, error) {
	f, err := os.Open(source)
	if err != nil {
		return 0, fmt.Errorf("%w: opening %s: %v", ErrIO, source, err)
	}
	defer f.Close()

	hash := crc32.NewIEEE()
	size, err := io.Copy(hash, f)
	if err != nil {
		return 0, fmt.Errorf("%w: reading %s: %v", ErrIO, source, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w: rewinding %s: %v", ErrIO, source, err)
	}

	cw.WriteUint(uint32(Bundled))
	cw.WriteString(name, true)
	cw.WriteSize(uint64(size))
	if err := cw.WriteUint(hash.Sum32()); err != nil {
		return 0, err
	}

	copied, err := io.Copy(cw.w, f)
	cw.n += copied
	if err != nil {
		cw.err = fmt.Errorf("%w: copying %s: %v", ErrIO, source, err)
		return 0, cw.err
	}
	if copied != size {
		cw.err = fmt.Errorf("%w: %s changed while writing", ErrIO, source)
		return 0, cw.err
	}
	return uint64(size), nil
}
