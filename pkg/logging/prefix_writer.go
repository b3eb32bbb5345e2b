package logging

import (
	"bytes"
	"io"
)

// PrefixWriter marks every complete line of launcher log text with a prefix
// so it stands apart from the Java application's own output on a shared
// stream. Blank lines and JSON records ('{' first) are passed through as is,
// keeping machine-readable lines parseable. A trailing partial line is held
// until its newline arrives.
type PrefixWriter struct {
	prefix  []byte
	w       io.Writer
	pending []byte
}

// NewPrefixWriter returns a PrefixWriter writing to w.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{prefix: []byte(prefix), w: w}
}

// Write reports len(p) once every complete line has reached the underlying
// writer.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	pw.pending = append(pw.pending, p...)

	for {
		i := bytes.IndexByte(pw.pending, '\n')
		if i < 0 {
			break
		}
		line := pw.pending[:i+1]
		if err := pw.writeLine(line); err != nil {
			return 0, err
		}
		pw.pending = pw.pending[i+1:]
	}

	if len(pw.pending) == 0 {
		pw.pending = nil
	}
	return len(p), nil
}

func (pw *PrefixWriter) writeLine(line []byte) error {
	if len(line) > 1 && line[0] != '{' {
		out := make([]byte, 0, len(pw.prefix)+len(line))
		out = append(append(out, pw.prefix...), line...)
		_, err := pw.w.Write(out)
		return err
	}
	_, err := pw.w.Write(line)
	return err
}
