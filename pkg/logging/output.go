package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Output is the writer context of one launcher run: where user facing
// messages and the child's streams go, and the logger for diagnostics.
type Output struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger hclog.Logger
	// Silent suppresses user facing messages. Child output is still
	// forwarded.
	Silent bool

	mu     sync.Mutex
	closer io.Closer
}

// NewOutput returns an Output over the given streams. A nil logger is
// replaced by a null logger.
func NewOutput(stdout, stderr io.Writer, logger hclog.Logger) *Output {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Output{Stdout: stdout, Stderr: stderr, Logger: logger}
}

// RedirectToFile sends both streams to path, truncating it. Paths naming an
// existing directory are ignored.
func (o *Output) RedirectToFile(path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		o.Logger.Debug("Output path is a directory, not redirecting", "path", path)
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("redirecting output to %s: %w", path, err)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closer != nil {
		o.closer.Close()
	}
	o.Stdout, o.Stderr, o.closer = f, f, f
	o.Logger.Debug("📝 Redirecting output", "path", path)
	return nil
}

// Message writes a user facing line to stderr unless silent.
func (o *Output) Message(msg string) {
	if o.Silent || o.Stderr == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintln(o.Stderr, msg)
}

// Print writes a user facing line to stdout unless silent.
func (o *Output) Print(msg string) {
	if o.Silent || o.Stdout == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintln(o.Stdout, msg)
}

// Close releases the redirect file, if any.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closer == nil {
		return nil
	}
	err := o.closer.Close()
	o.closer = nil
	return err
}
