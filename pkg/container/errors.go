package container

import "errors"

// Extraction status. A nil error is success; the others are sticky on an
// Extractor once recorded, except ErrCancelled.
var (
	// ErrIntegrity reports malformed or truncated container data.
	ErrIntegrity = errors.New("container integrity error")
	// ErrIO reports a filesystem or stream failure.
	ErrIO = errors.New("container I/O error")
	// ErrFreeSpace reports insufficient disk space for bundled data.
	ErrFreeSpace = errors.New("not enough free space")
	// ErrCancelled reports that the user aborted the run.
	ErrCancelled = errors.New("cancelled")
)
