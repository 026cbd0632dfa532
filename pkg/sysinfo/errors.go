package sysinfo

import (
	"errors"
	"fmt"

	"github.com/opd-ai/go-sysinfo/internal/procfs"
)

// Sentinel errors. Every error returned by System wraps exactly one of them;
// test for them with errors.Is.
var (
	// ErrUnsupportedPlatform means the metric is not implemented for the host OS.
	ErrUnsupportedPlatform = errors.New("platform not supported")

	// ErrSourceUnavailable means a required file or command could not be
	// read, or produced no output.
	ErrSourceUnavailable = errors.New("unable to read source")

	// ErrFieldNotFound means a source was read but lacks a required field.
	ErrFieldNotFound = procfs.ErrFieldNotFound

	// ErrUnknownArch means the architecture string matched no known family.
	ErrUnknownArch = errors.New("unrecognized architecture")

	// ErrUnknownArchToken means IsArch was called with an unknown family name.
	ErrUnknownArchToken = errors.New("unknown architecture token")

	// ErrInvalidDuration means a sampling duration was negative.
	ErrInvalidDuration = errors.New("invalid sampling duration")

	// ErrDiskSpace means the filesystem size query failed.
	ErrDiskSpace = errors.New("unable to get disk space")
)

// Error describes a failed query. It preserves the underlying error for
// inspection via errors.Is/errors.As.
type Error struct {
	// Op is the failed operation (e.g., "CPUUsage").
	Op string
	// Source is the file, command or path involved, if any.
	Source string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("sysinfo: %s %s: %v", e.Op, e.Source, e.Err)
	}
	return fmt.Sprintf("sysinfo: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

func unsupported(op, osName string) error {
	return &Error{Op: op, Err: fmt.Errorf("%w: %s", ErrUnsupportedPlatform, osName)}
}
