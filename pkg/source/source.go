// Package source provides the data sources that system information is read from.
// A Source exposes the handful of primitives the sysinfo facade needs: reading
// /proc and /sys files, listing directories, running platform commands, and
// querying uname and disk space. Local reads the machine the process runs on;
// SSH reads a remote host by executing standard shell commands over SSH.
package source

import (
	"context"
	"errors"
)

// ErrNotExist is returned (wrapped) when a requested file or directory does not exist.
var ErrNotExist = errors.New("source: file does not exist")

// Uname holds the fields of uname(2) that the facade reports.
type Uname struct {
	// Sysname is the OS name (e.g., "Linux", "Darwin", "Windows NT").
	Sysname string
	// Nodename is the network node hostname.
	Nodename string
	// Machine is the hardware architecture (e.g., "x86_64", "aarch64").
	Machine string
}

// DiskUsage is the size of a filesystem in bytes.
type DiskUsage struct {
	Total uint64
	// Free is the space available to unprivileged users.
	Free uint64
}

// Source is the interface every data source implements.
// Implementations must be safe for concurrent use.
type Source interface {
	// Name identifies the source in logs and errors (e.g., "local", "ssh://host:22").
	Name() string

	// ReadFile returns the contents of the file at path.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// ReadDir returns the names of the entries in the directory at path.
	ReadDir(ctx context.Context, path string) ([]string, error)

	// Run executes a command and returns its standard output.
	Run(ctx context.Context, name string, args ...string) (string, error)

	// Uname returns the system identification.
	Uname(ctx context.Context) (Uname, error)

	// DiskUsage returns usage of the filesystem containing path.
	DiskUsage(ctx context.Context, path string) (DiskUsage, error)
}
