package sysinfo

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/opd-ai/go-sysinfo/pkg/source"
)

// Options configures a System.
type Options struct {
	// Source is where system information is read from.
	// If nil, the local machine is used.
	Source source.Source

	// DiskPath selects the filesystem reported by DiskTotal and DiskFree.
	// Empty means the directory holding the running executable, or "/" when
	// Source is a re-rooted local source, since the executable's directory
	// need not exist under the mounted root.
	DiskPath string

	// Logger receives debug output for every sample.
	// If nil, no logging is performed.
	Logger Logger
}

// System is the system information facade. It holds only immutable
// configuration; every query reads its source afresh, so a System is safe
// for concurrent use.
type System struct {
	src      source.Source
	diskPath string
	logger   Logger
}

// New creates a System from opts.
func New(opts Options) *System {
	s := &System{
		src:      opts.Source,
		diskPath: opts.DiskPath,
		logger:   opts.Logger,
	}
	if s.src == nil {
		s.src = source.NewLocal("")
	}
	if s.diskPath == "" {
		s.diskPath = defaultDiskPath(s.src)
	}
	if s.logger == nil {
		s.logger = NopLogger()
	}
	return s
}

// defaultDiskPath returns the directory of the running executable, or "/".
// A local source with a Root resolves "/" to the root itself.
func defaultDiskPath(src source.Source) string {
	if l, ok := src.(*source.Local); ok && l.Root != "" {
		return "/"
	}
	exe, err := os.Executable()
	if err != nil {
		return string(filepath.Separator)
	}
	return filepath.Dir(exe)
}

// SourceName returns the name of the underlying source.
func (s *System) SourceName() string {
	return s.src.Name()
}

// DiskPath returns the path whose filesystem DiskTotal and DiskFree report.
func (s *System) DiskPath() string {
	return s.diskPath
}

// OS returns the OS name as the kernel reports it (e.g., "Linux", "Darwin").
func (s *System) OS(ctx context.Context) (string, error) {
	u, err := s.uname(ctx, "OS")
	if err != nil {
		return "", err
	}
	return u.Sysname, nil
}

// Arch returns the raw machine architecture (e.g., "x86_64", "aarch64").
func (s *System) Arch(ctx context.Context) (string, error) {
	u, err := s.uname(ctx, "Arch")
	if err != nil {
		return "", err
	}
	return u.Machine, nil
}

// Hostname returns the system's hostname.
func (s *System) Hostname(ctx context.Context) (string, error) {
	u, err := s.uname(ctx, "Hostname")
	if err != nil {
		return "", err
	}
	return u.Nodename, nil
}

func (s *System) uname(ctx context.Context, op string) (source.Uname, error) {
	u, err := s.src.Uname(ctx)
	if err != nil {
		return source.Uname{}, &Error{Op: op, Source: "uname", Err: fmt.Errorf("%w: %w", ErrSourceUnavailable, err)}
	}
	return u, nil
}

// platform is the OS family a code path is chosen by.
type platform int

const (
	platformOther platform = iota
	platformLinux
	platformDarwin
	platformWindows
)

func platformOf(osName string) platform {
	switch {
	case osName == "Linux":
		return platformLinux
	case osName == "Darwin":
		return platformDarwin
	case strings.HasPrefix(osName, "Windows"):
		return platformWindows
	default:
		return platformOther
	}
}

// platform returns the platform family and raw OS name of the source.
func (s *System) platform(ctx context.Context, op string) (platform, string, error) {
	u, err := s.uname(ctx, op)
	if err != nil {
		return platformOther, "", err
	}
	return platformOf(u.Sysname), u.Sysname, nil
}

// readFile reads a required source file. Missing, unreadable and empty
// files all fail with ErrSourceUnavailable.
func (s *System) readFile(ctx context.Context, op, path string) ([]byte, error) {
	data, err := s.src.ReadFile(ctx, path)
	if err != nil {
		return nil, &Error{Op: op, Source: path, Err: fmt.Errorf("%w: %w", ErrSourceUnavailable, err)}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &Error{Op: op, Source: path, Err: fmt.Errorf("%w: empty", ErrSourceUnavailable)}
	}
	return data, nil
}

// run executes a required platform command. A failing command or empty
// output fails with ErrSourceUnavailable.
func (s *System) run(ctx context.Context, op, name string, args ...string) (string, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")
	out, err := s.src.Run(ctx, name, args...)
	if err != nil {
		return "", &Error{Op: op, Source: cmdline, Err: fmt.Errorf("%w: %w", ErrSourceUnavailable, err)}
	}
	if strings.TrimSpace(out) == "" {
		return "", &Error{Op: op, Source: cmdline, Err: fmt.Errorf("%w: no output", ErrSourceUnavailable)}
	}
	return out, nil
}

// fieldError wraps a parse failure of a source that was read successfully.
func fieldError(op, src string, err error) error {
	return &Error{Op: op, Source: src, Err: err}
}
