package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
)

// Local reads system information from the machine the process runs on.
// The zero value reads the real root filesystem.
type Local struct {
	// Root, when set, is prepended to every file, directory and disk path.
	// Use it to read a host's /proc and /sys mounted elsewhere (e.g., "/host").
	Root string
}

// NewLocal creates a Local source rooted at root ("" for the real root).
func NewLocal(root string) *Local {
	return &Local{Root: root}
}

// Name returns "local", or "local:<root>" for a re-rooted source.
func (l *Local) Name() string {
	if l.Root == "" {
		return "local"
	}
	return "local:" + l.Root
}

func (l *Local) path(p string) string {
	if l.Root == "" {
		return p
	}
	return filepath.Join(l.Root, p)
}

// ReadFile reads a file relative to Root.
func (l *Local) ReadFile(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(l.path(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", path, ErrNotExist)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// ReadDir lists a directory relative to Root.
func (l *Local) ReadDir(_ context.Context, path string) ([]string, error) {
	entries, err := os.ReadDir(l.path(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("listing %s: %w", path, ErrNotExist)
		}
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// Run executes a local command. Root does not apply to commands.
func (l *Local) Run(ctx context.Context, name string, args ...string) (string, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("running %s: %w (stderr: %s)", commandLine(name, args), err,
			strings.TrimSpace(stderr.String()))
	}
	return string(out), nil
}

// Uname returns the local system identification.
func (l *Local) Uname(_ context.Context) (Uname, error) {
	return localUname()
}

// DiskUsage returns usage of the filesystem containing path, relative to Root.
func (l *Local) DiskUsage(ctx context.Context, path string) (DiskUsage, error) {
	usage, err := disk.UsageWithContext(ctx, l.path(path))
	if err != nil {
		return DiskUsage{}, fmt.Errorf("statfs %s: %w", path, err)
	}
	return DiskUsage{Total: usage.Total, Free: usage.Free}, nil
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
