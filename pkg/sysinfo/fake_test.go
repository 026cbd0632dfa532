package sysinfo

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/opd-ai/go-sysinfo/pkg/source"
)

// scriptedSource serves canned data. Each file holds a list of snapshots;
// successive reads return them in order and the last one repeats.
type scriptedSource struct {
	mu       sync.Mutex
	uname    source.Uname
	unameErr error
	files    map[string][]string
	dirs     map[string][]string
	commands map[string]string
	disk     source.DiskUsage
	diskErr  error
	reads    map[string]int
}

func newScripted(sysname, machine string) *scriptedSource {
	return &scriptedSource{
		uname:    source.Uname{Sysname: sysname, Nodename: "testhost", Machine: machine},
		files:    make(map[string][]string),
		dirs:     make(map[string][]string),
		commands: make(map[string]string),
		reads:    make(map[string]int),
	}
}

func (s *scriptedSource) Name() string { return "scripted" }

func (s *scriptedSource) ReadFile(_ context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snaps, ok := s.files[path]
	if !ok || len(snaps) == 0 {
		return nil, fmt.Errorf("%s: %w", path, source.ErrNotExist)
	}
	i := s.reads[path]
	s.reads[path]++
	if i >= len(snaps) {
		i = len(snaps) - 1
	}
	return []byte(snaps[i]), nil
}

func (s *scriptedSource) ReadDir(_ context.Context, path string) ([]string, error) {
	names, ok := s.dirs[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, source.ErrNotExist)
	}
	return names, nil
}

func (s *scriptedSource) Run(_ context.Context, name string, args ...string) (string, error) {
	cmd := strings.Join(append([]string{name}, args...), " ")
	out, ok := s.commands[cmd]
	if !ok {
		return "", fmt.Errorf("%s: command not found", cmd)
	}
	return out, nil
}

func (s *scriptedSource) Uname(context.Context) (source.Uname, error) {
	return s.uname, s.unameErr
}

func (s *scriptedSource) DiskUsage(context.Context, string) (source.DiskUsage, error) {
	return s.disk, s.diskErr
}

func (s *scriptedSource) readCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads[path]
}

func newTestSystem(src *scriptedSource) *System {
	return New(Options{Source: src, DiskPath: "/data"})
}
