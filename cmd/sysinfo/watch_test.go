package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/opd-ai/go-sysinfo/internal/config"
)

func newTestWatcher(t *testing.T, args []string) *watcher {
	t.Helper()
	o, err := parseFlags(args, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultConfig()
	logger := slog.New(slog.DiscardHandler)
	sys, closeSource, err := newSystem(context.Background(), &cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	w := &watcher{
		opts:        o,
		cfg:         &cfg,
		logger:      logger,
		logOut:      io.Discard,
		sys:         sys,
		closeSource: closeSource,
		ticker:      time.NewTicker(time.Hour),
	}
	t.Cleanup(w.ticker.Stop)
	return w
}

func TestWatchHangupWithoutReloadKeepsWaiting(t *testing.T) {
	broken := filepath.Join(t.TempDir(), "broken.lua")
	if err := os.WriteFile(broken, []byte(`sysinfo.config = { output = "xml" }`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"no configuration file", nil},
		{"invalid configuration file", []string{"-c", broken}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWatcher(t, tt.args)
			before := w.cfg

			hup := make(chan os.Signal, 1)
			hup <- syscall.SIGHUP
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			if w.wait(ctx, nil, hup) {
				t.Fatal("wait() returned after SIGHUP, want it to keep waiting until ctx is done")
			}
			if len(hup) != 0 {
				t.Error("SIGHUP was not consumed")
			}
			if w.cfg != before {
				t.Error("configuration replaced by a reload that should have failed")
			}
		})
	}
}

func TestWatchHangupReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sysinfo.lua")
	if err := os.WriteFile(path, []byte(`sysinfo.config = { interval = 7, metrics = { "os" } }`), 0o644); err != nil {
		t.Fatal(err)
	}
	w := newTestWatcher(t, []string{"-c", path})

	hup := make(chan os.Signal, 1)
	hup <- syscall.SIGHUP
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if !w.wait(ctx, nil, hup) {
		t.Fatal("wait() = false, want true after a successful reload")
	}
	if w.cfg.Interval != 7*time.Second {
		t.Errorf("Interval = %v, want 7s", w.cfg.Interval)
	}
}