package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opd-ai/go-sysinfo/internal/config"
	"github.com/opd-ai/go-sysinfo/pkg/sysinfo"
)

// watcher holds the state of watch mode that a configuration reload replaces.
type watcher struct {
	opts        *options
	cfg         *config.Config
	logger      *slog.Logger
	logOut      io.Writer
	sys         *sysinfo.System
	closeSource func()
	ticker      *time.Ticker
}

// watch prints a report every cfg.Interval until ctx is done. The
// configuration file, if any, is reloaded when it changes or on SIGHUP.
// A reload that fails to load or connect keeps the previous configuration.
func watch(ctx context.Context, o *options, cfg *config.Config, logger *slog.Logger, out, logOut io.Writer) error {
	sys, closeSource, err := newSystem(ctx, cfg, logger)
	if err != nil {
		return err
	}
	w := &watcher{
		opts:        o,
		cfg:         cfg,
		logger:      logger,
		logOut:      logOut,
		sys:         sys,
		closeSource: closeSource,
		ticker:      time.NewTicker(cfg.Interval),
	}
	defer func() {
		w.ticker.Stop()
		w.closeSource()
	}()

	reloadCh := make(chan *config.Config, 1)
	if o.configPath != "" {
		fw, err := config.NewWatcher(o.configPath, 0,
			func() error {
				next, err := loadConfig(o)
				if err != nil {
					return err
				}
				select {
				case <-reloadCh:
				default:
				}
				reloadCh <- next
				return nil
			},
			func(err error) {
				logger.Warn("configuration reload failed", "path", o.configPath, "error", err)
			},
		)
		if err != nil {
			return err
		}
		fw.Start()
		defer fw.Stop()
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		if err := printReport(ctx, w.sys, w.cfg, w.logger, out); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Warn("collection failed", "error", err)
		}
		if !w.wait(ctx, reloadCh, hup) {
			return nil
		}
	}
}

// wait blocks until the next report is due: a tick or a successful reload.
// A SIGHUP or reload that changes nothing keeps waiting. It returns false
// once ctx is done.
func (w *watcher) wait(ctx context.Context, reloadCh <-chan *config.Config, hup <-chan os.Signal) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case <-w.ticker.C:
			return true
		case next := <-reloadCh:
			if w.apply(ctx, next) {
				return true
			}
		case <-hup:
			if w.reload(ctx) {
				return true
			}
		}
	}
}

// reload reads the configuration file again and applies it.
func (w *watcher) reload(ctx context.Context) bool {
	if w.opts.configPath == "" {
		w.logger.Debug("ignoring SIGHUP without a configuration file")
		return false
	}
	next, err := loadConfig(w.opts)
	if err != nil {
		w.logger.Warn("configuration reload failed", "path", w.opts.configPath, "error", err)
		return false
	}
	return w.apply(ctx, next)
}

// apply switches to next, reconnecting the source. It reports whether the
// switch happened.
func (w *watcher) apply(ctx context.Context, next *config.Config) bool {
	logger := newLogger(next, w.logOut)
	sys, closeSource, err := newSystem(ctx, next, logger)
	if err != nil {
		w.logger.Warn("configuration reload failed", "error", err)
		return false
	}
	w.closeSource()
	w.sys, w.closeSource, w.cfg, w.logger = sys, closeSource, next, logger
	w.ticker.Reset(next.Interval)
	w.logger.Info("configuration reloaded", "source", sys.SourceName(), "interval", next.Interval)
	return true
}
