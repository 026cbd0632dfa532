// Package main provides the sysinfo command, which prints a report of the
// local machine or of a remote host reached over SSH.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/opd-ai/go-sysinfo/internal/config"
	"github.com/opd-ai/go-sysinfo/internal/report"
	"github.com/opd-ai/go-sysinfo/pkg/sysinfo"
)

// Version is the current version of sysinfo.
// This default value can be overridden at build time using:
//
//	go build -ldflags "-X main.Version=x.y.z"
var Version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options are the command-line flags.
type options struct {
	configPath string
	version    bool
	json       bool
	watch      bool
	debug      bool
	duration   time.Duration
	metrics    string
	set        map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("sysinfo", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{set: make(map[string]bool)}
	fs.StringVar(&o.configPath, "c", "", "Path to Lua configuration file")
	fs.BoolVar(&o.version, "v", false, "Print version and exit")
	fs.BoolVar(&o.json, "json", false, "Print the report as JSON")
	fs.BoolVar(&o.watch, "watch", false, "Print a report every interval until interrupted")
	fs.BoolVar(&o.debug, "debug", false, "Enable debug logging")
	fs.DurationVar(&o.duration, "duration", config.DefaultDuration, "Sampling window for cpu, io and network usage")
	fs.StringVar(&o.metrics, "metrics", "", "Comma-separated metrics to report (default all)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

// loadConfig reads the configuration file, if any, and applies flag overrides.
func loadConfig(o *options) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	if o.json {
		cfg.Output = report.FormatJSON
	}
	if o.debug {
		cfg.LogLevel = "debug"
	}
	if o.set["duration"] {
		cfg.Duration = o.duration
	}
	if o.metrics != "" {
		cfg.Metrics = strings.Split(o.metrics, ",")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func run(args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if o.version {
		fmt.Fprintf(stdout, "sysinfo version %s\n", Version)
		return 0
	}

	cfg, err := loadConfig(o)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading configuration: %v\n", err)
		return 1
	}
	logger := newLogger(cfg, stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if o.watch {
		if err := watch(ctx, o, cfg, logger, stdout, stderr); err != nil {
			logger.Error("watch failed", "error", err)
			return 1
		}
		return 0
	}

	if err := once(ctx, cfg, logger, stdout); err != nil {
		logger.Error("collection failed", "error", err)
		return 1
	}
	return 0
}

// once connects to the configured source and prints a single report.
func once(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	sys, closeSource, err := newSystem(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSource()
	return printReport(ctx, sys, cfg, logger, stdout)
}

func printReport(ctx context.Context, sys *sysinfo.System, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	r, err := report.Collect(ctx, sys, cfg.Metrics, cfg.Duration)
	if err != nil {
		return err
	}
	logger.Debug("report collected", "report_id", r.ID, "source", r.Source)
	return r.Write(stdout, cfg.Output)
}
