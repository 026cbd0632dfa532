// Package config loads go-sysinfo configuration files.
//
// Configuration is written in Lua and assigns a table to sysinfo.config:
//
//	sysinfo.config = {
//	    duration = 1,
//	    metrics = { "os", "cpu_usage", "network_usage" },
//	    remote = { host = "db1", user = "ops", agent = true },
//	}
//
// String values may reference environment variables as ${VAR},
// ${VAR:-default} or $VAR.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Config is the complete go-sysinfo configuration.
type Config struct {
	// Duration is the sampling window of the rate metrics.
	Duration time.Duration
	// DiskPath selects the filesystem reported by disk_total and disk_free.
	// Empty means the directory of the executable for local sources, and
	// "/" for remote or re-rooted ones.
	DiskPath string
	// ProcRoot re-roots local /proc and /sys reads and the disk path,
	// e.g. "/host" inside a container.
	ProcRoot string
	// LogLevel is one of debug, info, warn or error.
	LogLevel string
	// LogFormat is text or json.
	LogFormat string
	// Output is the report format: text, json or yaml.
	Output string
	// Interval is the period between reports in watch mode.
	Interval time.Duration
	// Metrics lists the metrics to report. Empty means all of them.
	Metrics []string
	// Remote, when set, reads the metrics of a host over SSH.
	Remote *RemoteConfig
}

// RemoteConfig describes an SSH connection to a monitored host.
type RemoteConfig struct {
	Host           string
	Port           int
	User           string
	KeyFile        string
	Passphrase     string
	Password       string
	Agent          bool
	KnownHosts     string
	CommandTimeout time.Duration
}

// Level returns the slog level named by LogLevel. Unknown names map to Info.
func (c *Config) Level() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
