package config

import "time"

// Default values for configuration options.
const (
	// DefaultDuration is the default sampling window (1 second).
	DefaultDuration = time.Second
	// DefaultInterval is the default period between reports in watch mode.
	DefaultInterval = 5 * time.Second
	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"
	// DefaultFormat is the default log and report format.
	DefaultFormat = "text"
	// DefaultSSHPort is the default port of a remote host.
	DefaultSSHPort = 22
	// DefaultCommandTimeout bounds each remote command.
	DefaultCommandTimeout = 5 * time.Second
)

// DefaultConfig returns a Config with default values. It reports every
// metric of the local machine.
func DefaultConfig() Config {
	return Config{
		Duration:  DefaultDuration,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultFormat,
		Output:    DefaultFormat,
		Interval:  DefaultInterval,
	}
}

// DefaultRemoteConfig returns a RemoteConfig with the default port and
// command timeout.
func DefaultRemoteConfig() RemoteConfig {
	return RemoteConfig{
		Port:           DefaultSSHPort,
		CommandTimeout: DefaultCommandTimeout,
	}
}
