package config

import (
	"fmt"
	"strings"

	"github.com/opd-ai/go-sysinfo/internal/report"
)

// ValidationError represents a configuration validation error.
// It contains the field name and a description of the issue.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the results of a configuration validation.
type ValidationResult struct {
	Errors []ValidationError
}

// IsValid returns true if there are no validation errors.
func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

// Error returns a combined error message if there are errors, nil otherwise.
func (vr *ValidationResult) Error() error {
	if len(vr.Errors) == 0 {
		return nil
	}
	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, e.Error())
	}
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

// AddError adds a validation error.
func (vr *ValidationResult) AddError(field, message string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message})
}

// Validate checks cfg for values the collector cannot act on.
func (c *Config) Validate() error {
	var vr ValidationResult

	if c.Duration < 0 {
		vr.AddError("duration", "must not be negative")
	}
	if c.Interval <= 0 {
		vr.AddError("interval", "must be positive")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		vr.AddError("log_level", err.Error())
	}
	if !isFormat(c.LogFormat) {
		vr.AddError("log_format", fmt.Sprintf("unknown format %q (expected text or json)", c.LogFormat))
	}
	if !isFormat(c.Output) && c.Output != report.FormatYAML {
		vr.AddError("output", fmt.Sprintf("unknown format %q (expected text, json or yaml)", c.Output))
	}
	for _, m := range c.Metrics {
		if !report.IsMetric(m) {
			vr.AddError("metrics", fmt.Sprintf("unknown metric %q", m))
		}
	}
	if c.Remote != nil {
		validateRemote(&vr, c.Remote)
	}

	return vr.Error()
}

func validateRemote(vr *ValidationResult, r *RemoteConfig) {
	if r.Host == "" {
		vr.AddError("remote.host", "is required")
	}
	if r.User == "" {
		vr.AddError("remote.user", "is required")
	}
	if r.Port <= 0 || r.Port > 65535 {
		vr.AddError("remote.port", fmt.Sprintf("%d out of range", r.Port))
	}
	if r.CommandTimeout < 0 {
		vr.AddError("remote.command_timeout", "must not be negative")
	}
	methods := 0
	if r.Password != "" {
		methods++
	}
	if r.KeyFile != "" {
		methods++
	}
	if r.Agent {
		methods++
	}
	if methods != 1 {
		vr.AddError("remote", "exactly one of password, key_file or agent is required")
	}
}

func isFormat(s string) bool {
	return s == report.FormatText || s == report.FormatJSON
}
