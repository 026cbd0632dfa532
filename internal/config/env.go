package config

import (
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches environment variable references in configuration values.
// Supports formats:
//   - ${VAR_NAME} - standard shell-like format
//   - ${VAR_NAME:-default} - with default value if unset or empty
//   - $VAR_NAME - simple format (word characters only)
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// ExpandEnv expands environment variable references in a string.
// Unset variables without defaults are replaced with the empty string.
func ExpandEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if strings.HasPrefix(match, "${") {
			inner := match[2 : len(match)-1]
			if name, def, ok := strings.Cut(inner, ":-"); ok {
				if val := os.Getenv(name); val != "" {
					return val
				}
				return def
			}
			return os.Getenv(inner)
		}
		return os.Getenv(match[1:])
	})
}

// expandEnvConfig expands environment variables in every path and
// credential of cfg.
func expandEnvConfig(cfg *Config) {
	cfg.DiskPath = ExpandEnv(cfg.DiskPath)
	cfg.ProcRoot = ExpandEnv(cfg.ProcRoot)
	if r := cfg.Remote; r != nil {
		r.Host = ExpandEnv(r.Host)
		r.User = ExpandEnv(r.User)
		r.KeyFile = ExpandEnv(r.KeyFile)
		r.Passphrase = ExpandEnv(r.Passphrase)
		r.Password = ExpandEnv(r.Password)
		r.KnownHosts = ExpandEnv(r.KnownHosts)
	}
}
