package config

import (
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"
)

// LuaParser executes Lua configuration files and extracts the
// sysinfo.config table.
type LuaParser struct {
	runtime *rt.Runtime
	cleanup func()
	mu      sync.Mutex
}

// NewLuaParser creates a LuaParser whose Lua print output is discarded.
func NewLuaParser() *LuaParser {
	return NewLuaParserWithOutput(io.Discard)
}

// NewLuaParserWithOutput creates a LuaParser that writes Lua print output to stdout.
func NewLuaParserWithOutput(stdout io.Writer) *LuaParser {
	if stdout == nil {
		stdout = os.Stdout
	}
	runtime := rt.New(stdout)
	cleanup := lib.LoadAll(runtime)
	return &LuaParser{runtime: runtime, cleanup: cleanup}
}

// ParseFile reads and parses a configuration file.
func (p *LuaParser) ParseFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return p.Parse(content)
}

// Parse executes content and returns the resulting configuration, with
// defaults for every value the script leaves unset and environment
// variables expanded.
func (p *LuaParser) Parse(content []byte) (*Config, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.initGlobal()

	closure, err := p.runtime.CompileAndLoadLuaChunk(
		"config",
		content,
		rt.TableValue(p.runtime.GlobalEnv()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile Lua configuration: %w", err)
	}

	ctx := rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    10_000_000,
			Memory: 50 * 1024 * 1024, // 50 MB
		},
	}
	p.runtime.PushContext(ctx)
	defer p.runtime.PopContext()

	if _, err := rt.Call1(p.runtime.MainThread(), rt.FunctionValue(closure)); err != nil {
		return nil, fmt.Errorf("failed to execute Lua configuration: %w", err)
	}

	cfg, err := p.extractConfig()
	if err != nil {
		return nil, err
	}
	expandEnvConfig(cfg)
	return cfg, nil
}

// initGlobal resets the sysinfo global to an empty config table.
func (p *LuaParser) initGlobal() {
	sysinfoTable := rt.NewTable()
	sysinfoTable.Set(rt.StringValue("config"), rt.TableValue(rt.NewTable()))
	p.runtime.GlobalEnv().Set(rt.StringValue("sysinfo"), rt.TableValue(sysinfoTable))
}

func (p *LuaParser) extractConfig() (*Config, error) {
	cfg := DefaultConfig()

	globalVal := p.runtime.GlobalEnv().Get(rt.StringValue("sysinfo"))
	if globalVal == rt.NilValue {
		return &cfg, nil
	}
	global, ok := globalVal.TryTable()
	if !ok {
		return nil, fmt.Errorf("sysinfo is not a table")
	}

	configVal := global.Get(rt.StringValue("config"))
	if configVal == rt.NilValue {
		return &cfg, nil
	}
	table, ok := configVal.TryTable()
	if !ok {
		return nil, fmt.Errorf("sysinfo.config is not a table")
	}

	if err := extractConfigTable(&cfg, table); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func extractConfigTable(cfg *Config, table *rt.Table) error {
	if val := getTableSeconds(table, "duration"); val != nil {
		cfg.Duration = *val
	}
	if val := getTableSeconds(table, "interval"); val != nil {
		cfg.Interval = *val
	}

	strs := []struct {
		key    string
		target *string
	}{
		{"disk_path", &cfg.DiskPath},
		{"proc_root", &cfg.ProcRoot},
		{"log_level", &cfg.LogLevel},
		{"log_format", &cfg.LogFormat},
		{"output", &cfg.Output},
	}
	for _, s := range strs {
		if val := getTableString(table, s.key); val != nil {
			*s.target = *val
		}
	}

	metricsVal := table.Get(rt.StringValue("metrics"))
	if metricsVal != rt.NilValue {
		metrics, ok := metricsVal.TryTable()
		if !ok {
			return fmt.Errorf("invalid metrics: not a table")
		}
		names, err := stringList(metrics)
		if err != nil {
			return fmt.Errorf("invalid metrics: %w", err)
		}
		cfg.Metrics = names
	}

	remoteVal := table.Get(rt.StringValue("remote"))
	if remoteVal != rt.NilValue {
		remote, ok := remoteVal.TryTable()
		if !ok {
			return fmt.Errorf("invalid remote: not a table")
		}
		cfg.Remote = extractRemote(remote)
	}

	return nil
}

func extractRemote(table *rt.Table) *RemoteConfig {
	r := DefaultRemoteConfig()

	strs := []struct {
		key    string
		target *string
	}{
		{"host", &r.Host},
		{"user", &r.User},
		{"key_file", &r.KeyFile},
		{"passphrase", &r.Passphrase},
		{"password", &r.Password},
		{"known_hosts", &r.KnownHosts},
	}
	for _, s := range strs {
		if val := getTableString(table, s.key); val != nil {
			*s.target = *val
		}
	}
	if val := getTableInt(table, "port"); val != nil {
		r.Port = *val
	}
	if val := getTableBool(table, "agent"); val != nil {
		r.Agent = *val
	}
	if val := getTableSeconds(table, "command_timeout"); val != nil {
		r.CommandTimeout = *val
	}
	return &r
}

// stringList reads the array part of a Lua table as strings.
func stringList(table *rt.Table) ([]string, error) {
	var out []string
	for i := int64(1); ; i++ {
		val := table.Get(rt.IntValue(i))
		if val == rt.NilValue {
			return out, nil
		}
		s, ok := val.TryString()
		if !ok {
			return nil, fmt.Errorf("element %d is not a string", i)
		}
		out = append(out, s)
	}
}

// Close releases resources associated with the parser's Lua runtime.
func (p *LuaParser) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cleanup != nil {
		p.cleanup()
		p.cleanup = nil
	}
	return nil
}

// getTableBool retrieves a boolean value from a Lua table.
// Returns nil if the key doesn't exist or is not a boolean.
func getTableBool(table *rt.Table, key string) *bool {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}
	if b, ok := val.TryBool(); ok {
		return &b
	}
	// Handle string "true"/"false" for compatibility
	if s, ok := val.TryString(); ok {
		b := s == "true" || s == "yes" || s == "1"
		return &b
	}
	return nil
}

// getTableString retrieves a string value from a Lua table.
// Returns nil if the key doesn't exist or is not a string.
func getTableString(table *rt.Table, key string) *string {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}
	if s, ok := val.TryString(); ok {
		return &s
	}
	return nil
}

// getTableFloat retrieves a float64 value from a Lua table.
// Returns nil if the key doesn't exist or is not a number.
func getTableFloat(table *rt.Table, key string) *float64 {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}
	if n, ok := val.TryFloat(); ok {
		return &n
	}
	if n, ok := val.TryInt(); ok {
		f := float64(n)
		return &f
	}
	return nil
}

// getTableInt retrieves an int value from a Lua table.
// Returns nil if the key doesn't exist or is not a number.
func getTableInt(table *rt.Table, key string) *int {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}
	if n, ok := val.TryInt(); ok {
		i := int(n)
		return &i
	}
	// Try float conversion (truncate)
	if f, ok := val.TryFloat(); ok {
		i := int(f)
		return &i
	}
	return nil
}

// getTableSeconds retrieves a number of seconds, which may be fractional,
// as a time.Duration.
func getTableSeconds(table *rt.Table, key string) *time.Duration {
	f := getTableFloat(table, key)
	if f == nil {
		return nil
	}
	d := time.Duration(math.Round(*f * float64(time.Second)))
	return &d
}
