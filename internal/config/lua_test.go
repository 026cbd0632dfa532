package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLuaParserDefaults(t *testing.T) {
	p := NewLuaParser()
	defer p.Close()

	cfg, err := p.Parse([]byte(`-- empty configuration`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := DefaultConfig()
	if !reflect.DeepEqual(*cfg, want) {
		t.Errorf("Parse() = %+v, want defaults %+v", *cfg, want)
	}
}

func TestLuaParserFull(t *testing.T) {
	t.Setenv("SYSINFO_TEST_HOME", "/home/ops")

	p := NewLuaParser()
	defer p.Close()

	content := `
local base = "/srv"
sysinfo.config = {
    duration = 0.25,
    disk_path = base .. "/data",
    proc_root = "${SYSINFO_TEST_ROOT:-/host}",
    log_level = "debug",
    log_format = "json",
    output = "json",
    interval = 10,
    metrics = { "os", "cpu_usage", "network_usage" },
    remote = {
        host = "db1",
        port = 2222,
        user = "ops",
        key_file = "${SYSINFO_TEST_HOME}/.ssh/id_ed25519",
        known_hosts = "$SYSINFO_TEST_HOME/.ssh/known_hosts",
        command_timeout = 2,
    },
}
`
	cfg, err := p.Parse([]byte(content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Duration != 250*time.Millisecond {
		t.Errorf("Duration = %v, want 250ms", cfg.Duration)
	}
	if cfg.Interval != 10*time.Second {
		t.Errorf("Interval = %v, want 10s", cfg.Interval)
	}
	if cfg.DiskPath != "/srv/data" {
		t.Errorf("DiskPath = %q, want /srv/data", cfg.DiskPath)
	}
	if cfg.ProcRoot != "/host" {
		t.Errorf("ProcRoot = %q, want /host", cfg.ProcRoot)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" || cfg.Output != "json" {
		t.Errorf("logging/output = %q %q %q", cfg.LogLevel, cfg.LogFormat, cfg.Output)
	}
	if want := []string{"os", "cpu_usage", "network_usage"}; !reflect.DeepEqual(cfg.Metrics, want) {
		t.Errorf("Metrics = %v, want %v", cfg.Metrics, want)
	}

	r := cfg.Remote
	if r == nil {
		t.Fatal("Remote = nil")
	}
	want := RemoteConfig{
		Host:           "db1",
		Port:           2222,
		User:           "ops",
		KeyFile:        "/home/ops/.ssh/id_ed25519",
		KnownHosts:     "/home/ops/.ssh/known_hosts",
		CommandTimeout: 2 * time.Second,
	}
	if *r != want {
		t.Errorf("Remote = %+v, want %+v", *r, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLuaParserRemoteDefaults(t *testing.T) {
	p := NewLuaParser()
	defer p.Close()

	cfg, err := p.Parse([]byte(`sysinfo.config = { remote = { host = "h", user = "u", agent = true } }`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Remote.Port != DefaultSSHPort {
		t.Errorf("Port = %d, want %d", cfg.Remote.Port, DefaultSSHPort)
	}
	if cfg.Remote.CommandTimeout != DefaultCommandTimeout {
		t.Errorf("CommandTimeout = %v, want %v", cfg.Remote.CommandTimeout, DefaultCommandTimeout)
	}
	if !cfg.Remote.Agent {
		t.Error("Agent = false, want true")
	}
}

func TestLuaParserErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"syntax error", `sysinfo.config = {`, "compile"},
		{"runtime error", `error("boom")`, "execute"},
		{"config not a table", `sysinfo.config = 5`, "not a table"},
		{"global not a table", `sysinfo = "x"`, "not a table"},
		{"metrics not a table", `sysinfo.config = { metrics = "os" }`, "metrics"},
		{"metric not a string", `sysinfo.config = { metrics = { "os", 3 } }`, "element 2"},
		{"remote not a table", `sysinfo.config = { remote = true }`, "remote"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewLuaParser()
			defer p.Close()

			_, err := p.Parse([]byte(tt.content))
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLuaParserReuse(t *testing.T) {
	p := NewLuaParser()
	defer p.Close()

	if _, err := p.Parse([]byte(`sysinfo.config = { disk_path = "/a" }`)); err != nil {
		t.Fatalf("first Parse failed: %v", err)
	}
	cfg, err := p.Parse([]byte(`-- nothing`))
	if err != nil {
		t.Fatalf("second Parse failed: %v", err)
	}
	if cfg.DiskPath != "" {
		t.Errorf("DiskPath = %q leaked from previous parse", cfg.DiskPath)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.lua")
	if err := os.WriteFile(good, []byte(`sysinfo.config = { metrics = { "hostname" } }`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(good)
	if err != nil {
		t.Fatalf("Load(good) failed: %v", err)
	}
	if !reflect.DeepEqual(cfg.Metrics, []string{"hostname"}) {
		t.Errorf("Metrics = %v", cfg.Metrics)
	}

	bad := filepath.Join(dir, "bad.lua")
	if err := os.WriteFile(bad, []byte(`sysinfo.config = { metrics = { "uptime" } }`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), "uptime") {
		t.Errorf("Load(bad) error = %v, want unknown metric", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.lua")); err == nil {
		t.Error("Load(missing) succeeded, want error")
	}
}
