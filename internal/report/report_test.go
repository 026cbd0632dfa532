package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-sysinfo/pkg/source"
	"github.com/opd-ai/go-sysinfo/pkg/sysinfo"
)

// staticSource serves the same files on every read.
type staticSource struct {
	sysname  string
	files    map[string]string
	dirs     map[string][]string
	commands map[string]string
}

func (s *staticSource) Name() string { return "static" }

func (s *staticSource) ReadFile(_ context.Context, path string) ([]byte, error) {
	data, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, source.ErrNotExist)
	}
	return []byte(data), nil
}

func (s *staticSource) ReadDir(_ context.Context, path string) ([]string, error) {
	names, ok := s.dirs[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, source.ErrNotExist)
	}
	return names, nil
}

func (s *staticSource) Run(_ context.Context, name string, args ...string) (string, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	out, ok := s.commands[line]
	if !ok {
		return "", fmt.Errorf("%s: no such command", line)
	}
	return out, nil
}

func (s *staticSource) Uname(context.Context) (source.Uname, error) {
	return source.Uname{Sysname: s.sysname, Nodename: "node1", Machine: "x86_64"}, nil
}

func (s *staticSource) DiskUsage(context.Context, string) (source.DiskUsage, error) {
	return source.DiskUsage{Total: 2048 << 20, Free: 1024 << 20}, nil
}

func linuxHost() *staticSource {
	return &staticSource{
		sysname: "Linux",
		files: map[string]string{
			"/proc/cpuinfo":  "processor : 0\nprocessor : 1\n",
			"/proc/stat":     "cpu  10 0 10 80 0 0 0 0 0\ncpu0 10 0 10 80 0 0 0 0 0\n",
			"/proc/meminfo":  "MemTotal: 2048000 kB\nMemFree: 1024000 kB\n",
			"/proc/diskstats": "   8 0 sda 1 0 100 0 1 0 200 0 0 0 0\n",
			"/sys/class/net/eth0/statistics/rx_bytes": "1000\n",
			"/sys/class/net/eth0/statistics/tx_bytes": "2000\n",
		},
		dirs: map[string][]string{"/sys/class/net": {"eth0", "lo"}},
	}
}

func newSystem(src source.Source) *sysinfo.System {
	return sysinfo.New(sysinfo.Options{Source: src, DiskPath: "/"})
}

func TestCollectAll(t *testing.T) {
	r, err := Collect(context.Background(), newSystem(linuxHost()), nil, 0)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if r.ID == uuid.Nil {
		t.Error("ID is nil")
	}
	if r.Source != "static" {
		t.Errorf("Source = %q, want static", r.Source)
	}
	if r.OS == nil || *r.OS != "Linux" {
		t.Errorf("OS = %v", r.OS)
	}
	if r.ArchFamily == nil || *r.ArchFamily != "x86" {
		t.Errorf("ArchFamily = %v", r.ArchFamily)
	}
	if r.Hostname == nil || *r.Hostname != "node1" {
		t.Errorf("Hostname = %v", r.Hostname)
	}
	if r.CPUCores == nil || *r.CPUCores != 2 {
		t.Errorf("CPUCores = %v", r.CPUCores)
	}
	if r.CPUUsage == nil || *r.CPUUsage != 0 {
		t.Errorf("CPUUsage = %v, want 0 for identical snapshots", r.CPUUsage)
	}
	if r.MemoryTotal == nil || *r.MemoryTotal != 2000 {
		t.Errorf("MemoryTotal = %v", r.MemoryTotal)
	}
	if r.DiskFree == nil || *r.DiskFree != 1024 {
		t.Errorf("DiskFree = %v", r.DiskFree)
	}
	if _, ok := r.IOUsage["sda"]; !ok {
		t.Errorf("IOUsage = %v, missing sda", r.IOUsage)
	}
	if _, ok := r.NetworkUsage[sysinfo.TotalKey]; !ok {
		t.Errorf("NetworkUsage = %v, missing total", r.NetworkUsage)
	}
}

func TestCollectDefaultsFollowPlatform(t *testing.T) {
	darwin := &staticSource{
		sysname: "Darwin",
		commands: map[string]string{
			"sysctl -n hw.ncpu":            "8\n",
			"sysctl -n hw.memsize":         "17179869184\n",
			"sysctl -n vm.page_free_count": "4096\n",
			"sysctl -n hw.pagesize":        "4096\n",
		},
	}
	r, err := Collect(context.Background(), newSystem(darwin), nil, 0)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if r.OS == nil || *r.OS != "Darwin" {
		t.Errorf("OS = %v", r.OS)
	}
	if r.CPUCores == nil || *r.CPUCores != 8 {
		t.Errorf("CPUCores = %v", r.CPUCores)
	}
	if r.MemoryTotal == nil || *r.MemoryTotal != 16384 {
		t.Errorf("MemoryTotal = %v", r.MemoryTotal)
	}
	if r.DiskTotal == nil || *r.DiskTotal != 2048 {
		t.Errorf("DiskTotal = %v", r.DiskTotal)
	}
	if r.CPUUsage != nil || r.IOUsage != nil || r.NetworkUsage != nil {
		t.Errorf("Linux-only metrics collected on Darwin: %+v", r)
	}

	windows := &staticSource{sysname: "Windows_NT", commands: map[string]string{
		"wmic cpu get NumberOfCores": "NumberOfCores\n4\n",
	}}
	r, err = Collect(context.Background(), newSystem(windows), nil, 0)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if r.CPUCores == nil || *r.CPUCores != 4 {
		t.Errorf("CPUCores = %v", r.CPUCores)
	}
	if r.MemoryTotal != nil {
		t.Errorf("MemoryTotal = %v, want nil on Windows", *r.MemoryTotal)
	}
}

func TestDefaultMetrics(t *testing.T) {
	tests := []struct {
		osName string
		want   []string
	}{
		{"Linux", Metrics},
		{"Darwin", []string{MetricOS, MetricArch, MetricArchFamily, MetricHostname,
			MetricCPUCores, MetricMemoryTotal, MetricMemoryFree, MetricDiskTotal, MetricDiskFree}},
		{"Windows_NT", []string{MetricOS, MetricArch, MetricArchFamily, MetricHostname,
			MetricCPUCores, MetricDiskTotal, MetricDiskFree}},
		{"FreeBSD", []string{MetricOS, MetricArch, MetricArchFamily, MetricHostname,
			MetricDiskTotal, MetricDiskFree}},
	}
	for _, tt := range tests {
		t.Run(tt.osName, func(t *testing.T) {
			got := DefaultMetrics(tt.osName)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("DefaultMetrics(%q) = %v, want %v", tt.osName, got, tt.want)
			}
		})
	}
}

func TestCollectSelection(t *testing.T) {
	r, err := Collect(context.Background(), newSystem(linuxHost()), []string{MetricHostname, MetricHostname, MetricCPUCores}, 0)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if r.Hostname == nil || r.CPUCores == nil {
		t.Fatalf("requested metrics missing: %+v", r)
	}
	if r.OS != nil || r.CPUUsage != nil || r.IOUsage != nil {
		t.Errorf("unrequested metrics present: %+v", r)
	}
}

func TestCollectErrors(t *testing.T) {
	_, err := Collect(context.Background(), newSystem(linuxHost()), []string{"uptime"}, 0)
	if err == nil || !strings.Contains(err.Error(), "uptime") {
		t.Errorf("Collect(uptime) error = %v", err)
	}

	darwin := linuxHost()
	darwin.sysname = "Darwin"
	_, err = Collect(context.Background(), newSystem(darwin), []string{MetricOS, MetricIOUsage}, 0)
	if !errors.Is(err, sysinfo.ErrUnsupportedPlatform) {
		t.Errorf("Collect() error = %v, want ErrUnsupportedPlatform", err)
	}
	if err != nil && !strings.HasPrefix(err.Error(), "io_usage:") {
		t.Errorf("error %q lacks metric prefix", err)
	}
}

func TestIsMetric(t *testing.T) {
	for _, m := range Metrics {
		if !IsMetric(m) {
			t.Errorf("IsMetric(%q) = false", m)
		}
	}
	if IsMetric("uptime") {
		t.Error("IsMetric(uptime) = true")
	}
}

func sampleReport() *Report {
	osName, cores, usage, free := "Linux", 4, 12.5, 512
	return &Report{
		Source:   "local",
		OS:       &osName,
		CPUCores: &cores,
		CPUUsage: &usage,
		DiskFree: &free,
		NetworkUsage: map[string]sysinfo.NetworkUsage{
			sysinfo.TotalKey: {Download: 1.5, Upload: 0.25},
			"wlan0":          {Download: 1, Upload: 0},
			"eth0":           {Download: 0.5, Upload: 0.25},
		},
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleReport().WriteText(&buf); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{"os ", "Linux", "cpu_cores", "12.50%", "512 MB", "down 1.50 MB  up 0.25 MB"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "memory_total") {
		t.Errorf("output contains unrequested metric:\n%s", out)
	}

	eth := strings.Index(out, "network_usage.eth0")
	wlan := strings.Index(out, "network_usage.wlan0")
	total := strings.Index(out, "network_usage.total")
	if !(eth < wlan && wlan < total) {
		t.Errorf("rows not sorted with total last:\n%s", out)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleReport().Write(&buf, FormatJSON); err != nil {
		t.Fatalf("Write(json) error = %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got["os"] != "Linux" || got["cpu_cores"] != float64(4) {
		t.Errorf("JSON = %v", got)
	}
	if _, ok := got["memory_total_mb"]; ok {
		t.Error("JSON contains unrequested memory_total_mb")
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleReport().Write(&buf, FormatYAML); err != nil {
		t.Fatalf("Write(yaml) error = %v", err)
	}
	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if got["os"] != "Linux" || got["cpu_cores"] != 4 {
		t.Errorf("YAML = %v", got)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := sampleReport().Write(&bytes.Buffer{}, "xml"); err == nil {
		t.Error("Write(xml) succeeded")
	}
}
