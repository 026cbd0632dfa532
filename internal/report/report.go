// Package report gathers a selection of sysinfo metrics into one Report.
package report

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/go-sysinfo/pkg/sysinfo"
)

// Metric names accepted by Collect.
const (
	MetricOS           = "os"
	MetricArch         = "arch"
	MetricArchFamily   = "arch_family"
	MetricHostname     = "hostname"
	MetricCPUCores     = "cpu_cores"
	MetricCPUUsage     = "cpu_usage"
	MetricMemoryTotal  = "memory_total"
	MetricMemoryFree   = "memory_free"
	MetricDiskTotal    = "disk_total"
	MetricDiskFree     = "disk_free"
	MetricIOUsage      = "io_usage"
	MetricNetworkUsage = "network_usage"
)

// Metrics lists every metric name in report order.
var Metrics = []string{
	MetricOS, MetricArch, MetricArchFamily, MetricHostname,
	MetricCPUCores, MetricCPUUsage,
	MetricMemoryTotal, MetricMemoryFree,
	MetricDiskTotal, MetricDiskFree,
	MetricIOUsage, MetricNetworkUsage,
}

// DefaultMetrics returns the metrics a host running osName supports, in
// report order. The rate metrics and /proc readers are Linux only.
func DefaultMetrics(osName string) []string {
	identity := []string{MetricOS, MetricArch, MetricArchFamily, MetricHostname}
	disk := []string{MetricDiskTotal, MetricDiskFree}
	switch {
	case osName == "Linux":
		return slices.Clone(Metrics)
	case osName == "Darwin":
		return slices.Concat(identity, []string{MetricCPUCores, MetricMemoryTotal, MetricMemoryFree}, disk)
	case strings.HasPrefix(osName, "Windows"):
		return slices.Concat(identity, []string{MetricCPUCores}, disk)
	default:
		return slices.Concat(identity, disk)
	}
}

// IsMetric reports whether name is a known metric.
func IsMetric(name string) bool {
	return slices.Contains(Metrics, name)
}

// Report is one collection of metrics. Fields of metrics that were not
// requested are nil.
type Report struct {
	ID       uuid.UUID     `json:"id" yaml:"id"`
	Source   string        `json:"source" yaml:"source"`
	Time     time.Time     `json:"time" yaml:"time"`
	Duration time.Duration `json:"duration_ns" yaml:"duration"`

	OS         *string `json:"os,omitempty" yaml:"os,omitempty"`
	Arch       *string `json:"arch,omitempty" yaml:"arch,omitempty"`
	ArchFamily *string `json:"arch_family,omitempty" yaml:"arch_family,omitempty"`
	Hostname   *string `json:"hostname,omitempty" yaml:"hostname,omitempty"`

	CPUCores *int     `json:"cpu_cores,omitempty" yaml:"cpu_cores,omitempty"`
	CPUUsage *float64 `json:"cpu_usage,omitempty" yaml:"cpu_usage,omitempty"`

	MemoryTotal *int `json:"memory_total_mb,omitempty" yaml:"memory_total_mb,omitempty"`
	MemoryFree  *int `json:"memory_free_mb,omitempty" yaml:"memory_free_mb,omitempty"`
	DiskTotal   *int `json:"disk_total_mb,omitempty" yaml:"disk_total_mb,omitempty"`
	DiskFree    *int `json:"disk_free_mb,omitempty" yaml:"disk_free_mb,omitempty"`

	IOUsage      map[string]sysinfo.IOUsage      `json:"io_usage,omitempty" yaml:"io_usage,omitempty"`
	NetworkUsage map[string]sysinfo.NetworkUsage `json:"network_usage,omitempty" yaml:"network_usage,omitempty"`
}

// Collect queries sys for the named metrics. An empty list means the
// DefaultMetrics of the source's OS. Every metric runs in its own goroutine,
// so the rate metrics share one sampling window of d. The first error
// cancels the rest and is returned.
func Collect(ctx context.Context, sys *sysinfo.System, metrics []string, d time.Duration) (*Report, error) {
	if len(metrics) == 0 {
		osName, err := sys.OS(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", MetricOS, err)
		}
		metrics = DefaultMetrics(osName)
	}
	for _, m := range metrics {
		if !IsMetric(m) {
			return nil, fmt.Errorf("unknown metric %q", m)
		}
	}

	r := &Report{
		ID:       uuid.New(),
		Source:   sys.SourceName(),
		Time:     time.Now().UTC(),
		Duration: d,
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, m := range dedupe(metrics) {
		g.Go(func() error {
			if err := collectOne(ctx, sys, r, m, d); err != nil {
				return fmt.Errorf("%s: %w", m, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return r, nil
}

// collectOne fills the field of r for metric m. Each metric owns a
// distinct field.
func collectOne(ctx context.Context, sys *sysinfo.System, r *Report, m string, d time.Duration) error {
	var err error
	switch m {
	case MetricOS:
		r.OS, err = ptr(sys.OS(ctx))
	case MetricArch:
		r.Arch, err = ptr(sys.Arch(ctx))
	case MetricArchFamily:
		var a sysinfo.Arch
		if a, err = sys.ArchFamily(ctx); err == nil {
			s := a.String()
			r.ArchFamily = &s
		}
	case MetricHostname:
		r.Hostname, err = ptr(sys.Hostname(ctx))
	case MetricCPUCores:
		r.CPUCores, err = ptr(sys.CPUCores(ctx))
	case MetricCPUUsage:
		r.CPUUsage, err = ptr(sys.CPUUsage(ctx, d))
	case MetricMemoryTotal:
		r.MemoryTotal, err = ptr(sys.MemoryTotal(ctx))
	case MetricMemoryFree:
		r.MemoryFree, err = ptr(sys.MemoryFree(ctx))
	case MetricDiskTotal:
		r.DiskTotal, err = ptr(sys.DiskTotal(ctx))
	case MetricDiskFree:
		r.DiskFree, err = ptr(sys.DiskFree(ctx))
	case MetricIOUsage:
		r.IOUsage, err = sys.IOUsage(ctx, d)
	case MetricNetworkUsage:
		r.NetworkUsage, err = sys.NetworkUsage(ctx, d)
	}
	return err
}

func ptr[T any](v T, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
