package report

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-sysinfo/pkg/sysinfo"
)

// Output formats accepted by Write.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Write renders r to w in the named format.
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case FormatText, "":
		return r.WriteText(w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WriteText renders r as an aligned two-column table. Per-device and
// per-interface rows follow their metric, sorted by name with the total last.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	row := func(name, value string) {
		fmt.Fprintf(tw, "%s\t%s\n", name, value)
	}

	row("source", r.Source)
	if r.OS != nil {
		row("os", *r.OS)
	}
	if r.Arch != nil {
		row("arch", *r.Arch)
	}
	if r.ArchFamily != nil {
		row("arch_family", *r.ArchFamily)
	}
	if r.Hostname != nil {
		row("hostname", *r.Hostname)
	}
	if r.CPUCores != nil {
		row("cpu_cores", strconv.Itoa(*r.CPUCores))
	}
	if r.CPUUsage != nil {
		row("cpu_usage", fmt.Sprintf("%.2f%%", *r.CPUUsage))
	}
	mb := func(name string, v *int) {
		if v != nil {
			row(name, fmt.Sprintf("%d MB", *v))
		}
	}
	mb("memory_total", r.MemoryTotal)
	mb("memory_free", r.MemoryFree)
	mb("disk_total", r.DiskTotal)
	mb("disk_free", r.DiskFree)

	if r.IOUsage != nil {
		for _, name := range sortedKeys(r.IOUsage) {
			u := r.IOUsage[name]
			row("io_usage."+name, fmt.Sprintf("read %.2f MB  write %.2f MB", u.Read, u.Write))
		}
	}
	if r.NetworkUsage != nil {
		for _, name := range sortedKeys(r.NetworkUsage) {
			u := r.NetworkUsage[name]
			row("network_usage."+name, fmt.Sprintf("down %.2f MB  up %.2f MB", u.Download, u.Upload))
		}
	}

	return tw.Flush()
}

// sortedKeys returns the keys of m in order, with sysinfo.TotalKey last.
func sortedKeys[V any](m map[string]V) []string {
	keys := slices.Sorted(maps.Keys(m))
	if i := slices.Index(keys, sysinfo.TotalKey); i >= 0 {
		keys = append(slices.Delete(keys, i, i+1), sysinfo.TotalKey)
	}
	return keys
}
