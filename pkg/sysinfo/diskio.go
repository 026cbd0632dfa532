package sysinfo

import (
	"context"
	"time"

	"github.com/opd-ai/go-sysinfo/internal/procfs"
)

const procDiskstats = "/proc/diskstats"

// invalidDisks lists substrings of device names that IOUsage skips.
var invalidDisks = []string{"loop", "ram"}

// IOUsage is the data moved by a disk during a sampling window, in megabytes.
type IOUsage struct {
	Read  float64 `json:"read"`
	Write float64 `json:"write"`
}

// IOUsage returns per-device disk throughput over d, keyed by device name,
// plus a TotalKey entry summing all devices. Loop and RAM devices are
// excluded. Linux only.
func (s *System) IOUsage(ctx context.Context, d time.Duration) (map[string]IOUsage, error) {
	const op = "IOUsage"
	p, osName, err := s.platform(ctx, op)
	if err != nil {
		return nil, err
	}
	if p != platformLinux {
		return nil, unsupported(op, osName)
	}

	first, second, err := sample(ctx, op, d, s.readDiskCounters)
	if err != nil {
		return nil, err
	}
	deltas := diffCounters(first, second, excludeSubstrings(invalidDisks))

	result := make(map[string]IOUsage, len(deltas)+1)
	var total IOUsage
	for name, dc := range deltas {
		u := IOUsage{
			Read:  float64(dc.a*procfs.SectorSize) / bytesPerMB,
			Write: float64(dc.b*procfs.SectorSize) / bytesPerMB,
		}
		result[name] = u
		total.Read += u.Read
		total.Write += u.Write
	}
	result[TotalKey] = total

	s.logger.Debug("sampled disk io", "duration", d, "source", s.src.Name(),
		"devices", len(deltas), "read_mb", total.Read, "write_mb", total.Write)
	return result, nil
}

// readDiskCounters reads sectors read/written per device. Lines whose
// counters do not parse are skipped.
func (s *System) readDiskCounters(ctx context.Context) (counterSample, error) {
	const op = "IOUsage"
	data, err := s.readFile(ctx, op, procDiskstats)
	if err != nil {
		return nil, err
	}
	stats, err := procfs.ParseDiskstats(data)
	if err != nil {
		return nil, fieldError(op, procDiskstats, err)
	}

	counters := make(counterSample, len(stats))
	for name, fields := range stats {
		read, written, err := procfs.Sectors(fields)
		if err != nil {
			s.logger.Debug("skipping disk", "device", name, "error", err)
			continue
		}
		counters[name] = counterPair{a: read, b: written}
	}
	return counters, nil
}
