package sysinfo

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/opd-ai/go-sysinfo/internal/procfs"
)

const sysClassNet = "/sys/class/net"

// invalidInterfaces lists substrings of interface names that NetworkUsage
// skips: virtual, container, loopback and tunnel interfaces, VLAN
// sub-interfaces, and the bonding control file.
var invalidInterfaces = []string{"veth", "docker", "lo", "tun", "vboxnet", ".", "bonding_masters"}

// NetworkUsage is the data moved by an interface during a sampling window,
// in megabytes rounded to two decimals.
type NetworkUsage struct {
	Download float64 `json:"download"`
	Upload   float64 `json:"upload"`
}

// NetworkUsage returns per-interface throughput over d, keyed by interface
// name, plus a TotalKey entry summing all interfaces. Linux only.
func (s *System) NetworkUsage(ctx context.Context, d time.Duration) (map[string]NetworkUsage, error) {
	const op = "NetworkUsage"
	p, osName, err := s.platform(ctx, op)
	if err != nil {
		return nil, err
	}
	if p != platformLinux {
		return nil, unsupported(op, osName)
	}

	names, err := s.src.ReadDir(ctx, sysClassNet)
	if err != nil {
		return nil, &Error{Op: op, Source: sysClassNet, Err: fmt.Errorf("%w: %w", ErrSourceUnavailable, err)}
	}
	keep := excludeSubstrings(invalidInterfaces)
	var ifaces []string
	for _, name := range names {
		if keep(name) {
			ifaces = append(ifaces, name)
		}
	}

	read := func(ctx context.Context) (counterSample, error) {
		return s.readNetCounters(ctx, op, ifaces)
	}
	first, second, err := sample(ctx, op, d, read)
	if err != nil {
		return nil, err
	}
	deltas := diffCounters(first, second, keep)

	result := make(map[string]NetworkUsage, len(deltas)+1)
	var total NetworkUsage
	for name, dc := range deltas {
		u := NetworkUsage{
			Download: round2(float64(dc.a) / bytesPerMB),
			Upload:   round2(float64(dc.b) / bytesPerMB),
		}
		result[name] = u
		total.Download += u.Download
		total.Upload += u.Upload
	}
	result[TotalKey] = NetworkUsage{Download: round2(total.Download), Upload: round2(total.Upload)}

	s.logger.Debug("sampled network", "duration", d, "source", s.src.Name(),
		"interfaces", len(deltas), "download_mb", total.Download, "upload_mb", total.Upload)
	return result, nil
}

// readNetCounters reads received and transmitted byte counters per interface.
func (s *System) readNetCounters(ctx context.Context, op string, ifaces []string) (counterSample, error) {
	counters := make(counterSample, len(ifaces))
	for _, name := range ifaces {
		rx, err := s.readCounter(ctx, op, path.Join(sysClassNet, name, "statistics", "rx_bytes"))
		if err != nil {
			return nil, err
		}
		tx, err := s.readCounter(ctx, op, path.Join(sysClassNet, name, "statistics", "tx_bytes"))
		if err != nil {
			return nil, err
		}
		counters[name] = counterPair{a: rx, b: tx}
	}
	return counters, nil
}

func (s *System) readCounter(ctx context.Context, op, file string) (uint64, error) {
	data, err := s.readFile(ctx, op, file)
	if err != nil {
		return 0, err
	}
	v, err := procfs.ParseCounter(data)
	if err != nil {
		return 0, fieldError(op, file, err)
	}
	return v, nil
}
