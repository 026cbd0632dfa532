package sysinfo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/opd-ai/go-sysinfo/internal/procfs"
)

const (
	procCPUInfo = "/proc/cpuinfo"
	procStat    = "/proc/stat"
)

// CPUCores returns the number of CPU cores.
//
// Linux counts the processor entries of /proc/cpuinfo; Darwin asks sysctl
// hw.ncpu; Windows sums NumberOfCores over all sockets reported by wmic.
func (s *System) CPUCores(ctx context.Context) (int, error) {
	const op = "CPUCores"
	p, osName, err := s.platform(ctx, op)
	if err != nil {
		return 0, err
	}

	switch p {
	case platformLinux:
		data, err := s.readFile(ctx, op, procCPUInfo)
		if err != nil {
			return 0, err
		}
		n, err := procfs.CountProcessors(data)
		if err != nil {
			return 0, fieldError(op, procCPUInfo, err)
		}
		return n, nil

	case platformDarwin:
		out, err := s.run(ctx, op, "sysctl", "-n", "hw.ncpu")
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(out))
		if err != nil {
			return 0, fieldError(op, "sysctl -n hw.ncpu", fmt.Errorf("%w: %v", ErrFieldNotFound, err))
		}
		return n, nil

	case platformWindows:
		out, err := s.run(ctx, op, "wmic", "cpu", "get", "NumberOfCores")
		if err != nil {
			return 0, err
		}
		n, err := sumIntegerLines(out)
		if err != nil {
			return 0, fieldError(op, "wmic cpu get NumberOfCores", err)
		}
		return n, nil

	default:
		return 0, unsupported(op, osName)
	}
}

// sumIntegerLines adds every line of out that is a bare integer. wmic prints
// a header line followed by one value per socket.
func sumIntegerLines(out string) (int, error) {
	total, found := 0, false
	for _, line := range strings.Split(out, "\n") {
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			continue
		}
		total += n
		found = true
	}
	if !found {
		return 0, fmt.Errorf("no core count in output: %w", ErrFieldNotFound)
	}
	return total, nil
}

// readCPUStat reads one CPUStat snapshot. Linux only.
func (s *System) readCPUStat(op string) func(context.Context) (procfs.CPUStat, error) {
	return func(ctx context.Context) (procfs.CPUStat, error) {
		data, err := s.readFile(ctx, op, procStat)
		if err != nil {
			return nil, err
		}
		stat, err := procfs.ParseStat(data)
		if err != nil {
			return nil, fieldError(op, procStat, err)
		}
		return stat, nil
	}
}

// sampleCPU takes two /proc/stat snapshots d apart and returns the usage
// percentage of one CPU id.
func (s *System) sampleCPU(ctx context.Context, op, id string, d time.Duration) (float64, error) {
	p, osName, err := s.platform(ctx, op)
	if err != nil {
		return 0, err
	}
	if p != platformLinux {
		return 0, unsupported(op, osName)
	}

	first, second, err := sample(ctx, op, d, s.readCPUStat(op))
	if err != nil {
		return 0, err
	}

	prev, ok := first[id]
	if !ok {
		return 0, fieldError(op, procStat, fmt.Errorf("cpu %q: %w", id, ErrFieldNotFound))
	}
	curr, ok := second[id]
	if !ok {
		return 0, fieldError(op, procStat, fmt.Errorf("cpu %q: %w", id, ErrFieldNotFound))
	}

	usage := procfs.UsagePercent(prev, curr)
	s.logger.Debug("sampled cpu", "op", op, "cpu", id, "duration", d,
		"source", s.src.Name(), "usage", usage)
	return usage, nil
}

// CPUUsage returns the aggregate CPU usage in percent over d. Linux only.
func (s *System) CPUUsage(ctx context.Context, d time.Duration) (float64, error) {
	return s.sampleCPU(ctx, "CPUUsage", procfs.TotalCPU, d)
}

// CPUUtilisation returns the usage of one CPU over d, truncated to a whole
// percent. core is TotalKey or a core index such as "0". Linux only.
func (s *System) CPUUtilisation(ctx context.Context, core string, d time.Duration) (int, error) {
	usage, err := s.sampleCPU(ctx, "CPUUtilisation", core, d)
	if err != nil {
		return 0, err
	}
	return int(usage), nil
}
