// Package procfs parses the Linux /proc and /sys text formats the sysinfo
// facade samples. Parsers take file contents, not paths, so the same code
// serves local and remote sources.
package procfs

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrFieldNotFound is returned when a required field is missing from a source.
var ErrFieldNotFound = errors.New("field not found")

// TotalCPU is the CPUStat key of the aggregate of all cores.
const TotalCPU = "total"

// CPUTimes stores raw CPU tick counters from one /proc/stat line.
type CPUTimes struct {
	User    uint64
	Nice    uint64
	System  uint64
	Idle    uint64
	IOWait  uint64
	IRQ     uint64
	SoftIRQ uint64
	Steal   uint64
	Guest   uint64
}

// IdleTime returns ticks spent idle, including waiting on I/O.
func (c CPUTimes) IdleTime() uint64 {
	return c.Idle + c.IOWait
}

// BusyTime returns ticks spent doing work. Guest time is already counted in User.
func (c CPUTimes) BusyTime() uint64 {
	return c.User + c.Nice + c.System + c.IRQ + c.SoftIRQ + c.Steal
}

// Total returns idle plus busy ticks.
func (c CPUTimes) Total() uint64 {
	return c.IdleTime() + c.BusyTime()
}

func (c CPUTimes) add(o CPUTimes) CPUTimes {
	return CPUTimes{
		User:    c.User + o.User,
		Nice:    c.Nice + o.Nice,
		System:  c.System + o.System,
		Idle:    c.Idle + o.Idle,
		IOWait:  c.IOWait + o.IOWait,
		IRQ:     c.IRQ + o.IRQ,
		SoftIRQ: c.SoftIRQ + o.SoftIRQ,
		Steal:   c.Steal + o.Steal,
		Guest:   c.Guest + o.Guest,
	}
}

// CPUStat maps a CPU id to its counters. Keys are TotalCPU or a decimal
// core index ("0", "1", ...).
type CPUStat map[string]CPUTimes

// ParseStat parses the cpu lines of /proc/stat.
// When the aggregate "cpu" line is absent, TotalCPU is the sum of all cores.
func ParseStat(data []byte) (CPUStat, error) {
	stat := make(CPUStat)
	hasTotal := false

	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || !strings.HasPrefix(fields[0], "cpu") {
			continue
		}

		t, err := parseCPULine(fields[1:])
		if err != nil {
			return nil, fmt.Errorf("parsing %s line: %w", fields[0], err)
		}

		if fields[0] == "cpu" {
			stat[TotalCPU] = t
			hasTotal = true
			continue
		}
		id := strings.TrimPrefix(fields[0], "cpu")
		if _, err := strconv.Atoi(id); err != nil {
			continue
		}
		stat[id] = t
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning /proc/stat: %w", err)
	}
	if len(stat) == 0 {
		return nil, fmt.Errorf("no cpu lines: %w", ErrFieldNotFound)
	}

	if !hasTotal {
		var total CPUTimes
		for _, t := range stat {
			total = total.add(t)
		}
		stat[TotalCPU] = total
	}

	return stat, nil
}

// parseCPULine parses the counters after the cpu label. Kernels before 2.6.33
// report fewer columns; the missing ones stay zero.
func parseCPULine(fields []string) (CPUTimes, error) {
	if len(fields) < 4 {
		return CPUTimes{}, fmt.Errorf("insufficient fields: got %d, need at least 4", len(fields))
	}

	values := make([]uint64, 9)
	for i := 0; i < len(values) && i < len(fields); i++ {
		v, err := strconv.ParseUint(fields[i], 10, 64)
		if err != nil {
			return CPUTimes{}, fmt.Errorf("parsing field %d: %w", i, err)
		}
		values[i] = v
	}

	return CPUTimes{
		User:    values[0],
		Nice:    values[1],
		System:  values[2],
		Idle:    values[3],
		IOWait:  values[4],
		IRQ:     values[5],
		SoftIRQ: values[6],
		Steal:   values[7],
		Guest:   values[8],
	}, nil
}

// UsagePercent returns the busy share of the ticks elapsed between prev and
// curr, in percent. Counters that went backwards count as zero.
func UsagePercent(prev, curr CPUTimes) float64 {
	totalDelta := delta(prev.Total(), curr.Total())
	if totalDelta == 0 {
		return 0
	}
	idleDelta := delta(prev.IdleTime(), curr.IdleTime())
	if idleDelta > totalDelta {
		return 0
	}
	return float64(totalDelta-idleDelta) / float64(totalDelta) * 100
}

func delta(prev, curr uint64) uint64 {
	if curr < prev {
		return 0
	}
	return curr - prev
}
