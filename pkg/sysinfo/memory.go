package sysinfo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/opd-ai/go-sysinfo/internal/procfs"
)

const procMemInfo = "/proc/meminfo"

// MemoryTotal returns the total physical memory in megabytes.
func (s *System) MemoryTotal(ctx context.Context) (int, error) {
	const op = "MemoryTotal"
	p, osName, err := s.platform(ctx, op)
	if err != nil {
		return 0, err
	}

	switch p {
	case platformLinux:
		return s.memInfoMB(ctx, op, procfs.MemTotal)
	case platformDarwin:
		b, err := s.sysctlUint(ctx, op, "hw.memsize")
		if err != nil {
			return 0, err
		}
		return int(b / bytesPerMB), nil
	default:
		return 0, unsupported(op, osName)
	}
}

// MemoryFree returns the free physical memory in megabytes.
// On Darwin this is the free page count times the page size.
func (s *System) MemoryFree(ctx context.Context) (int, error) {
	const op = "MemoryFree"
	p, osName, err := s.platform(ctx, op)
	if err != nil {
		return 0, err
	}

	switch p {
	case platformLinux:
		return s.memInfoMB(ctx, op, procfs.MemFree)
	case platformDarwin:
		pages, err := s.sysctlUint(ctx, op, "vm.page_free_count")
		if err != nil {
			return 0, err
		}
		pageSize, err := s.sysctlUint(ctx, op, "hw.pagesize")
		if err != nil {
			return 0, err
		}
		return int(pages * pageSize / bytesPerMB), nil
	default:
		return 0, unsupported(op, osName)
	}
}

// memInfoMB reads a kilobyte field of /proc/meminfo as whole megabytes.
func (s *System) memInfoMB(ctx context.Context, op, label string) (int, error) {
	data, err := s.readFile(ctx, op, procMemInfo)
	if err != nil {
		return 0, err
	}
	kb, err := procfs.MemInfoKB(data, label)
	if err != nil {
		return 0, fieldError(op, procMemInfo, err)
	}
	return int(kb / 1024), nil
}

func (s *System) sysctlUint(ctx context.Context, op, name string) (uint64, error) {
	out, err := s.run(ctx, op, "sysctl", "-n", name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(strings.TrimSpace(out), 10, 64)
	if err != nil {
		return 0, fieldError(op, "sysctl -n "+name, fmt.Errorf("%w: %v", ErrFieldNotFound, err))
	}
	return v, nil
}
