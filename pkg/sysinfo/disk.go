package sysinfo

import (
	"context"
	"fmt"

	"github.com/opd-ai/go-sysinfo/pkg/source"
)

// DiskTotal returns the size in megabytes of the filesystem holding DiskPath.
func (s *System) DiskTotal(ctx context.Context) (int, error) {
	du, err := s.diskUsage(ctx, "DiskTotal")
	if err != nil {
		return 0, err
	}
	return int(du.Total / bytesPerMB), nil
}

// DiskFree returns the space in megabytes available to unprivileged users
// on the filesystem holding DiskPath.
func (s *System) DiskFree(ctx context.Context) (int, error) {
	du, err := s.diskUsage(ctx, "DiskFree")
	if err != nil {
		return 0, err
	}
	return int(du.Free / bytesPerMB), nil
}

func (s *System) diskUsage(ctx context.Context, op string) (source.DiskUsage, error) {
	du, err := s.src.DiskUsage(ctx, s.diskPath)
	if err != nil {
		return source.DiskUsage{}, &Error{Op: op, Source: s.diskPath, Err: fmt.Errorf("%w: %w", ErrDiskSpace, err)}
	}
	return du, nil
}
