// Package sysinfo reports basic facts about a machine: operating system,
// architecture, hostname, CPU cores and usage, memory, disk space, disk I/O
// and network throughput.
//
// A System reads everything through a source.Source, which is the local
// machine by default and may instead be a host reached over SSH. System
// keeps no state between calls. Rate metrics (CPUUsage, IOUsage and
// NetworkUsage) take two snapshots a given duration apart and report the
// difference; they block for that duration unless the context is cancelled
// first.
//
// Basic usage:
//
//	sys := sysinfo.New(sysinfo.Options{})
//	cores, err := sys.CPUCores(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	usage, err := sys.CPUUsage(ctx, sysinfo.DefaultDuration)
//
// Every error wraps one of the package's sentinel errors, so callers can
// branch with errors.Is, for example on ErrUnsupportedPlatform.
package sysinfo
