package sysinfo

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
)

// TotalKey is the synthetic entry that aggregates every other entry of an
// IOUsage or NetworkUsage result.
const TotalKey = "total"

// DefaultDuration is the conventional sampling window.
const DefaultDuration = time.Second

const bytesPerMB = 1024 * 1024

// sample reads a snapshot, blocks for d, then reads a second snapshot.
// A zero duration performs both reads back to back.
func sample[T any](ctx context.Context, op string, d time.Duration, read func(context.Context) (T, error)) (T, T, error) {
	var zero T
	if d < 0 {
		return zero, zero, &Error{Op: op, Err: fmt.Errorf("%w: %v", ErrInvalidDuration, d)}
	}

	first, err := read(ctx)
	if err != nil {
		return zero, zero, err
	}

	if d > 0 {
		timer := time.NewTimer(d)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, zero, &Error{Op: op, Err: ctx.Err()}
		}
	}

	second, err := read(ctx)
	if err != nil {
		return zero, zero, err
	}
	return first, second, nil
}

// counterPair holds two monotonically increasing counters of one entity,
// such as sectors read and written, or bytes received and sent.
type counterPair struct {
	a, b uint64
}

type counterSample map[string]counterPair

// diffCounters returns second minus first for every entity of first that
// keep accepts. Entities missing from second, and counters that went
// backwards, yield zero.
func diffCounters(first, second counterSample, keep func(string) bool) counterSample {
	out := make(counterSample, len(first))
	for name, prev := range first {
		if keep != nil && !keep(name) {
			continue
		}
		curr, ok := second[name]
		if !ok {
			out[name] = counterPair{}
			continue
		}
		out[name] = counterPair{a: forward(prev.a, curr.a), b: forward(prev.b, curr.b)}
	}
	return out
}

func forward(prev, curr uint64) uint64 {
	if curr < prev {
		return 0
	}
	return curr - prev
}

// excludeSubstrings returns a filter rejecting names that contain any of subs.
func excludeSubstrings(subs []string) func(string) bool {
	return func(name string) bool {
		for _, s := range subs {
			if strings.Contains(name, s) {
				return false
			}
		}
		return true
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
