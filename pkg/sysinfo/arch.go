package sysinfo

import (
	"context"
	"fmt"
	"regexp"
)

// Arch is a processor architecture family.
type Arch string

// Architecture families.
const (
	ArchX86   Arch = "x86"
	ArchPPC   Arch = "ppc"
	ArchARM64 Arch = "arm64"
	ArchARMv7 Arch = "armv7"
	ArchARMv8 Arch = "armv8"
)

// ArchARM is the coarse family token of older releases. IsArch accepts it
// and matches any ARM variant; ClassifyArch never returns it.
const ArchARM Arch = "arm"

// String returns the family token.
func (a Arch) String() string {
	return string(a)
}

// The patterns are unanchored: a raw string matches if any substring does.
var (
	x86Pattern   = regexp.MustCompile(`x86*|i386|i686`)
	ppcPattern   = regexp.MustCompile(`ppc*`)
	arm64Pattern = regexp.MustCompile(`aarch64|arm64`)
	armv7Pattern = regexp.MustCompile(`armv7`)
	armv8Pattern = regexp.MustCompile(`armv8`)
	armPattern   = regexp.MustCompile(`aarch*|arm*`)
)

// archRules lists the families in classification priority order.
var archRules = []struct {
	arch    Arch
	pattern *regexp.Regexp
}{
	{ArchX86, x86Pattern},
	{ArchPPC, ppcPattern},
	{ArchARM64, arm64Pattern},
	{ArchARMv7, armv7Pattern},
	{ArchARMv8, armv8Pattern},
}

var archPredicates = map[Arch]*regexp.Regexp{
	ArchX86:   x86Pattern,
	ArchPPC:   ppcPattern,
	ArchARM64: arm64Pattern,
	ArchARMv7: armv7Pattern,
	ArchARMv8: armv8Pattern,
	ArchARM:   armPattern,
}

// ClassifyArch maps a raw architecture string to its family. The first
// matching rule wins, so "x86" beats "ppc", which beats the ARM variants.
func ClassifyArch(raw string) (Arch, error) {
	for _, r := range archRules {
		if r.pattern.MatchString(raw) {
			return r.arch, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownArch, raw)
}

// ParseArch returns the family named by token. It accepts every family
// plus the legacy ArchARM.
func ParseArch(token string) (Arch, error) {
	a := Arch(token)
	if _, ok := archPredicates[a]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownArchToken, token)
	}
	return a, nil
}

// MatchArch reports whether raw matches the family named by token.
// Predicates are independent; a string may match more than one family.
func MatchArch(raw, token string) (bool, error) {
	a, err := ParseArch(token)
	if err != nil {
		return false, err
	}
	return archPredicates[a].MatchString(raw), nil
}

// ArchFamily classifies the system's architecture.
func (s *System) ArchFamily(ctx context.Context) (Arch, error) {
	raw, err := s.Arch(ctx)
	if err != nil {
		return "", err
	}
	a, err := ClassifyArch(raw)
	if err != nil {
		return "", &Error{Op: "ArchFamily", Err: err}
	}
	return a, nil
}

// IsArch reports whether the system's architecture matches the family
// named by token ("x86", "ppc", "arm64", "armv7", "armv8" or "arm").
func (s *System) IsArch(ctx context.Context, token string) (bool, error) {
	a, err := ParseArch(token)
	if err != nil {
		return false, &Error{Op: "IsArch", Err: err}
	}
	raw, err := s.Arch(ctx)
	if err != nil {
		return false, err
	}
	return archPredicates[a].MatchString(raw), nil
}

// IsX86 reports whether the system runs on an x86 processor.
func (s *System) IsX86(ctx context.Context) (bool, error) {
	return s.IsArch(ctx, string(ArchX86))
}

// IsPPC reports whether the system runs on a PowerPC processor.
func (s *System) IsPPC(ctx context.Context) (bool, error) {
	return s.IsArch(ctx, string(ArchPPC))
}

// IsArm64 reports whether the system runs on a 64-bit ARM processor.
func (s *System) IsArm64(ctx context.Context) (bool, error) {
	return s.IsArch(ctx, string(ArchARM64))
}

// IsArmV7 reports whether the system runs on an ARMv7 processor.
func (s *System) IsArmV7(ctx context.Context) (bool, error) {
	return s.IsArch(ctx, string(ArchARMv7))
}

// IsArmV8 reports whether the system runs on an ARMv8 processor in 32-bit mode.
func (s *System) IsArmV8(ctx context.Context) (bool, error) {
	return s.IsArch(ctx, string(ArchARMv8))
}

// IsArm reports whether the system runs on any ARM processor.
func (s *System) IsArm(ctx context.Context) (bool, error) {
	return s.IsArch(ctx, string(ArchARM))
}
