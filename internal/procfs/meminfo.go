package procfs

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Field labels of /proc/meminfo.
const (
	MemTotal = "MemTotal"
	MemFree  = "MemFree"
)

var memInfoLine = regexp.MustCompile(`^([A-Za-z0-9_()]+):\s+(\d+)\s*kB$`)

// MemInfoKB returns the kilobyte value of the labeled /proc/meminfo line.
func MemInfoKB(data []byte, label string) (uint64, error) {
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		m := memInfoLine.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil || m[1] != label {
			continue
		}
		v, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing %s: %w", label, err)
		}
		return v, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("scanning /proc/meminfo: %w", err)
	}
	return 0, fmt.Errorf("%s: %w", label, ErrFieldNotFound)
}
