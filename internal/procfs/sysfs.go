package procfs

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseCounter parses a single unsigned integer, as found in
// /sys/class/net/<iface>/statistics/* files.
func ParseCounter(data []byte) (uint64, error) {
	s := strings.TrimSpace(string(data))
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing counter %q: %w", s, err)
	}
	return v, nil
}
