package procfs

import (
	"bufio"
	"fmt"
	"strings"
)

// CountProcessors counts the "processor" entries of /proc/cpuinfo.
func CountProcessors(data []byte) (int, error) {
	count := 0
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		key, _, ok := strings.Cut(scanner.Text(), ":")
		if ok && strings.TrimSpace(key) == "processor" {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("scanning /proc/cpuinfo: %w", err)
	}
	if count == 0 {
		return 0, fmt.Errorf("processor: %w", ErrFieldNotFound)
	}
	return count, nil
}
