package procfs

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// SectorSize is the unit of the /proc/diskstats sector counters in bytes,
// independent of the device's physical sector size.
const SectorSize = 512

// Field offsets in a /proc/diskstats line:
//
//	major minor name reads merged sectors_read read_ms writes merged sectors_written ...
const (
	diskNameField           = 2
	diskSectorsReadField    = 5
	diskSectorsWrittenField = 9
)

// DiskStat maps a device name to the raw fields of its /proc/diskstats line.
type DiskStat map[string][]string

// ParseDiskstats parses /proc/diskstats. Lines too short to carry the
// sector counters are skipped.
func ParseDiskstats(data []byte) (DiskStat, error) {
	stats := make(DiskStat)
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) <= diskSectorsWrittenField {
			continue
		}
		stats[fields[diskNameField]] = fields
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning /proc/diskstats: %w", err)
	}
	return stats, nil
}

// Sectors returns the sectors read and written counters of a device line.
func Sectors(fields []string) (read, written uint64, err error) {
	if len(fields) <= diskSectorsWrittenField {
		return 0, 0, fmt.Errorf("insufficient fields: got %d, need at least %d",
			len(fields), diskSectorsWrittenField+1)
	}
	read, err = strconv.ParseUint(fields[diskSectorsReadField], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing sectors read: %w", err)
	}
	written, err = strconv.ParseUint(fields[diskSectorsWrittenField], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing sectors written: %w", err)
	}
	return read, written, nil
}
