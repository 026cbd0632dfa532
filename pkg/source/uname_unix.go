//go:build unix

package source

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func localUname() (Uname, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return Uname{}, fmt.Errorf("uname: %w", err)
	}
	return Uname{
		Sysname:  unix.ByteSliceToString(uts.Sysname[:]),
		Nodename: unix.ByteSliceToString(uts.Nodename[:]),
		Machine:  unix.ByteSliceToString(uts.Machine[:]),
	}, nil
}
