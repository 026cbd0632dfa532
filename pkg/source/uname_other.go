//go:build !unix

package source

import (
	"fmt"
	"os"
	"runtime"
)

// localUname builds uname-style values from the Go runtime on platforms
// without uname(2).
func localUname() (Uname, error) {
	host, err := os.Hostname()
	if err != nil {
		return Uname{}, fmt.Errorf("hostname: %w", err)
	}
	return Uname{
		Sysname:  sysname(runtime.GOOS),
		Nodename: host,
		Machine:  machine(runtime.GOARCH),
	}, nil
}

// sysname maps GOOS to what the platform reports as its OS name.
func sysname(goos string) string {
	switch goos {
	case "windows":
		return "Windows NT"
	case "plan9":
		return "Plan9"
	default:
		return goos
	}
}

// machine maps GOARCH to the equivalent uname -m value.
func machine(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "386":
		return "i686"
	case "arm64":
		return "aarch64"
	case "arm":
		return "armv7l"
	default:
		return goarch
	}
}
