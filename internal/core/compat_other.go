//go:build !windows

package core

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// HostDescription returns the platform name and version reported by the OS,
// e.g. "ubuntu 24.04 (x86_64)". Falls back to GOOS/GOARCH.
func HostDescription() string {
	info, err := host.Info()
	if err != nil || info.Platform == "" {
		return runtime.GOOS + "/" + runtime.GOARCH
	}
	return fmt.Sprintf("%s %s (%s)", info.Platform, info.PlatformVersion, info.KernelArch)
}
