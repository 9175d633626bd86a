package clean

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
)

// ─── Multi-Drive Scanning ────────────────────────────────────────────────────

// commonTempDirs are directory names commonly used for temporary files
// on secondary drives. These are safe to clean.
var commonTempDirs = []string{"Temp", "tmp"}

// nonSystemDrives returns the mount points of physical partitions other than
// the system drive (e.g. "D:\", "E:\").
func nonSystemDrives(systemDrive string) []string {
	parts, err := disk.Partitions(false)
	if err != nil {
		return nil
	}
	var drives []string
	for _, p := range parts {
		mount := p.Mountpoint
		if runtime.GOOS == "windows" && !strings.HasSuffix(mount, `\`) {
			mount += `\`
		}
		if strings.EqualFold(filepath.Clean(mount), filepath.Clean(systemDrive)) {
			continue // system drive is covered by the standard temp roots
		}
		drives = append(drives, mount)
	}
	return drives
}

// SecondaryTempRoots discovers temp directories on non-system drives:
// top-level Temp/tmp folders and per-user temp folders below Users.
// Only Windows drive layouts are recognised.
func SecondaryTempRoots(systemDrive string) []string {
	if runtime.GOOS != "windows" {
		return nil
	}

	var roots []string
	for _, drive := range nonSystemDrives(systemDrive) {
		for _, name := range commonTempDirs {
			roots = append(roots, filepath.Join(drive, name))
		}

		// e.g., D:\Users\*\AppData\Local\Temp
		pattern := filepath.Join(drive, "Users", "*", "AppData", "Local", "Temp")
		if matches, err := filepath.Glob(pattern); err == nil {
			roots = append(roots, matches...)
		}
	}

	var existing []string
	for _, r := range roots {
		if info, err := os.Stat(r); err == nil && info.IsDir() {
			existing = append(existing, r)
		}
	}
	return existing
}
