//go:build !windows

package clean

import (
	"os"
	"path/filepath"
)

// SystemBin returns the freedesktop.org trash of the current user.
func SystemBin() Bin {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return NewTrashBin(filepath.Join(dir, "Trash"))
}
