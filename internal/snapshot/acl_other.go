//go:build !windows

package snapshot

import "os"

// restrictDir limits dir to its owner.
func restrictDir(dir string) error {
	return os.Chmod(dir, 0o700)
}
