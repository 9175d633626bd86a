package snapshot

import "github.com/hectane/go-acl"

// restrictDir limits dir to its owner. Backups hold copies of browser data
// and MRU lists.
func restrictDir(dir string) error {
	return acl.Chmod(dir, 0o700)
}
