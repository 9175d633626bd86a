//go:build !windows

package clean

// isReparsePoint is a Windows concept; symlinks are caught by Lstat mode bits.
func isReparsePoint(string) bool { return false }

func longPath(path string) string { return path }
