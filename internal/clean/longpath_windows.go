//go:build windows

package clean

import (
	"path/filepath"
	"strings"
	"syscall"
)

// isReparsePoint returns true if the path is a Windows junction or symlink
// (FILE_ATTRIBUTE_REPARSE_POINT). Must be checked to avoid infinite recursion
// and to avoid deleting through a junction into another tree.
func isReparsePoint(path string) bool {
	pathp, err := syscall.UTF16PtrFromString(longPath(path))
	if err != nil {
		return false
	}
	attrs, err := syscall.GetFileAttributes(pathp)
	if err != nil {
		return false
	}
	const fileAttributeReparsePoint = 0x0400
	return attrs&fileAttributeReparsePoint != 0
}

// longPath adds the \\?\ prefix for paths exceeding MAX_PATH on Windows.
func longPath(path string) string {
	if len(path) >= 260 && !strings.HasPrefix(path, `\\?\`) {
		return `\\?\` + filepath.Clean(path)
	}
	return path
}
