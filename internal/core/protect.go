package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	// ErrProtectedPath is returned when a deletion targets a path on the
	// never-delete list.
	ErrProtectedPath = errors.New("path is protected")

	// ErrRelativePath is returned when a deletion targets a relative path.
	ErrRelativePath = errors.New("path is not absolute")
)

// CheckDeletable refuses relative paths and paths that are exactly one of the
// protected locations. Children of protected locations are allowed: temp and
// cache roots live below them.
func CheckDeletable(path string, protected []string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s: %w", path, ErrRelativePath)
	}
	cleaned := filepath.Clean(path)
	for _, p := range protected {
		if p == "" {
			continue
		}
		if samePath(cleaned, filepath.Clean(p)) {
			return fmt.Errorf("%s: %w", path, ErrProtectedPath)
		}
	}
	return nil
}

// samePath compares paths the way the host filesystem would.
func samePath(a, b string) bool {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		return strings.EqualFold(a, b)
	}
	return a == b
}
