package clean

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// TrashBin is a freedesktop.org trash directory: trashed entries live in
// files/ with matching .trashinfo records in info/.
type TrashBin struct {
	Dir string
}

// NewTrashBin returns the trash rooted at dir.
func NewTrashBin(dir string) *TrashBin {
	return &TrashBin{Dir: dir}
}

// Query counts top-level trashed entries and sums their sizes. A missing
// trash directory is an empty bin.
func (t *TrashBin) Query() (int64, int64, error) {
	entries, err := os.ReadDir(filepath.Join(t.Dir, "files"))
	if errors.Is(err, fs.ErrNotExist) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}

	var items, size int64
	for _, e := range entries {
		items++
		_ = filepath.WalkDir(filepath.Join(t.Dir, "files", e.Name()), func(_ string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // Skip entries we can't access
			}
			if !d.IsDir() {
				if info, err := d.Info(); err == nil {
					size += info.Size()
				}
			}
			return nil
		})
	}
	return items, size, nil
}

// Empty removes every entry of files/ and info/. All entries are attempted;
// the failures are returned together.
func (t *TrashBin) Empty() error {
	var errs []error
	for _, sub := range []string{"files", "info", "expunged"} {
		dir := filepath.Join(t.Dir, sub)
		entries, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, e := range entries {
			if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
				errs = append(errs, err)
			}
		}
	}
	_ = os.Remove(filepath.Join(t.Dir, "directorysizes"))
	return errors.Join(errs...)
}
