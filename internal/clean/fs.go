package clean

import (
	"io/fs"
	"os"
)

// FS abstracts the filesystem operations the walker performs, so tests can
// prove a dry run never removes anything and inject locked files.
type FS interface {
	Stat(path string) (fs.FileInfo, error)
	Lstat(path string) (fs.FileInfo, error)
	ReadDir(path string) ([]fs.DirEntry, error)
	Remove(path string) error
}

// OSFS is the host filesystem.
type OSFS struct{}

func (OSFS) Stat(path string) (fs.FileInfo, error)      { return os.Stat(longPath(path)) }
func (OSFS) Lstat(path string) (fs.FileInfo, error)     { return os.Lstat(longPath(path)) }
func (OSFS) ReadDir(path string) ([]fs.DirEntry, error) { return os.ReadDir(longPath(path)) }
func (OSFS) Remove(path string) error                   { return os.Remove(longPath(path)) }
