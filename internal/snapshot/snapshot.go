// Package snapshot keeps best-effort copies of files and registry data taken
// right before a destructive category run, so the run can be undone.
//
// Each backup lives in its own directory under the backups root:
//
//	<root>/<category>_<timestamp>_<id>/
//	    manifest.json         the BackupRecord, format version 1
//	    files/000001_name     copies of captured files
//	    registry/001.json     one exported subtree per curated key
package snapshot

import (
	"errors"
	"time"

	"github.com/cookiemonster-dev/cookiemonster/internal/winreg"
)

var (
	// ErrBackupNotFound is returned for a location that is not in the history.
	ErrBackupNotFound = errors.New("backup not found")

	// ErrLocationExists is returned when a fresh backup location is already
	// taken. Locations are never reused.
	ErrLocationExists = errors.New("backup location already exists")

	// ErrPartial marks a backup that captured only part of its data.
	ErrPartial = errors.New("backup is partial")

	// ErrUnsupportedFormat is returned for manifests and exports written by
	// an unknown format version.
	ErrUnsupportedFormat = errors.New("unsupported backup format")
)

// FormatVersion is the version of manifest.json and registry exports.
const FormatVersion = 1

const (
	manifestName = "manifest.json"
	filesDir     = "files"
	registryDir  = "registry"
)

// FileEntry is one captured file.
type FileEntry struct {
	Original string `json:"original"`
	Stored   string `json:"stored"` // relative to the backup location
	Size     int64  `json:"size"`
	Mode     uint32 `json:"mode"`

	// Link is the target of a captured symbolic link. Stored is empty then.
	Link string `json:"link,omitempty"`
}

// RegistryValue is one captured (key path, value) pair.
type RegistryValue struct {
	KeyPath string       `json:"key"`
	Value   winreg.Value `json:"value"`
}

// BackupRecord describes one backup. It is never modified after creation.
type BackupRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	Category   string    `json:"category"`
	Location   string    `json:"location"`
	TotalBytes int64     `json:"total_bytes"`

	// Files are the captured files in capture order.
	Files []FileEntry `json:"files,omitempty"`

	// RegistryKeys lists every captured key, parents before children, so
	// that keys holding no values are restored too.
	RegistryKeys []string `json:"registry_keys,omitempty"`

	// RegistryValues are the captured values in capture order.
	RegistryValues []RegistryValue `json:"registry_values,omitempty"`

	// Partial is set when some data could not be captured; Errors says what.
	Partial bool     `json:"partial,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// FilePaths returns the original paths of the captured files.
func (r BackupRecord) FilePaths() []string {
	paths := make([]string, len(r.Files))
	for i, f := range r.Files {
		paths[i] = f.Original
	}
	return paths
}

// IsRegistry reports whether the record holds registry data.
func (r BackupRecord) IsRegistry() bool {
	return len(r.RegistryKeys) > 0 || len(r.RegistryValues) > 0
}

type manifest struct {
	Format int          `json:"format"`
	Record BackupRecord `json:"record"`
}

type registryExport struct {
	Format int           `json:"format"`
	Root   string        `json:"root"`
	Keys   []exportedKey `json:"keys"`
}

type exportedKey struct {
	Path   string         `json:"path"`
	Values []winreg.Value `json:"values"`
}
