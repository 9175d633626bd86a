package config

import (
	"errors"
	"runtime"
)

// ErrInvalidConfig is returned when the options are invalid.
var ErrInvalidConfig = errors.New("invalid configuration")

// Options holds the user-tunable settings of a cleaning run.
type Options struct {
	// Exclude lists path fragments that are never cleaned.
	Exclude []string

	// Include, when non-empty, restricts cleaning to paths containing one of
	// these fragments.
	Include []string

	// ExcludeExtensions lists file extensions that are never cleaned.
	ExcludeExtensions []string

	// MaxDepth limits how deep below a root the walker descends (0 = unlimited).
	MaxDepth int

	// Workers is the number of roots enumerated in parallel within a category.
	// If 0, defaults to runtime.NumCPU() capped at MaxWorkers.
	Workers int

	// BackupRoot is where backup locations are created.
	BackupRoot string

	// AllDrives adds temp directories on non-system drives to the temp roots.
	AllDrives bool
}

// MaxWorkers caps the default worker count; enumeration is I/O bound.
const MaxWorkers = 4

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.Workers == 0 {
		o.Workers = min(runtime.NumCPU(), MaxWorkers)
	}
	if o.BackupRoot == "" {
		o.BackupRoot = DefaultBackupRoot()
	}
	if len(o.ExcludeExtensions) == 0 {
		o.ExcludeExtensions = DefaultExcludedExtensions()
	}
}

// Validate checks the options.
func (o *Options) Validate() error {
	if o.MaxDepth < 0 || o.Workers < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// DefaultExcludedExtensions are executable types a temp cleaner leaves alone:
// an installer still running from %TEMP% must not lose its payload.
func DefaultExcludedExtensions() []string {
	return []string{".exe", ".dll", ".sys", ".msi"}
}
