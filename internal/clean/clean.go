// Package clean implements the per-category cleaners. Every cleaner follows
// the same contract: enumerate its candidate roots, skip roots that do not
// exist, apply the path policy, and either predict (dry run) or perform the
// deletions while folding each item's outcome into a Statistics record.
package clean

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable is returned when a category cannot run on this host at all,
// e.g. the registry on Linux.
var ErrUnavailable = errors.New("category is not available on this host")

// maxMessages bounds the error messages kept per category; the error count
// keeps growing past it.
const maxMessages = 500

// Kind is the class of a category. Kinds run in declaration order.
type Kind int

const (
	KindTemp Kind = iota
	KindBrowser
	KindRecycleBin
	KindRegistry
)

func (k Kind) String() string {
	switch k {
	case KindTemp:
		return "temp"
	case KindBrowser:
		return "browser"
	case KindRecycleBin:
		return "recyclebin"
	case KindRegistry:
		return "registry"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Category identifies one cleanup target.
type Category struct {
	Kind  Kind
	Name  string // command-line identifier, e.g. "temp", "chrome"
	Label string // display name
}

func (c Category) String() string { return c.Name }

// Well-known categories. Browser categories are built from config.Browser.
var (
	CategoryTemp       = Category{Kind: KindTemp, Name: "temp", Label: "Temporary Files"}
	CategoryRecycleBin = Category{Kind: KindRecycleBin, Name: "recyclebin", Label: "Recycle Bin"}
	CategoryRegistry   = Category{Kind: KindRegistry, Name: "registry", Label: "Registry"}
)

// Cleaner is one category's cleaning capability.
type Cleaner interface {
	// Category identifies what the cleaner removes.
	Category() Category

	// RequiresElevation reports whether the category needs an elevated process.
	RequiresElevation() bool

	// Run cleans the category, or only predicts the effect when dryRun is
	// set. Per-item failures are recorded in the returned statistics; a
	// non-nil error means the category could not run at all.
	Run(ctx context.Context, dryRun bool) (Statistics, error)
}

// Statistics is the outcome of one category run.
type Statistics struct {
	// Removed counts files, registry keys and values actually deleted.
	Removed int `json:"removed"`

	// DirsRemoved counts directories pruned after their contents were removed.
	DirsRemoved int `json:"dirs_removed"`

	// BytesReclaimed is the size of everything counted in Removed.
	BytesReclaimed int64 `json:"bytes_reclaimed"`

	// WouldRemove and WouldReclaim are the dry-run predictions.
	WouldRemove  int   `json:"would_remove"`
	WouldReclaim int64 `json:"would_reclaim"`

	// Errors counts item- and root-level failures.
	Errors int `json:"errors"`

	// Messages describes the failures, in the order they happened.
	Messages []string `json:"messages,omitempty"`

	// Notes carries non-error remarks such as a running browser.
	Notes []string `json:"notes,omitempty"`
}

// Merge adds o into s. Used to fold per-root partial records into the
// category total after the root's worker has finished.
func (s *Statistics) Merge(o Statistics) {
	s.Removed += o.Removed
	s.DirsRemoved += o.DirsRemoved
	s.BytesReclaimed += o.BytesReclaimed
	s.WouldRemove += o.WouldRemove
	s.WouldReclaim += o.WouldReclaim
	s.Errors += o.Errors
	for _, m := range o.Messages {
		s.appendMessage(m)
	}
	s.Notes = append(s.Notes, o.Notes...)
}

// Fail records one failure.
func (s *Statistics) Fail(format string, args ...any) {
	s.Errors++
	s.appendMessage(fmt.Sprintf(format, args...))
}

func (s *Statistics) appendMessage(m string) {
	if len(s.Messages) < maxMessages {
		s.Messages = append(s.Messages, m)
	}
}

// itemResult is the outcome of handling one candidate.
type itemResult struct {
	path string
	size int64
	err  error
	op   string // verb used in the failure message
}

// record folds one item's outcome into the statistics.
func (s *Statistics) record(r itemResult, dryRun bool) {
	switch {
	case r.err != nil:
		s.Fail("%s %s: %v", r.op, r.path, r.err)
	case dryRun:
		s.WouldRemove++
		s.WouldReclaim += r.size
	default:
		s.Removed++
		s.BytesReclaimed += r.size
	}
}
