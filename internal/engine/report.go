package engine

import (
	"encoding/json"
	"time"

	"github.com/cookiemonster-dev/cookiemonster/internal/clean"
)

// Status is the outcome of one category in a run.
type Status int

const (
	// StatusOK means the category ran without item failures.
	StatusOK Status = iota
	// StatusPartial means the category ran but some items failed.
	StatusPartial
	// StatusDenied means the category needs elevation the process lacks.
	StatusDenied
	// StatusFailed means the category could not run, or its backup failed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusPartial:
		return "partial"
	case StatusDenied:
		return "denied"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Failed reports whether the status is a category-level failure.
func (s Status) Failed() bool { return s == StatusDenied || s == StatusFailed }

// CategoryResult is one category's entry in the run report.
type CategoryResult struct {
	Category clean.Category   `json:"-"`
	Stats    clean.Statistics `json:"stats"`
	Status   Status           `json:"status"`

	// Err is the category-level failure, if any.
	Err error `json:"-"`

	// Backup is the location of the backup taken before the run.
	Backup   string        `json:"backup,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// MarshalJSON flattens the category and error into the result.
func (c CategoryResult) MarshalJSON() ([]byte, error) {
	type plain CategoryResult
	out := struct {
		Name  string `json:"name"`
		Label string `json:"label"`
		Error string `json:"error,omitempty"`
		plain
	}{Name: c.Category.Name, Label: c.Category.Label, plain: plain(c)}
	if c.Err != nil {
		out.Error = c.Err.Error()
	}
	return json.Marshal(out)
}

// Report is the outcome of one RunCategories call.
type Report struct {
	DryRun     bool             `json:"dry_run"`
	WithBackup bool             `json:"with_backup"`
	Host       string           `json:"host,omitempty"`
	Started    time.Time        `json:"started"`
	Duration   time.Duration    `json:"duration_ns"`
	Categories []CategoryResult `json:"categories"`

	// FreeBefore and FreeAfter are the free bytes on the system drive; zero
	// when unknown.
	FreeBefore uint64 `json:"free_before,omitempty"`
	FreeAfter  uint64 `json:"free_after,omitempty"`

	// Success is false when any category failed at category level.
	Success bool `json:"success"`
}

// Totals sums the statistics of every category.
func (r Report) Totals() clean.Statistics {
	var total clean.Statistics
	for _, c := range r.Categories {
		total.Removed += c.Stats.Removed
		total.DirsRemoved += c.Stats.DirsRemoved
		total.BytesReclaimed += c.Stats.BytesReclaimed
		total.WouldRemove += c.Stats.WouldRemove
		total.WouldReclaim += c.Stats.WouldReclaim
		total.Errors += c.Stats.Errors
	}
	return total
}
