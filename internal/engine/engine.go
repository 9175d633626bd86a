// Package engine sequences the category cleaners into a run: privilege
// gating, backup-then-clean pairing, and aggregation into a Report.
package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/disk"

	"github.com/cookiemonster-dev/cookiemonster/internal/clean"
	"github.com/cookiemonster-dev/cookiemonster/internal/snapshot"
)

var (
	// ErrPrivilegeRequired marks a category skipped for lack of elevation.
	ErrPrivilegeRequired = errors.New("administrator privileges required")

	// ErrAlreadyRunning marks a category skipped because another run of the
	// same category is in progress.
	ErrAlreadyRunning = errors.New("category is already running")

	// ErrBackupFailed marks a category skipped because its backup failed.
	ErrBackupFailed = errors.New("backup failed")
)

// Snapshotter takes a backup before a category is cleaned.
type Snapshotter interface {
	CreateBackup(ctx context.Context, category string, src any) (snapshot.BackupRecord, error)
}

// Phase is the step of a category reported to a progress callback.
type Phase int

const (
	PhaseBackup Phase = iota
	PhaseClean
	PhaseDone
)

// Event is a progress notification.
type Event struct {
	Category clean.Category
	Phase    Phase
	Index    int // position of the category in the run
	Total    int
	Result   *CategoryResult // set for PhaseDone
}

// Options configures an Orchestrator.
type Options struct {
	Logger zerolog.Logger

	// IsElevated reports whether the process may run privileged categories.
	// Nil means not elevated.
	IsElevated func() bool

	// Snapshots takes backups. Nil makes every backup-then-clean pair fail.
	Snapshots Snapshotter

	// FreeSpace reports free bytes on the system drive. Optional.
	FreeSpace func() (uint64, error)

	// Host is copied into reports.
	Host string

	// Progress, when set, is called synchronously as categories advance.
	Progress func(Event)
}

// Orchestrator runs category cleaners.
type Orchestrator struct {
	cleaners   []clean.Cleaner
	locks      map[string]*sync.Mutex
	snapshots  Snapshotter
	isElevated func() bool
	freeSpace  func() (uint64, error)
	host       string
	progress   func(Event)
	log        zerolog.Logger
}

// New returns an orchestrator over cleaners. Cleaners run in kind order
// (temp, browsers, recycle bin, registry); cleaners of the same kind keep
// the order they were given in.
func New(cleaners []clean.Cleaner, o Options) *Orchestrator {
	ordered := slices.Clone(cleaners)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Category().Kind < ordered[j].Category().Kind
	})

	locks := make(map[string]*sync.Mutex, len(ordered))
	for _, c := range ordered {
		locks[c.Category().Name] = &sync.Mutex{}
	}
	if o.IsElevated == nil {
		o.IsElevated = func() bool { return false }
	}
	return &Orchestrator{
		cleaners:   ordered,
		locks:      locks,
		snapshots:  o.Snapshots,
		isElevated: o.IsElevated,
		freeSpace:  o.FreeSpace,
		host:       o.Host,
		progress:   o.Progress,
		log:        o.Logger,
	}
}

// Categories returns the registered categories in run order.
func (o *Orchestrator) Categories() []clean.Category {
	cats := make([]clean.Category, len(o.cleaners))
	for i, c := range o.cleaners {
		cats[i] = c.Category()
	}
	return cats
}

// Cleaner returns the cleaner registered for the named category.
func (o *Orchestrator) Cleaner(name string) (clean.Cleaner, bool) {
	for _, c := range o.cleaners {
		if c.Category().Name == name {
			return c, true
		}
	}
	return nil, false
}

// RunCategories runs the selected categories (by name) in fixed order and
// always returns a report; failures are recorded per category. With dryRun
// no backup is taken and nothing is modified.
func (o *Orchestrator) RunCategories(ctx context.Context, selected []string, dryRun, withBackup bool) Report {
	var run []clean.Cleaner
	for _, c := range o.cleaners {
		if slices.Contains(selected, c.Category().Name) {
			run = append(run, c)
		}
	}

	report := Report{
		DryRun:     dryRun,
		WithBackup: withBackup,
		Host:       o.host,
		Started:    time.Now(),
		Success:    true,
	}
	report.FreeBefore = o.free()

	o.log.Info().
		Int("categories", len(run)).
		Bool("dry_run", dryRun).
		Bool("backup", withBackup).
		Msg("run started")

	for i, c := range run {
		res := o.runOne(ctx, c, i, len(run), dryRun, withBackup)
		if res.Status.Failed() {
			report.Success = false
		}
		report.Categories = append(report.Categories, res)
		o.notify(Event{Category: res.Category, Phase: PhaseDone, Index: i, Total: len(run), Result: &res})
	}

	report.FreeAfter = o.free()
	report.Duration = time.Since(report.Started)

	totals := report.Totals()
	o.log.Info().
		Bool("success", report.Success).
		Int("removed", totals.Removed).
		Int64("bytes", totals.BytesReclaimed).
		Int("errors", totals.Errors).
		Dur("duration", report.Duration).
		Msg("run finished")
	return report
}

func (o *Orchestrator) runOne(ctx context.Context, c clean.Cleaner, index, total int, dryRun, withBackup bool) CategoryResult {
	cat := c.Category()
	res := CategoryResult{Category: cat}
	start := time.Now()
	log := o.log.With().Str("category", cat.Name).Logger()

	fail := func(status Status, err error) CategoryResult {
		res.Status = status
		res.Err = err
		res.Duration = time.Since(start)
		log.Error().Err(err).Msg("category failed")
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail(StatusFailed, err)
	}
	if c.RequiresElevation() && !o.isElevated() {
		return fail(StatusDenied, fmt.Errorf("%s: %w", cat.Label, ErrPrivilegeRequired))
	}

	mu := o.locks[cat.Name]
	if !mu.TryLock() {
		return fail(StatusFailed, fmt.Errorf("%s: %w", cat.Label, ErrAlreadyRunning))
	}
	defer mu.Unlock()

	// The recycle bin has nothing meaningful to snapshot and always proceeds.
	if withBackup && !dryRun && cat.Kind != clean.KindRecycleBin {
		o.notify(Event{Category: cat, Phase: PhaseBackup, Index: index, Total: total})
		if o.snapshots == nil {
			return fail(StatusFailed, fmt.Errorf("%s: %w: no backup store", cat.Label, ErrBackupFailed))
		}
		rec, err := o.snapshots.CreateBackup(ctx, cat.Name, c)
		res.Backup = rec.Location
		if err != nil {
			return fail(StatusFailed, fmt.Errorf("%s: %w: %w", cat.Label, ErrBackupFailed, err))
		}
		log.Info().Str("backup", rec.Location).Int64("bytes", rec.TotalBytes).Msg("backup taken")
	}

	o.notify(Event{Category: cat, Phase: PhaseClean, Index: index, Total: total})
	stats, err := c.Run(ctx, dryRun)
	res.Stats = stats
	if err != nil {
		return fail(StatusFailed, err)
	}
	if stats.Errors > 0 {
		res.Status = StatusPartial
	}
	res.Duration = time.Since(start)
	log.Info().
		Int("removed", stats.Removed).
		Int("would_remove", stats.WouldRemove).
		Int("errors", stats.Errors).
		Msg("category done")
	return res
}

func (o *Orchestrator) notify(e Event) {
	if o.progress != nil {
		o.progress(e)
	}
}

func (o *Orchestrator) free() uint64 {
	if o.freeSpace == nil {
		return 0
	}
	n, err := o.freeSpace()
	if err != nil {
		o.log.Debug().Err(err).Msg("cannot read free space")
		return 0
	}
	return n
}

// DiskFree returns a FreeSpace function for the volume holding path.
func DiskFree(path string) func() (uint64, error) {
	return func() (uint64, error) {
		usage, err := disk.Usage(path)
		if err != nil {
			return 0, err
		}
		return usage.Free, nil
	}
}
