package clean

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cookiemonster-dev/cookiemonster/internal/core"
	"github.com/cookiemonster-dev/cookiemonster/internal/policy"
)

// FileOptions configures the filesystem cleaners.
type FileOptions struct {
	// FS is the filesystem to operate on. Defaults to OSFS.
	FS FS

	// Policy filters candidates. Nil accepts everything.
	Policy *policy.Policy

	// MaxDepth limits descent below a root (0 = unlimited). Files directly in
	// the root are at depth 1.
	MaxDepth int

	// Workers is the number of roots walked in parallel. Defaults to 1.
	Workers int

	// Protected paths are never removed themselves.
	Protected []string

	// Skip lists directories that are never entered, such as the backups
	// root when it lies below a cleaned root.
	Skip []string

	Logger zerolog.Logger
}

// fileWalker is the enumeration and error-aggregation logic shared by every
// filesystem category.
type fileWalker struct {
	fs        FS
	policy    *policy.Policy
	maxDepth  int
	workers   int
	protected []string
	skip      []string
	log       zerolog.Logger
}

func newFileWalker(o FileOptions) fileWalker {
	if o.FS == nil {
		o.FS = OSFS{}
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	return fileWalker{
		fs:        o.FS,
		policy:    o.Policy,
		maxDepth:  o.MaxDepth,
		workers:   o.Workers,
		protected: o.Protected,
		skip:      o.Skip,
		log:       o.Logger,
	}
}

// visitor receives the walk's events. file returns true when the entry was
// removed; dirDone is called after a directory below the root had entries
// removed and returns true if the directory itself was removed.
type visitor struct {
	file    func(path string, info fs.FileInfo) bool
	dirDone func(path string) bool
	fail    func(path, op string, err error)
}

// walkRoot visits every eligible file under root. A missing root is skipped
// silently; an unreadable root is reported once through fail.
func (w fileWalker) walkRoot(ctx context.Context, root string, v visitor) {
	if w.skipped(root) {
		w.log.Debug().Str("root", root).Msg("root is skipped")
		return
	}
	info, err := w.fs.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			w.log.Debug().Str("root", root).Msg("root does not exist, skipping")
			return
		}
		v.fail(root, "open", err)
		return
	}
	if !info.IsDir() {
		if w.policy.IsEligible(root) {
			v.file(root, info)
		}
		return
	}
	w.walkDir(ctx, root, 1, v)
}

// walkDir returns how many entries below dir were removed.
func (w fileWalker) walkDir(ctx context.Context, dir string, depth int, v visitor) int {
	entries, err := w.fs.ReadDir(dir)
	if err != nil {
		v.fail(dir, "read", err)
		return 0
	}

	removed := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			return removed
		}
		path := filepath.Join(dir, e.Name())

		// Exclusion prunes the whole subtree; inclusion is per file.
		if w.policy.IsExcluded(path) {
			continue
		}

		if e.IsDir() {
			// NEVER follow junction points / reparse points.
			if isReparsePoint(path) {
				w.log.Debug().Str("path", path).Msg("skipping junction/reparse point")
				continue
			}
			if w.maxDepth > 0 && depth >= w.maxDepth {
				continue
			}
			if w.skipped(path) {
				w.log.Debug().Str("path", path).Msg("skipping directory")
				continue
			}
			n := w.walkDir(ctx, path, depth+1, v)
			if n > 0 && v.dirDone != nil && v.dirDone(path) {
				n++
			}
			removed += n
			continue
		}

		info, err := e.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			v.fail(path, "stat", err)
			continue
		}
		if !w.policy.IsEligible(path) {
			continue
		}
		if v.file(path, info) {
			removed++
		}
	}
	return removed
}

// clean runs the category over roots. Each root is walked by its own worker
// into an isolated partial record; partials are merged in root order once
// every worker is done, so the result does not depend on scheduling.
func (w fileWalker) clean(ctx context.Context, roots []string, dryRun bool) Statistics {
	partials := make([]Statistics, len(roots))

	var g errgroup.Group
	g.SetLimit(w.workers)
	for i, root := range roots {
		g.Go(func() error {
			partials[i] = w.cleanRoot(ctx, root, dryRun)
			return nil
		})
	}
	_ = g.Wait()

	var stats Statistics
	for _, p := range partials {
		stats.Merge(p)
	}
	if err := ctx.Err(); err != nil {
		stats.Fail("run interrupted: %v", err)
	}
	return stats
}

func (w fileWalker) cleanRoot(ctx context.Context, root string, dryRun bool) Statistics {
	var stats Statistics

	v := visitor{
		file: func(path string, info fs.FileInfo) bool {
			size := info.Size()
			if info.Mode()&fs.ModeSymlink != 0 {
				// Only the link goes; its target is untouched.
				size = 0
			}
			if dryRun {
				stats.record(itemResult{path: path, size: size}, true)
				return false
			}
			err := core.CheckDeletable(path, w.protected)
			if err == nil {
				err = w.fs.Remove(path)
				if errors.Is(err, fs.ErrNotExist) {
					// Gone between listing and removal; nothing was reclaimed by us.
					return false
				}
			}
			if err != nil {
				w.log.Warn().Err(err).Str("path", path).Msg("cannot remove file")
			}
			stats.record(itemResult{path: path, size: size, err: err, op: "remove"}, false)
			return err == nil
		},
		dirDone: func(path string) bool {
			if dryRun || !w.policy.IsEligible(path) || core.CheckDeletable(path, w.protected) != nil {
				return false
			}
			entries, err := w.fs.ReadDir(path)
			if err != nil || len(entries) > 0 {
				return false
			}
			if err := w.fs.Remove(path); err != nil {
				w.log.Debug().Err(err).Str("path", path).Msg("cannot prune directory")
				return false
			}
			stats.DirsRemoved++
			return true
		},
		fail: func(path, op string, err error) {
			w.log.Warn().Err(err).Str("path", path).Msg("cannot " + op)
			stats.Fail("%s %s: %v", op, path, err)
		},
	}

	w.walkRoot(ctx, root, v)
	w.log.Debug().
		Str("root", root).
		Int("removed", stats.Removed).
		Int("would_remove", stats.WouldRemove).
		Int("errors", stats.Errors).
		Msg("root done")
	return stats
}

// eachEligible calls fn for every file the category would remove, without
// removing anything. Regular files and symbolic links are reported; other
// special files are not. Enumeration failures and fn errors are collected
// and returned together; enumeration continues past them.
func (w fileWalker) eachEligible(ctx context.Context, roots []string, fn func(path string, size int64) error) error {
	var errs []error
	v := visitor{
		file: func(path string, info fs.FileInfo) bool {
			if !info.Mode().IsRegular() && info.Mode()&fs.ModeSymlink == 0 {
				return false
			}
			if err := fn(path, info.Size()); err != nil {
				errs = append(errs, err)
			}
			return false
		},
		fail: func(path, op string, err error) {
			errs = append(errs, fmt.Errorf("%s %s: %w", op, path, err))
		},
	}
	for _, root := range roots {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		w.walkRoot(ctx, root, v)
	}
	return errors.Join(errs...)
}

// skipped reports whether path is one of the skipped directories or lies
// below one.
func (w fileWalker) skipped(path string) bool {
	for _, dir := range w.skip {
		if dir != "" && within(path, dir) {
			return true
		}
	}
	return false
}

func within(path, dir string) bool {
	path, dir = filepath.Clean(path), filepath.Clean(dir)
	if runtime.GOOS == "windows" {
		path, dir = strings.ToLower(path), strings.ToLower(dir)
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// existingDirs filters paths down to existing directories.
func existingDirs(paths []string) []string {
	var dirs []string
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			dirs = append(dirs, p)
		}
	}
	return dirs
}
