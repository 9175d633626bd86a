package clean

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cookiemonster-dev/cookiemonster/internal/winreg"
)

// Registry deletes a curated list of keys holding most-recently-used lists.
// The list is curated, so the path policy does not apply. Each key is
// removed depth-first: children first, then the key's values, then the key.
// A key that is already absent counts as clean.
type Registry struct {
	store winreg.Store
	keys  []string
	log   zerolog.Logger
}

// NewRegistry returns a cleaner for keys. A nil store makes the category
// unavailable.
func NewRegistry(store winreg.Store, keys []string, log zerolog.Logger) *Registry {
	return &Registry{store: store, keys: keys, log: log}
}

func (r *Registry) Category() Category      { return CategoryRegistry }
func (r *Registry) RequiresElevation() bool { return true }

// RegistryKeys returns the curated keys.
func (r *Registry) RegistryKeys() []string { return r.keys }

// RegistryStore returns the registry the cleaner operates on.
func (r *Registry) RegistryStore() winreg.Store { return r.store }

func (r *Registry) Run(ctx context.Context, dryRun bool) (Statistics, error) {
	var stats Statistics
	if r.store == nil {
		return stats, fmt.Errorf("registry: %w", ErrUnavailable)
	}

	for _, key := range r.keys {
		if ctx.Err() != nil {
			stats.Fail("run interrupted: %v", ctx.Err())
			break
		}
		exists, err := r.store.KeyExists(key)
		if err != nil {
			r.log.Warn().Err(err).Str("key", key).Msg("cannot open registry key")
			stats.Fail("open %s: %v", key, err)
			continue
		}
		if !exists {
			r.log.Debug().Str("key", key).Msg("registry key absent, skipping")
			continue
		}
		r.deleteTree(key, dryRun, &stats)
	}
	return stats, nil
}

// deleteTree removes key and everything below it. It returns false when
// something below could not be removed, in which case key itself is kept.
func (r *Registry) deleteTree(key string, dryRun bool, stats *Statistics) bool {
	subkeys, err := r.store.SubKeys(key)
	if err != nil {
		if errors.Is(err, winreg.ErrNotExist) {
			return true
		}
		stats.record(itemResult{path: key, err: err, op: "enumerate"}, dryRun)
		return false
	}

	complete := true
	for _, sub := range subkeys {
		if !r.deleteTree(winreg.Join(key, sub), dryRun, stats) {
			complete = false
		}
	}

	values, err := r.store.Values(key)
	if err != nil && !errors.Is(err, winreg.ErrNotExist) {
		stats.record(itemResult{path: key, err: err, op: "read values of"}, dryRun)
		return false
	}
	for _, v := range values {
		res := itemResult{path: key + `\` + v.Name, size: int64(len(v.Data)), op: "delete value"}
		if !dryRun {
			res.err = r.store.DeleteValue(key, v.Name)
			if errors.Is(res.err, winreg.ErrNotExist) {
				continue
			}
			if res.err != nil {
				complete = false
				r.log.Warn().Err(res.err).Str("key", key).Str("value", v.Name).Msg("cannot delete registry value")
			}
		}
		stats.record(res, dryRun)
	}

	if !complete {
		return false
	}

	res := itemResult{path: key, op: "delete key"}
	if !dryRun {
		res.err = r.store.DeleteKey(key)
		if errors.Is(res.err, winreg.ErrNotExist) {
			return true
		}
		if res.err != nil {
			r.log.Warn().Err(res.err).Str("key", key).Msg("cannot delete registry key")
		}
	}
	stats.record(res, dryRun)
	return res.err == nil
}
