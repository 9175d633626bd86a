package clean

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Bin is the platform recycle bin.
type Bin interface {
	// Query reports the item count and total size held by the bin.
	Query() (items int64, bytes int64, err error)

	// Empty permanently removes everything in the bin.
	Empty() error
}

// RecycleBin empties the recycle bin. It has no enumerable entries: the
// statistics come from a query made before emptying, and stay zero when the
// platform cannot answer it.
type RecycleBin struct {
	bin Bin
	log zerolog.Logger
}

// NewRecycleBin returns a cleaner over bin. A nil bin makes the category
// unavailable.
func NewRecycleBin(bin Bin, log zerolog.Logger) *RecycleBin {
	return &RecycleBin{bin: bin, log: log}
}

func (r *RecycleBin) Category() Category      { return CategoryRecycleBin }
func (r *RecycleBin) RequiresElevation() bool { return true }

func (r *RecycleBin) Run(_ context.Context, dryRun bool) (Statistics, error) {
	var stats Statistics
	if r.bin == nil {
		return stats, fmt.Errorf("recycle bin: %w", ErrUnavailable)
	}

	items, size, err := r.bin.Query()
	if err != nil {
		r.log.Debug().Err(err).Msg("recycle bin query failed, statistics unavailable")
		items, size = 0, 0
	}

	if dryRun {
		stats.WouldRemove = int(items)
		stats.WouldReclaim = size
		return stats, nil
	}

	r.log.Info().Int64("items", items).Int64("bytes", size).Msg("emptying recycle bin")
	if err := r.bin.Empty(); err != nil {
		stats.Fail("empty recycle bin: %v", err)
		return stats, fmt.Errorf("empty recycle bin: %w", err)
	}
	stats.Removed = int(items)
	stats.BytesReclaimed = size
	return stats, nil
}
