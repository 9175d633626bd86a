package clean

import (
	"context"
)

// TempFiles cleans the user's temporary directories.
type TempFiles struct {
	fileWalker
	roots []string
}

// NewTempFiles returns a cleaner over the given temp roots.
func NewTempFiles(roots []string, o FileOptions) *TempFiles {
	return &TempFiles{fileWalker: newFileWalker(o), roots: roots}
}

func (t *TempFiles) Category() Category      { return CategoryTemp }
func (t *TempFiles) RequiresElevation() bool { return false }

// Roots returns the candidate roots.
func (t *TempFiles) Roots() []string { return t.roots }

func (t *TempFiles) Run(ctx context.Context, dryRun bool) (Statistics, error) {
	t.log.Info().Strs("roots", t.roots).Bool("dry_run", dryRun).Msg("cleaning temporary files")
	return t.clean(ctx, t.roots, dryRun), nil
}

// EachEligible enumerates the files a run would remove.
func (t *TempFiles) EachEligible(ctx context.Context, fn func(path string, size int64) error) error {
	return t.eachEligible(ctx, t.roots, fn)
}
