package clean

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cookiemonster-dev/cookiemonster/internal/config"
)

// BrowserCache cleans one browser's disk caches across all of its profiles.
type BrowserCache struct {
	fileWalker
	browser config.Browser
	running ProcessLister
}

// NewBrowserCache returns a cleaner for browser. running may be nil, in which
// case no running-browser check is made.
func NewBrowserCache(browser config.Browser, running ProcessLister, o FileOptions) *BrowserCache {
	return &BrowserCache{fileWalker: newFileWalker(o), browser: browser, running: running}
}

// BrowserCategory returns the category of a browser definition.
func BrowserCategory(b config.Browser) Category {
	return Category{Kind: KindBrowser, Name: b.Kind, Label: b.Name + " Cache"}
}

func (b *BrowserCache) Category() Category      { return BrowserCategory(b.browser) }
func (b *BrowserCache) RequiresElevation() bool { return false }

// Roots enumerates profiles and returns one root per profile cache folder.
// A browser that is not installed yields no roots.
func (b *BrowserCache) Roots() []string {
	var profiles []string
	for _, pattern := range b.browser.ProfilePatterns {
		matches, err := filepath.Glob(filepath.Join(b.browser.ProfilesRoot, pattern))
		if err != nil {
			continue
		}
		profiles = append(profiles, existingDirs(matches)...)
	}
	sort.Strings(profiles)

	var roots []string
	for _, profile := range config.Dedupe(profiles) {
		for _, dir := range b.browser.CacheDirs {
			roots = append(roots, filepath.Join(profile, dir))
		}
	}
	return roots
}

func (b *BrowserCache) Run(ctx context.Context, dryRun bool) (Statistics, error) {
	roots := b.Roots()
	b.log.Info().Str("browser", b.browser.Name).Int("roots", len(roots)).Bool("dry_run", dryRun).Msg("cleaning browser cache")

	var note string
	if len(roots) > 0 && b.isRunning() {
		note = fmt.Sprintf("%s is running; cache files in use will be reported as errors", b.browser.Name)
		b.log.Warn().Str("browser", b.browser.Name).Msg("browser is running")
	}

	stats := b.clean(ctx, roots, dryRun)
	if note != "" {
		stats.Notes = append(stats.Notes, note)
	}
	return stats, nil
}

// EachEligible enumerates the files a run would remove.
func (b *BrowserCache) EachEligible(ctx context.Context, fn func(path string, size int64) error) error {
	return b.eachEligible(ctx, b.Roots(), fn)
}

func (b *BrowserCache) isRunning() bool {
	if b.running == nil {
		return false
	}
	names, err := b.running()
	if err != nil {
		b.log.Debug().Err(err).Msg("cannot list processes")
		return false
	}
	for _, name := range names {
		for _, want := range b.browser.ProcessNames {
			if strings.EqualFold(name, want) {
				return true
			}
		}
	}
	return false
}
