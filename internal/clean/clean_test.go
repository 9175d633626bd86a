package clean

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cookiemonster-dev/cookiemonster/internal/config"
	"github.com/cookiemonster-dev/cookiemonster/internal/policy"
)

// testFS is the host filesystem with injectable failures. It counts removals
// so tests can prove a dry run never removes anything.
type testFS struct {
	OSFS
	mu         sync.Mutex
	failRemove map[string]error
	failRead   map[string]error
	removes    int
}

func newTestFS() *testFS {
	return &testFS{failRemove: map[string]error{}, failRead: map[string]error{}}
}

func (f *testFS) ReadDir(path string) ([]fs.DirEntry, error) {
	f.mu.Lock()
	err := f.failRead[path]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.OSFS.ReadDir(path)
}

func (f *testFS) Remove(path string) error {
	f.mu.Lock()
	f.removes++
	err := f.failRemove[path]
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.OSFS.Remove(path)
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func TestTempFilesDryRunPredictsWithoutMutation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.tmp"), 100)
	writeFile(t, filepath.Join(root, "sub", "b.tmp"), 200)

	tfs := newTestFS()
	c := NewTempFiles([]string{root}, FileOptions{FS: tfs, Logger: zerolog.Nop()})

	stats, err := c.Run(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Removed != 0 || stats.BytesReclaimed != 0 {
		t.Errorf("dry run reported removals: %+v", stats)
	}
	if stats.WouldRemove != 2 || stats.WouldReclaim != 300 {
		t.Errorf("prediction = %d items / %d bytes, want 2 / 300", stats.WouldRemove, stats.WouldReclaim)
	}
	if tfs.removes != 0 {
		t.Errorf("dry run called Remove %d times", tfs.removes)
	}
	if !exists(filepath.Join(root, "a.tmp")) || !exists(filepath.Join(root, "sub", "b.tmp")) {
		t.Error("dry run removed files")
	}
}

func TestTempFilesRemovesAndPrunes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.tmp"), 10)
	writeFile(t, filepath.Join(root, "x", "y", "b.tmp"), 20)
	if err := os.Mkdir(filepath.Join(root, "untouched"), 0o755); err != nil {
		t.Fatal(err)
	}

	c := NewTempFiles([]string{root}, FileOptions{Logger: zerolog.Nop()})
	stats, err := c.Run(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}

	if stats.Removed != 2 || stats.BytesReclaimed != 30 || stats.Errors != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.DirsRemoved != 2 {
		t.Errorf("DirsRemoved = %d, want 2", stats.DirsRemoved)
	}
	if exists(filepath.Join(root, "x")) {
		t.Error("emptied directory was not pruned")
	}
	if !exists(filepath.Join(root, "untouched")) {
		t.Error("pre-existing empty directory must be kept")
	}
	if !exists(root) {
		t.Error("root must never be removed")
	}
}

func TestTempFilesPartialFailureContained(t *testing.T) {
	root := t.TempDir()
	var locked string
	for i, name := range []string{"1.tmp", "2.tmp", "3.tmp", "4.tmp", "5.tmp"} {
		p := filepath.Join(root, name)
		writeFile(t, p, 10)
		if i == 2 {
			locked = p
		}
	}

	tfs := newTestFS()
	tfs.failRemove[locked] = errors.New("the process cannot access the file")
	c := NewTempFiles([]string{root}, FileOptions{FS: tfs, Logger: zerolog.Nop()})

	stats, err := c.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("item failure escalated to category failure: %v", err)
	}
	if stats.Removed != 4 || stats.Errors != 1 {
		t.Errorf("removed=%d errors=%d, want 4 and 1", stats.Removed, stats.Errors)
	}
	if len(stats.Messages) != 1 || !strings.Contains(stats.Messages[0], locked) {
		t.Errorf("Messages = %v", stats.Messages)
	}
	if !exists(locked) {
		t.Error("locked file should remain")
	}
}

func TestTempFilesRootHandling(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "not-installed")
	broken := t.TempDir()
	good := t.TempDir()
	writeFile(t, filepath.Join(broken, "a"), 1)
	writeFile(t, filepath.Join(good, "b"), 7)

	tfs := newTestFS()
	tfs.failRead[broken] = fs.ErrPermission
	c := NewTempFiles([]string{missing, broken, good}, FileOptions{FS: tfs, Workers: 3, Logger: zerolog.Nop()})

	stats, err := c.Run(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1 (missing root is not an error)", stats.Errors)
	}
	if stats.Removed != 1 || stats.BytesReclaimed != 7 {
		t.Errorf("remaining root not processed: %+v", stats)
	}
}

func TestTempFilesPolicyAndDepth(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep", "a.tmp"), 1)
	writeFile(t, filepath.Join(root, "setup.exe"), 1)
	writeFile(t, filepath.Join(root, "top.tmp"), 1)
	writeFile(t, filepath.Join(root, "deep", "b.tmp"), 1)

	c := NewTempFiles([]string{root}, FileOptions{
		Policy:   policy.New([]string{"keep"}, nil, []string{".exe"}),
		MaxDepth: 1,
		Logger:   zerolog.Nop(),
	})
	stats, _ := c.Run(context.Background(), false)

	if stats.Removed != 1 {
		t.Errorf("Removed = %d, want 1", stats.Removed)
	}
	if exists(filepath.Join(root, "top.tmp")) {
		t.Error("top.tmp should be removed")
	}
	for _, kept := range []string{"keep/a.tmp", "setup.exe", "deep/b.tmp"} {
		if !exists(filepath.Join(root, filepath.FromSlash(kept))) {
			t.Errorf("%s should be kept", kept)
		}
	}
}

func TestTempFilesDoesNotFollowSymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	target := filepath.Join(outside, "precious")
	writeFile(t, target, 5)
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	c := NewTempFiles([]string{root}, FileOptions{Logger: zerolog.Nop()})
	stats, _ := c.Run(context.Background(), false)

	if !exists(target) {
		t.Fatal("file behind symlink was removed")
	}
	if stats.Removed != 1 || stats.BytesReclaimed != 0 {
		t.Errorf("expected only the link to go: %+v", stats)
	}
}

func TestEachEligible(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.log"), 3)
	writeFile(t, filepath.Join(root, "b.tmp"), 4)

	c := NewTempFiles([]string{root}, FileOptions{Policy: policy.New([]string{".log"}, nil, nil), Logger: zerolog.Nop()})

	var got []string
	err := c.EachEligible(context.Background(), func(path string, size int64) error {
		got = append(got, filepath.Base(path))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "b.tmp" {
		t.Errorf("EachEligible visited %v", got)
	}
}

func TestEachEligibleReportsSymlinks(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(t.TempDir(), "target")
	writeFile(t, target, 3)
	if err := os.Symlink(target, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	c := NewTempFiles([]string{root}, FileOptions{Logger: zerolog.Nop()})
	var got []string
	if err := c.EachEligible(context.Background(), func(path string, _ int64) error {
		got = append(got, filepath.Base(path))
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "link" {
		t.Errorf("EachEligible visited %v, want [link]", got)
	}
}

func TestSkippedDirectoryIsNeverEntered(t *testing.T) {
	root := t.TempDir()
	backups := filepath.Join(root, "backups")
	writeFile(t, filepath.Join(root, "a.tmp"), 4)
	writeFile(t, filepath.Join(backups, "temp_1", "files", "000001_a.tmp"), 4)

	c := NewTempFiles([]string{root}, FileOptions{Skip: []string{backups}, Logger: zerolog.Nop()})

	var listed []string
	if err := c.EachEligible(context.Background(), func(path string, _ int64) error {
		listed = append(listed, path)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 || filepath.Base(listed[0]) != "a.tmp" {
		t.Errorf("EachEligible visited %v", listed)
	}

	stats, err := c.Run(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Removed != 1 || stats.DirsRemoved != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if !exists(filepath.Join(backups, "temp_1", "files", "000001_a.tmp")) {
		t.Error("file below a skipped directory was removed")
	}

	// A root inside a skipped directory yields nothing.
	inner := NewTempFiles([]string{filepath.Join(backups, "temp_1")}, FileOptions{Skip: []string{backups}, Logger: zerolog.Nop()})
	stats, _ = inner.Run(context.Background(), false)
	if stats.Removed != 0 || stats.Errors != 0 {
		t.Errorf("skipped root was cleaned: %+v", stats)
	}
}

func TestPruneRespectsInclusion(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "plain", "x_cache_.dat"), 5)
	writeFile(t, filepath.Join(root, "_cache_dir", "y.dat"), 5)

	c := NewTempFiles([]string{root}, FileOptions{
		Policy: policy.New(nil, []string{"_cache_"}, nil),
		Logger: zerolog.Nop(),
	})
	stats, err := c.Run(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Removed != 2 || stats.DirsRemoved != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if !exists(filepath.Join(root, "plain")) {
		t.Error("directory outside the inclusion rules was pruned")
	}
	if exists(filepath.Join(root, "_cache_dir")) {
		t.Error("included empty directory was not pruned")
	}
}

func TestBrowserCacheProfiles(t *testing.T) {
	userData := t.TempDir()
	writeFile(t, filepath.Join(userData, "Default", "Cache", "data_0"), 10)
	writeFile(t, filepath.Join(userData, "Profile 2", "Code Cache", "js", "x"), 20)
	writeFile(t, filepath.Join(userData, "System Profile", "Cache", "data_1"), 40)

	b := config.Browser{
		Kind:            "chrome",
		Name:            "Google Chrome",
		ProfilesRoot:    userData,
		ProfilePatterns: []string{"Default", "Profile *"},
		CacheDirs:       []string{"Cache", "Code Cache"},
		ProcessNames:    []string{"chrome"},
	}
	running := func() ([]string, error) { return []string{"init", "Chrome"}, nil }
	c := NewBrowserCache(b, running, FileOptions{Logger: zerolog.Nop()})

	if got := c.Category(); got.Kind != KindBrowser || got.Name != "chrome" {
		t.Errorf("Category = %+v", got)
	}
	if roots := c.Roots(); len(roots) != 4 {
		t.Errorf("Roots = %v, want 2 profiles x 2 cache dirs", roots)
	}

	stats, err := c.Run(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Removed != 2 || stats.BytesReclaimed != 30 {
		t.Errorf("stats = %+v", stats)
	}
	if len(stats.Notes) != 1 {
		t.Errorf("expected running-browser note, got %v", stats.Notes)
	}
	if !exists(filepath.Join(userData, "System Profile", "Cache", "data_1")) {
		t.Error("non-matching profile was cleaned")
	}
}

func TestBrowserNotInstalled(t *testing.T) {
	b := config.Browser{Kind: "brave", Name: "Brave", ProfilesRoot: filepath.Join(t.TempDir(), "nope"), ProfilePatterns: []string{"Default"}, CacheDirs: []string{"Cache"}}
	stats, err := NewBrowserCache(b, nil, FileOptions{Logger: zerolog.Nop()}).Run(context.Background(), false)
	if err != nil || stats.Errors != 0 || stats.Removed != 0 {
		t.Errorf("absent browser: stats=%+v err=%v", stats, err)
	}
}

func TestStatisticsMerge(t *testing.T) {
	a := Statistics{Removed: 1, BytesReclaimed: 10, Errors: 1, Messages: []string{"x"}}
	a.Merge(Statistics{Removed: 2, BytesReclaimed: 5, WouldRemove: 3, Errors: 1, Messages: []string{"y"}, Notes: []string{"n"}})

	if a.Removed != 3 || a.BytesReclaimed != 15 || a.WouldRemove != 3 || a.Errors != 2 {
		t.Errorf("merged = %+v", a)
	}
	if strings.Join(a.Messages, ",") != "x,y" || len(a.Notes) != 1 {
		t.Errorf("messages/notes = %v / %v", a.Messages, a.Notes)
	}
}
