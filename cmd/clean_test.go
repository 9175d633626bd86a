package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cookiemonster-dev/cookiemonster/internal/clean"
	"github.com/cookiemonster-dev/cookiemonster/internal/config"
)

func TestFileOptionsSkipBackupRoot(t *testing.T) {
	root := t.TempDir()
	backups := filepath.Join(root, "backups")
	stored := filepath.Join(backups, "temp_20260101-000000_abcd1234", "manifest.json")
	if err := os.MkdirAll(filepath.Dir(stored), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stored, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "a.tmp"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := config.Options{BackupRoot: backups}
	opts.SetDefaults()
	c := clean.NewTempFiles([]string{root}, fileOptions(opts, zerolog.Nop()))
	stats, err := c.Run(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Removed != 1 {
		t.Errorf("Removed = %d, want 1", stats.Removed)
	}
	if _, err := os.Stat(stored); err != nil {
		t.Errorf("backup below a cleaned root was touched: %v", err)
	}
}
