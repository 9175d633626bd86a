package clean

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

type fakeBin struct {
	items, bytes int64
	queryErr     error
	emptyErr     error
	emptied      bool
}

func (b *fakeBin) Query() (int64, int64, error) { return b.items, b.bytes, b.queryErr }

func (b *fakeBin) Empty() error {
	if b.emptyErr != nil {
		return b.emptyErr
	}
	b.emptied = true
	return nil
}

func TestRecycleBin(t *testing.T) {
	t.Run("dry run predicts", func(t *testing.T) {
		bin := &fakeBin{items: 3, bytes: 4096}
		stats, err := NewRecycleBin(bin, zerolog.Nop()).Run(context.Background(), true)
		if err != nil {
			t.Fatal(err)
		}
		if bin.emptied {
			t.Error("dry run emptied the bin")
		}
		if stats.WouldRemove != 3 || stats.WouldReclaim != 4096 || stats.Removed != 0 {
			t.Errorf("stats = %+v", stats)
		}
	})

	t.Run("empties with pre-query statistics", func(t *testing.T) {
		bin := &fakeBin{items: 2, bytes: 10}
		stats, err := NewRecycleBin(bin, zerolog.Nop()).Run(context.Background(), false)
		if err != nil || !bin.emptied {
			t.Fatalf("err=%v emptied=%v", err, bin.emptied)
		}
		if stats.Removed != 2 || stats.BytesReclaimed != 10 {
			t.Errorf("stats = %+v", stats)
		}
	})

	t.Run("query unsupported leaves zeros", func(t *testing.T) {
		bin := &fakeBin{items: 9, bytes: 9, queryErr: errors.New("unsupported")}
		stats, err := NewRecycleBin(bin, zerolog.Nop()).Run(context.Background(), false)
		if err != nil || !bin.emptied {
			t.Fatalf("err=%v emptied=%v", err, bin.emptied)
		}
		if stats.Removed != 0 || stats.BytesReclaimed != 0 {
			t.Errorf("stats = %+v", stats)
		}
	})

	t.Run("empty failure fails category", func(t *testing.T) {
		bin := &fakeBin{emptyErr: errors.New("access denied")}
		stats, err := NewRecycleBin(bin, zerolog.Nop()).Run(context.Background(), false)
		if err == nil || stats.Errors != 1 {
			t.Errorf("err=%v stats=%+v", err, stats)
		}
	})

	t.Run("no bin", func(t *testing.T) {
		_, err := NewRecycleBin(nil, zerolog.Nop()).Run(context.Background(), false)
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("err = %v, want ErrUnavailable", err)
		}
	})
}

func TestTrashBin(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "files", "a.txt"), 10)
	writeFile(t, filepath.Join(dir, "files", "folder", "b.txt"), 5)
	writeFile(t, filepath.Join(dir, "info", "a.txt.trashinfo"), 1)

	bin := NewTrashBin(dir)
	items, size, err := bin.Query()
	if err != nil {
		t.Fatal(err)
	}
	if items != 2 || size != 15 {
		t.Errorf("Query = %d items / %d bytes, want 2 / 15", items, size)
	}

	if err := bin.Empty(); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "files"))
	info, _ := os.ReadDir(filepath.Join(dir, "info"))
	if len(entries) != 0 || len(info) != 0 {
		t.Errorf("trash not empty: %d files, %d info", len(entries), len(info))
	}

	if items, _, err := NewTrashBin(filepath.Join(dir, "missing")).Query(); err != nil || items != 0 {
		t.Errorf("missing trash: items=%d err=%v", items, err)
	}
}
