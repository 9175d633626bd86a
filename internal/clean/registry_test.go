package clean

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cookiemonster-dev/cookiemonster/internal/winreg"
)

const runMRU = `HKCU\Software\Microsoft\Windows\CurrentVersion\Explorer\RunMRU`
const recentDocs = `HKCU\Software\Microsoft\Windows\CurrentVersion\Explorer\RecentDocs`

func seedRegistry(t *testing.T) *winreg.Memory {
	t.Helper()
	m := winreg.NewMemory()
	must := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	must(m.SetValue(runMRU, winreg.Value{Name: "a", Type: winreg.TypeString, Data: []byte("c\x00m\x00d\x00\x00\x00")}))
	must(m.SetValue(runMRU, winreg.Value{Name: "MRUList", Type: winreg.TypeString, Data: []byte("a\x00\x00\x00")}))
	must(m.SetValue(recentDocs+`\.txt`, winreg.Value{Name: "0", Type: winreg.TypeBinary, Data: make([]byte, 16)}))
	must(m.CreateKey(recentDocs + `\Folder`))
	return m
}

func TestRegistryCleanDepthFirst(t *testing.T) {
	m := seedRegistry(t)
	c := NewRegistry(m, []string{runMRU, recentDocs}, zerolog.Nop())

	stats, err := c.Run(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	// RunMRU: 2 values + key; RecentDocs: .txt (1 value + key), Folder key, RecentDocs key.
	if stats.Removed != 7 || stats.Errors != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.BytesReclaimed != 8+4+16 {
		t.Errorf("BytesReclaimed = %d", stats.BytesReclaimed)
	}
	for _, k := range []string{runMRU, recentDocs} {
		if ok, _ := m.KeyExists(k); ok {
			t.Errorf("%s still exists", k)
		}
	}
}

func TestRegistryIdempotent(t *testing.T) {
	m := seedRegistry(t)
	c := NewRegistry(m, []string{runMRU, recentDocs, `HKCU\Software\Never\Existed`}, zerolog.Nop())

	if _, err := c.Run(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	stats, err := c.Run(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Errors != 0 || stats.Removed != 0 {
		t.Errorf("second run = %+v, want nothing to do and no errors", stats)
	}
}

func TestRegistryDryRun(t *testing.T) {
	m := seedRegistry(t)
	stats, err := NewRegistry(m, []string{runMRU, recentDocs}, zerolog.Nop()).Run(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	if stats.WouldRemove != 7 || stats.Removed != 0 {
		t.Errorf("stats = %+v", stats)
	}
	values, _ := m.Values(runMRU)
	if len(values) != 2 {
		t.Error("dry run deleted registry values")
	}
}

func TestRegistryBusyKeyKeepsParent(t *testing.T) {
	m := seedRegistry(t)
	m.FailDeletes(recentDocs+`\.txt`, errors.New("key busy"))

	stats, err := NewRegistry(m, []string{recentDocs, runMRU}, zerolog.Nop()).Run(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1", stats.Errors)
	}
	if ok, _ := m.KeyExists(recentDocs); !ok {
		t.Error("parent of a busy key must be kept")
	}
	if ok, _ := m.KeyExists(runMRU); ok {
		t.Error("remaining keys must still be cleaned")
	}
}

func TestRegistryUnavailable(t *testing.T) {
	_, err := NewRegistry(nil, nil, zerolog.Nop()).Run(context.Background(), false)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v", err)
	}
}
