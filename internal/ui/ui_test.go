package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cookiemonster-dev/cookiemonster/internal/clean"
	"github.com/cookiemonster-dev/cookiemonster/internal/engine"
	"github.com/cookiemonster-dev/cookiemonster/internal/snapshot"
)

func TestRenderReport(t *testing.T) {
	r := engine.Report{
		DryRun:  true,
		Success: true,
		Categories: []engine.CategoryResult{{
			Category: clean.CategoryTemp,
			Stats:    clean.Statistics{WouldRemove: 2, WouldReclaim: 2048, Notes: []string{"heads up"}},
		}},
	}
	out := RenderReport(r)
	for _, want := range []string{"DRY RUN", "Temporary Files", "would remove 2 items, 2.00 KB", "heads up", "Would reclaim 2.00 KB"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestRenderBackups(t *testing.T) {
	if out := RenderBackups(nil); !strings.Contains(out, "No backups") {
		t.Errorf("empty list: %q", out)
	}
	out := RenderBackups([]snapshot.BackupRecord{{
		Category:     "registry",
		Location:     "/b/registry_x",
		Partial:      true,
		RegistryKeys: []string{`HKCU\A`},
	}})
	for _, want := range []string{"registry", "1 keys, 0 values", "partial", "/b/registry_x"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestProgressModel(t *testing.T) {
	var m tea.Model = NewProgressModel(false)

	m, _ = m.Update(eventMsg(engine.Event{Category: clean.CategoryTemp, Phase: engine.PhaseBackup, Total: 2}))
	if v := m.View(); !strings.Contains(v, "Backing up") || !strings.Contains(v, "(1/2)") {
		t.Errorf("view = %q", v)
	}

	res := engine.CategoryResult{Category: clean.CategoryTemp, Stats: clean.Statistics{BytesReclaimed: 1024}}
	m, _ = m.Update(eventMsg(engine.Event{Category: clean.CategoryTemp, Phase: engine.PhaseDone, Total: 2, Result: &res}))
	if v := m.View(); !strings.Contains(v, "1.00 KB") {
		t.Errorf("view = %q", v)
	}

	m, cmd := m.Update(doneMsg{})
	if cmd == nil || m.View() != "" {
		t.Error("done message should quit and clear the view")
	}
}

func TestColorBarWidth(t *testing.T) {
	for _, pct := range []float64{-5, 0, 42, 100, 150} {
		bar := ColorBar(pct, 10)
		if n := strings.Count(bar, IconBlock) + strings.Count(bar, IconShade); n != 10 {
			t.Errorf("ColorBar(%v) has %d cells", pct, n)
		}
	}
}
