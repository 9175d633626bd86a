package status

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func sample() *Snapshot {
	return &Snapshot{
		Host:     "test-host",
		Elevated: false,
		Partitions: []Partition{
			{Path: "C:", Total: 100 << 30, Used: 80 << 30, Free: 20 << 30, UsedPercent: 80},
		},
		Backups:     2,
		BackupBytes: 1536,
	}
}

func TestRender(t *testing.T) {
	out := Render(sample(), 80)
	for _, want := range []string{"test-host", "not elevated", "C:", "80.0%", "20.00 GB free of 100.00 GB", "Backups  2  1.50 KB"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestModelUpdate(t *testing.T) {
	var m tea.Model = NewStatusModel(Collector{}, 0)
	if !strings.Contains(m.View(), "Collecting") {
		t.Errorf("initial view = %q", m.View())
	}

	m, cmd := m.Update(snapshotMsg{snapshot: sample()})
	if cmd == nil || !strings.Contains(m.View(), "test-host") {
		t.Error("snapshot not shown or tick not scheduled")
	}

	m, _ = m.Update(snapshotMsg{err: errors.New("boom")})
	if v := m.View(); !strings.Contains(v, "boom") || !strings.Contains(v, "test-host") {
		t.Errorf("error view = %q", v)
	}

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil || m.View() != "" {
		t.Error("q should quit")
	}
}
