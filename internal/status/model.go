package status

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ─── Messages ────────────────────────────────────────────────────────────────

type tickMsg time.Time

type snapshotMsg struct {
	snapshot *Snapshot
	err      error
}

// ─── Model ───────────────────────────────────────────────────────────────────

// StatusModel is the bubbletea Model for the live status view.
type StatusModel struct {
	Snapshot        *Snapshot
	Width           int
	Height          int
	Err             error
	collector       Collector
	refreshInterval time.Duration
	quitting        bool
}

// NewStatusModel creates a StatusModel with the given refresh cadence.
func NewStatusModel(c Collector, refreshInterval time.Duration) StatusModel {
	if refreshInterval <= 0 {
		refreshInterval = 2 * time.Second
	}
	return StatusModel{
		Width:           80,
		Height:          24,
		collector:       c,
		refreshInterval: refreshInterval,
	}
}

func (m StatusModel) doTick() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m StatusModel) collect() tea.Cmd {
	c := m.collector
	return func() tea.Msg {
		s, err := c.Collect(context.Background())
		return snapshotMsg{snapshot: s, err: err}
	}
}

// ─── tea.Model interface ─────────────────────────────────────────────────────

func (m StatusModel) Init() tea.Cmd {
	// The first snapshotMsg starts the tick loop, keeping collection and
	// display strictly sequential.
	return m.collect()
}

func (m StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.collect()
		}
		return m, nil

	case tickMsg:
		return m, m.collect()

	case snapshotMsg:
		m.Err = msg.err
		if msg.err == nil {
			m.Snapshot = msg.snapshot
		}
		return m, m.doTick()
	}

	return m, nil
}

func (m StatusModel) View() string {
	if m.quitting {
		return ""
	}
	return m.renderView()
}
