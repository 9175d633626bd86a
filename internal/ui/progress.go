package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cookiemonster-dev/cookiemonster/internal/core"
	"github.com/cookiemonster-dev/cookiemonster/internal/engine"
)

// ─── Messages ────────────────────────────────────────────────────────────────

type eventMsg engine.Event

type doneMsg struct {
	report engine.Report
}

// ─── Model ───────────────────────────────────────────────────────────────────

// ProgressModel shows the category being processed and the ones finished.
type ProgressModel struct {
	spinner  spinner.Model
	dryRun   bool
	current  string
	phase    engine.Phase
	index    int
	total    int
	finished []engine.CategoryResult
	report   *engine.Report
	quitting bool
}

// NewProgressModel returns a model for a run; dryRun only changes wording.
func NewProgressModel(dryRun bool) ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorPrimary)
	return ProgressModel{spinner: s, dryRun: dryRun}
}

func (m ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case eventMsg:
		m.current = msg.Category.Label
		m.phase = msg.Phase
		m.index = msg.Index
		m.total = msg.Total
		if msg.Phase == engine.PhaseDone && msg.Result != nil {
			m.finished = append(m.finished, *msg.Result)
			m.current = ""
		}
		return m, nil

	case doneMsg:
		m.report = &msg.report
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m ProgressModel) View() string {
	if m.report != nil || m.quitting {
		return ""
	}

	var lines []string
	for _, r := range m.finished {
		icon, style := statusStyle(r.Status)
		size := r.Stats.BytesReclaimed
		if m.dryRun {
			size = r.Stats.WouldReclaim
		}
		lines = append(lines, fmt.Sprintf("  %s %s %s",
			style.Render(icon),
			r.Category.Label,
			lipgloss.NewStyle().Foreground(ColorMuted).Render(core.FormatSize(size))))
	}

	if m.current != "" {
		verb := "Cleaning"
		switch {
		case m.phase == engine.PhaseBackup:
			verb = "Backing up"
		case m.dryRun:
			verb = "Scanning"
		}
		lines = append(lines, fmt.Sprintf("  %s %s %s %s",
			m.spinner.View(),
			verb,
			lipgloss.NewStyle().Foreground(ColorText).Bold(true).Render(m.current),
			HintBarStyle().Render(fmt.Sprintf("(%d/%d)", m.index+1, m.total))))
	} else {
		lines = append(lines, "  "+m.spinner.View()+" Working…")
	}
	return strings.Join(lines, "\n") + "\n"
}

// RunWithProgress runs fn while the progress view owns the terminal. fn
// receives the callback to pass as engine.Options.Progress. The terminal is
// in raw mode meanwhile, so Ctrl+C reaches the view rather than the process;
// leaving the view cancels the context given to fn.
func RunWithProgress(ctx context.Context, dryRun bool, fn func(ctx context.Context, progress func(engine.Event)) engine.Report) (engine.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	p := tea.NewProgram(NewProgressModel(dryRun), tea.WithContext(ctx))

	result := make(chan engine.Report, 1)
	go func() {
		r := fn(ctx, func(e engine.Event) { p.Send(eventMsg(e)) })
		result <- r
		p.Send(doneMsg{report: r})
	}()

	_, err := p.Run()
	cancel()
	r := <-result
	if errors.Is(err, tea.ErrProgramKilled) {
		err = nil
	}
	return r, err
}
