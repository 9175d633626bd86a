package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cookiemonster-dev/cookiemonster/internal/core"
	"github.com/cookiemonster-dev/cookiemonster/internal/ui"
)

// ─── Top-level renderer ─────────────────────────────────────────────────────

func (m StatusModel) renderView() string {
	w := max(m.Width, 50)

	var s strings.Builder
	if m.Snapshot == nil {
		s.WriteString(lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Italic(true).
			Render("  Collecting…"))
		s.WriteString("\n")
	} else {
		s.WriteString(Render(m.Snapshot, w))
	}
	s.WriteString(m.renderFooter())
	return s.String()
}

// Render draws a snapshot for a terminal w columns wide.
func Render(snap *Snapshot, w int) string {
	var lines []string

	title := ui.TitleStyle().Render(ui.IconDiamond + " Status")
	if snap.Host != "" {
		title += "  " + lipgloss.NewStyle().Foreground(ui.ColorMuted).Render(snap.Host)
	}
	lines = append(lines, title, "")

	elev := lipgloss.NewStyle().Foreground(ui.ColorWarning).Render(ui.IconWarning + " not elevated: recycle bin and registry will be skipped")
	if snap.Elevated {
		elev = lipgloss.NewStyle().Foreground(ui.ColorSuccess).Render(ui.IconCheck + " elevated")
	}
	lines = append(lines, "  "+elev, "")

	lines = append(lines, renderDisk(snap.Partitions, w)...)

	lines = append(lines, "")
	backups := fmt.Sprintf("  Backups  %d  %s", snap.Backups, core.FormatSize(snap.BackupBytes))
	if snap.BackupRoot != "" {
		backups += "  " + lipgloss.NewStyle().Foreground(ui.ColorMuted).Render(snap.BackupRoot)
	}
	lines = append(lines, backups)
	return strings.Join(lines, "\n") + "\n"
}

// ─── Disk ────────────────────────────────────────────────────────────────────

func renderDisk(parts []Partition, w int) []string {
	barW := 24
	if w > 110 {
		barW = 40
	}
	pathW := 4
	for _, p := range parts {
		pathW = max(pathW, lipgloss.Width(p.Path))
	}

	if len(parts) == 0 {
		return []string{lipgloss.NewStyle().Foreground(ui.ColorMuted).Italic(true).Render("  (no volumes)")}
	}
	var lines []string
	for _, p := range parts {
		lines = append(lines,
			fmt.Sprintf("  %-*s %s  %5.1f%%  %s free of %s",
				pathW, p.Path, ui.ColorBar(p.UsedPercent, barW), p.UsedPercent,
				core.FormatSize(int64(p.Free)),
				core.FormatSize(int64(p.Total))))
	}
	return lines
}

// ─── Footer ──────────────────────────────────────────────────────────────────

func (m StatusModel) renderFooter() string {
	hints := "  r refresh  " + ui.IconPipe + "  q quit"
	footer := ui.HintBarStyle().Render(hints)

	if m.Err != nil {
		errStr := lipgloss.NewStyle().
			Foreground(ui.ColorError).
			Render("  " + ui.IconError + " " + m.Err.Error())
		return errStr + "\n" + footer
	}
	return footer
}
