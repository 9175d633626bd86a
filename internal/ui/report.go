package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/cookiemonster-dev/cookiemonster/internal/core"
	"github.com/cookiemonster-dev/cookiemonster/internal/engine"
	"github.com/cookiemonster-dev/cookiemonster/internal/report"
	"github.com/cookiemonster-dev/cookiemonster/internal/snapshot"
)

// statusStyle maps a category status to its icon and color.
func statusStyle(s engine.Status) (string, lipgloss.Style) {
	switch s {
	case engine.StatusOK:
		return IconCheck, lipgloss.NewStyle().Foreground(ColorSuccess)
	case engine.StatusPartial:
		return IconWarning, lipgloss.NewStyle().Foreground(ColorWarning)
	default:
		return IconError, lipgloss.NewStyle().Foreground(ColorError)
	}
}

// RenderReport is the styled counterpart of report.Render.
func RenderReport(r engine.Report) string {
	muted := lipgloss.NewStyle().Foreground(ColorMuted)
	text := lipgloss.NewStyle().Foreground(ColorText)
	dim := lipgloss.NewStyle().Foreground(ColorTextDim)

	var lines []string
	title := "Cleanup report"
	if r.DryRun {
		title += "  " + TagWarningStyle().Render(" DRY RUN ")
	}
	lines = append(lines, TitleStyle().Render(IconDiamond+" "+title))
	if r.Host != "" {
		lines = append(lines, muted.Render("  "+r.Host))
	}
	lines = append(lines, "")

	labelW := 8
	for _, c := range r.Categories {
		labelW = max(labelW, lipgloss.Width(c.Category.Label))
	}

	for _, c := range r.Categories {
		icon, style := statusStyle(c.Status)
		lines = append(lines, fmt.Sprintf("  %s %s  %s",
			style.Render(icon),
			text.Render(fmt.Sprintf("%-*s", labelW, c.Category.Label)),
			dim.Render(report.Summary(c.Stats, r.DryRun))))

		if c.Err != nil {
			lines = append(lines, "      "+lipgloss.NewStyle().Foreground(ColorError).Render(c.Err.Error()))
		}
		if c.Backup != "" {
			lines = append(lines, muted.Render("      "+IconFolder+" backup "+c.Backup))
		}
		for _, n := range c.Stats.Notes {
			lines = append(lines, lipgloss.NewStyle().Foreground(ColorWarning).Render("      "+IconWarning+" "+n))
		}
		for _, m := range report.Messages(c.Stats) {
			lines = append(lines, muted.Render("      "+IconBullet+" "+m))
		}
	}

	lines = append(lines, "")
	tot := r.Totals()
	verb, size := "Reclaimed", tot.BytesReclaimed
	if r.DryRun {
		verb, size = "Would reclaim", tot.WouldReclaim
	}
	totalStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess)
	if !r.Success {
		totalStyle = totalStyle.Foreground(ColorCoral)
	}
	lines = append(lines, "  "+totalStyle.Render(fmt.Sprintf("%s %s", verb, core.FormatSize(size))))

	var facts []string
	if r.FreeBefore > 0 && r.FreeAfter > 0 {
		facts = append(facts, fmt.Sprintf("free %s %s %s",
			core.FormatSize(int64(r.FreeBefore)), IconChevron, core.FormatSize(int64(r.FreeAfter))))
	}
	if r.Duration > 0 {
		facts = append(facts, r.Duration.Round(time.Millisecond).String())
	}
	if len(facts) > 0 {
		lines = append(lines, HintBarStyle().Render("  "+strings.Join(facts, " "+IconPipe+" ")))
	}
	return strings.Join(lines, "\n") + "\n"
}

// RenderBackups lists backup records, oldest first.
func RenderBackups(records []snapshot.BackupRecord) string {
	if len(records) == 0 {
		return HintBarStyle().Render("  No backups.") + "\n"
	}
	muted := lipgloss.NewStyle().Foreground(ColorMuted)
	var lines []string
	for _, r := range records {
		what := fmt.Sprintf("%d files", len(r.Files))
		if r.IsRegistry() {
			what = fmt.Sprintf("%d keys, %d values", len(r.RegistryKeys), len(r.RegistryValues))
		}
		head := fmt.Sprintf("  %s %-10s %s  %s  %s",
			lipgloss.NewStyle().Foreground(ColorSecondary).Render(IconDiamond),
			r.Category,
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			core.FormatSize(r.TotalBytes),
			what)
		if r.Partial {
			head += "  " + TagWarningStyle().Render(" partial ")
		}
		lines = append(lines, head, muted.Render("      "+r.Location))
	}
	return strings.Join(lines, "\n") + "\n"
}
