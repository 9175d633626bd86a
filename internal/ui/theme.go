// Package ui holds the terminal presentation: palette, styled renderers and
// the progress view shown while a run is in flight.
package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ─── Palette ─────────────────────────────────────────────────────────────────

var (
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#a78bfa"}
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#0891b2", Dark: "#22d3ee"}
	ColorCoral     = lipgloss.AdaptiveColor{Light: "#e11d48", Dark: "#fb7185"}
	ColorText      = lipgloss.AdaptiveColor{Light: "#1f2937", Dark: "#f3f4f6"}
	ColorTextDim   = lipgloss.AdaptiveColor{Light: "#4b5563", Dark: "#9ca3af"}
	ColorMuted     = lipgloss.AdaptiveColor{Light: "#9ca3af", Dark: "#6b7280"}
	ColorSuccess   = lipgloss.AdaptiveColor{Light: "#16a34a", Dark: "#4ade80"}
	ColorWarning   = lipgloss.AdaptiveColor{Light: "#ca8a04", Dark: "#facc15"}
	ColorOrange    = lipgloss.AdaptiveColor{Light: "#ea580c", Dark: "#fb923c"}
	ColorError     = lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"}
)

// ─── Icons ───────────────────────────────────────────────────────────────────

const (
	IconCheck   = "✓"
	IconError   = "✗"
	IconWarning = "⚠"
	IconPipe    = "│"
	IconBullet  = "•"
	IconDiamond = "◆"
	IconChevron = "›"
	IconFolder  = "▸"
	IconBlock   = "█"
	IconShade   = "░"
)

// ─── Styles ──────────────────────────────────────────────────────────────────

// TitleStyle is used for section headings.
func TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
}

// HintBarStyle is used for key hints and footers.
func HintBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
}

// TagWarningStyle renders a small highlighted tag.
func TagWarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#000000")).Background(ColorWarning)
}

// IsTerminal reports whether stdout is an interactive terminal.
func IsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ColorBar renders a ████░░░░ bar colored by severity.
func ColorBar(pct float64, width int) string {
	pct = max(0, min(pct, 100))
	filled := min(int(pct/100*float64(width)), width)

	barColor := ColorSuccess
	switch {
	case pct >= 90:
		barColor = ColorError
	case pct >= 75:
		barColor = ColorOrange
	case pct >= 50:
		barColor = ColorWarning
	}

	fStr := lipgloss.NewStyle().Foreground(barColor).Render(strings.Repeat(IconBlock, filled))
	eStr := lipgloss.NewStyle().Foreground(ColorMuted).Render(strings.Repeat(IconShade, width-filled))
	return fStr + eStr
}
