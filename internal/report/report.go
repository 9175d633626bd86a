// Package report renders a run report as plain text or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/cookiemonster-dev/cookiemonster/internal/clean"
	"github.com/cookiemonster-dev/cookiemonster/internal/core"
	"github.com/cookiemonster-dev/cookiemonster/internal/engine"
)

// MaxShownMessages is how many failure messages are listed per category.
const MaxShownMessages = 10

// Render returns the human-readable summary of r. The output depends only on
// r.
func Render(r engine.Report) string {
	var b strings.Builder

	title := "Cleanup report"
	if r.DryRun {
		title += " (dry run, nothing was changed)"
	}
	b.WriteString(title + "\n")
	if r.Host != "" {
		fmt.Fprintf(&b, "Host: %s\n", r.Host)
	}
	b.WriteString("\n")

	for _, c := range r.Categories {
		fmt.Fprintf(&b, "%-24s %-8s %s\n", c.Category.Label, c.Status, Summary(c.Stats, r.DryRun))
		if c.Err != nil {
			fmt.Fprintf(&b, "    ! %v\n", c.Err)
		}
		if c.Backup != "" {
			fmt.Fprintf(&b, "    backup: %s\n", c.Backup)
		}
		for _, n := range c.Stats.Notes {
			fmt.Fprintf(&b, "    note: %s\n", n)
		}
		for _, m := range Messages(c.Stats) {
			fmt.Fprintf(&b, "    - %s\n", m)
		}
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "%-24s %-8s %s\n", "Total", outcome(r), Summary(r.Totals(), r.DryRun))
	if r.FreeBefore > 0 && r.FreeAfter > 0 {
		fmt.Fprintf(&b, "Free space: %s -> %s\n", core.FormatSize(int64(r.FreeBefore)), core.FormatSize(int64(r.FreeAfter)))
	}
	if r.Duration > 0 {
		fmt.Fprintf(&b, "Duration: %s\n", r.Duration.Round(time.Millisecond))
	}
	return b.String()
}

// Summary is the one-line statistics text of a category.
func Summary(s clean.Statistics, dryRun bool) string {
	if dryRun {
		return fmt.Sprintf("would remove %s items, %s, %s errors",
			humanize.Comma(int64(s.WouldRemove)), core.FormatSize(s.WouldReclaim), humanize.Comma(int64(s.Errors)))
	}
	text := fmt.Sprintf("removed %s items, %s", humanize.Comma(int64(s.Removed)), core.FormatSize(s.BytesReclaimed))
	if s.DirsRemoved > 0 {
		text += fmt.Sprintf(", %s folders", humanize.Comma(int64(s.DirsRemoved)))
	}
	return text + fmt.Sprintf(", %s errors", humanize.Comma(int64(s.Errors)))
}

// Messages returns the failure messages to display, truncated to
// MaxShownMessages with a trailing count of the rest.
func Messages(s clean.Statistics) []string {
	if len(s.Messages) <= MaxShownMessages && s.Errors <= len(s.Messages) {
		return s.Messages
	}
	shown := s.Messages[:min(len(s.Messages), MaxShownMessages)]
	out := append([]string(nil), shown...)
	return append(out, fmt.Sprintf("... and %s more", humanize.Comma(int64(s.Errors-len(shown)))))
}

func outcome(r engine.Report) string {
	if r.Success {
		return "ok"
	}
	return "failed"
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r engine.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
