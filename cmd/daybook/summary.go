package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"daybook/internal/telemetry"
	"daybook/internal/ui/theme"
)

// SessionSummary is printed after the TUI leaves the alt screen when --stats
// is set.
type SessionSummary struct {
	Version  string
	Duration time.Duration
	Ops      []telemetry.OpStats
}

func printSessionSummary(w io.Writer, summary SessionSummary) {
	t := theme.Current()
	appStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Primary())
	dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted())
	textStyle := lipgloss.NewStyle().Foreground(t.Text())
	errStyle := lipgloss.NewStyle().Foreground(t.Error())

	versionStr := ""
	if summary.Version != "" {
		versionStr = dimStyle.Render(" v" + summary.Version)
	}
	sessionStr := dimStyle.Render(fmt.Sprintf(" • %s session", formatDuration(summary.Duration)))
	_, _ = fmt.Fprintln(w, appStyle.Render("Daybook")+versionStr+sessionStr)

	if len(summary.Ops) == 0 {
		_, _ = fmt.Fprintln(w, textStyle.Render("No requests made"))
		return
	}

	var total uint64
	parts := make([]string, 0, len(summary.Ops))
	for _, op := range summary.Ops {
		total += op.Count
		part := fmt.Sprintf("%s %d× ~%s", op.Operation, op.Count, op.Mean.Round(time.Millisecond))
		if op.Errors > 0 {
			part += " " + errStyle.Render(fmt.Sprintf("(%d failed)", op.Errors))
		}
		parts = append(parts, part)
	}
	noun := "requests"
	if total == 1 {
		noun = "request"
	}
	_, _ = fmt.Fprintln(w, textStyle.Render(fmt.Sprintf("%d %s: ", total, noun))+strings.Join(parts, ", "))
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		secs := int(d.Seconds()) % 60
		if secs == 0 {
			return fmt.Sprintf("%dm", mins)
		}
		return fmt.Sprintf("%dm %ds", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}
