package ui

import (
	"fmt"
	"time"
)

// relativeTime describes how long before now t occurred in at most ~8
// characters, switching to an absolute date after a week.
func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.After(now) {
		return absoluteTime(t, now)
	}

	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", max(int(diff/time.Minute), 1))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff/time.Hour))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff/(24*time.Hour)))
	default:
		return absoluteTime(t, now)
	}
}

func absoluteTime(t, now time.Time) string {
	local := t.In(now.Location())
	if local.Year() == now.Year() {
		return local.Format("Jan 2")
	}
	return local.Format("Jan '06")
}
