package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// footerHint defines a key hint for the footer bar.
// These are intentionally shorter than the KeyMap help text.
type footerHint struct {
	key  string
	desc string
}

var globalFooterHints = []footerHint{
	{"?", "Help"},
	{"q", "Quit"},
}

var dashboardFooterHints = []footerHint{
	{"↑↓", "Goals"},
	{"←→", "Day"},
	{"n", "New"},
	{"s", "Status"},
	{"d", "Delete"},
	{"r", "Refresh"},
}

var formFooterHints = []footerHint{
	{"⇥", "Next"},
	{"⏎", "Submit"},
	{"Esc", "Back"},
	{"^C", "Quit"},
}

var selectFooterHints = []footerHint{
	{"↑↓", "Choose"},
	{"⏎", "Select"},
	{"Esc", "Close"},
}

// renderFooter renders the footer bar with pill-style key hints and the
// signed-in user on the right.
func (a *App) renderFooter() string {
	var hints []footerHint
	globals := 0
	switch {
	case a.listeners.Count() > 0:
		hints = append(hints, selectFooterHints...)
	case a.screen == screenDashboard && a.dash.editor == nil:
		hints = append(hints, dashboardFooterHints...)
		hints = append(hints, globalFooterHints...)
		globals = len(globalFooterHints)
	default:
		hints = append(hints, formFooterHints...)
	}

	right := ""
	if a.username != "" && a.screen == screenDashboard {
		right = styleMuted().Render("Signed in as " + a.username)
	}
	rightWidth := lipgloss.Width(right)

	hints = trimHintsToFit(hints, globals, a.width-rightWidth-4)
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, keyPill(h.key, h.desc))
	}
	left := strings.Join(parts, "  ")
	spacing := max(a.width-lipgloss.Width(left)-rightWidth, 2)
	return left + strings.Repeat(" ", spacing) + right
}

// keyPill renders a single key hint as a pill with description.
func keyPill(key, desc string) string {
	return styleKeyPill().Render(" "+key+" ") + " " + styleMuted().Render(desc)
}

// trimHintsToFit drops context hints first, then trailing globals, until the
// rendered hints fit.
func trimHintsToFit(hints []footerHint, globals, availableWidth int) []footerHint {
	for len(hints) > 0 && renderHintsWidth(hints) > availableWidth {
		if len(hints) > globals {
			// Context hints sit before the globals; drop the last one.
			ctx := len(hints) - globals
			hints = append(hints[:ctx-1:ctx-1], hints[ctx:]...)
		} else {
			hints = hints[:len(hints)-1]
		}
	}
	return hints
}

func renderHintsWidth(hints []footerHint) int {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, keyPill(h.key, h.desc))
	}
	return lipgloss.Width(strings.Join(parts, "  "))
}
