package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// helpSection represents a group of keybindings for display.
type helpSection struct {
	title string
	rows  [][]string // Each row: [keys, description]
}

// getHelpSections returns the help content organized into sections.
// Text is derived from binding.Help() to maintain single source of truth.
func getHelpSections(keys KeyMap) []helpSection {
	return []helpSection{
		{
			title: "DAYS & GOALS",
			rows: [][]string{
				{keys.Up.Help().Key, keys.Up.Help().Desc},
				{keys.PrevDay.Help().Key, keys.PrevDay.Help().Desc},
				{keys.Today.Help().Key, keys.Today.Help().Desc},
				{keys.PageUp.Help().Key, keys.PageUp.Help().Desc},
				{keys.Refresh.Help().Key, keys.Refresh.Help().Desc},
			},
		},
		{
			title: "ACTIONS",
			rows: [][]string{
				{keys.New.Help().Key, keys.New.Help().Desc},
				{keys.Status.Help().Key, keys.Status.Help().Desc},
				{keys.Delete.Help().Key, keys.Delete.Help().Desc},
				{keys.Copy.Help().Key, keys.Copy.Help().Desc},
				{keys.Theme.Help().Key, keys.Theme.Help().Desc},
				{keys.Logout.Help().Key, keys.Logout.Help().Desc},
			},
		},
		{
			title: "FORMS",
			rows: [][]string{
				{keys.Tab.Help().Key, keys.Tab.Help().Desc},
				{keys.ShiftTab.Help().Key, keys.ShiftTab.Help().Desc},
				{"⏎ (Enter)", "Next field / submit"},
				{keys.Submit.Help().Key, keys.Submit.Help().Desc},
				{keys.Escape.Help().Key, keys.Escape.Help().Desc},
			},
		},
		{
			title: "GENERAL",
			rows: [][]string{
				{keys.Help.Help().Key, keys.Help.Help().Desc},
				{keys.Quit.Help().Key, keys.Quit.Help().Desc},
				{keys.ForceQuit.Help().Key, keys.ForceQuit.Help().Desc},
			},
		},
	}
}

// renderHelpOverlay creates the help modal. The caller positions it.
func renderHelpOverlay(keys KeyMap) string {
	sections := getHelpSections(keys)

	leftCol := lipgloss.JoinVertical(lipgloss.Left,
		renderHelpSectionTable(sections[0]),
		"",
		renderHelpSectionTable(sections[3]),
	)
	rightCol := lipgloss.JoinVertical(lipgloss.Left,
		renderHelpSectionTable(sections[1]),
		"",
		renderHelpSectionTable(sections[2]),
	)
	columns := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, "    ", rightCol)

	title := styleTitle().Render("✦ DAYBOOK HELP ✦")
	dividerWidth := max(lipgloss.Width(columns), 40)
	divider := styleMuted().Render(strings.Repeat("─", dividerWidth))
	footer := styleMuted().Render("Press ? or Esc to close")

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		divider,
		"",
		columns,
		"",
		footer,
	)
	return styleHelpOverlay().Render(content)
}

// renderHelpSectionTable renders a single help section using lipgloss/table.
func renderHelpSectionTable(section helpSection) string {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return styleHelpKey().Width(14)
			}
			return styleText()
		}).
		Rows(section.rows...)

	header := styleHelpSectionHeader().Render(section.title)
	underline := styleMuted().Render(strings.Repeat("─", lipgloss.Width(section.title)))

	// Hidden border adds an empty top row.
	tableStr := strings.TrimPrefix(t.String(), "\n")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		underline,
		tableStr,
	)
}
