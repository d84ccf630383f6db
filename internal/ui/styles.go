package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"daybook/internal/errors"
	"daybook/internal/goals"
	"daybook/internal/ui/theme"
)

// Style helpers read the active theme on every call so a theme switch is
// picked up by the next frame.

func styleAppHeader() lipgloss.Style {
	t := theme.Current()
	return lipgloss.NewStyle().
		Foreground(t.Background()).
		Background(t.Primary()).
		Bold(true).
		Padding(0, 1)
}

func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Accent()).Bold(true)
}

func styleMuted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().TextMuted())
}

func styleText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Text())
}

func styleFieldLabel(focused bool) lipgloss.Style {
	t := theme.Current()
	s := lipgloss.NewStyle().Foreground(t.Secondary())
	if focused {
		s = s.Foreground(t.Primary()).Bold(true)
	}
	return s
}

func styleFieldError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Error())
}

func styleFieldHint() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().TextMuted()).Italic(true)
}

func styleInputPrompt(focused bool) lipgloss.Style {
	t := theme.Current()
	if focused {
		return lipgloss.NewStyle().Foreground(t.BorderFocused()).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(t.BorderNormal())
}

// Select trigger and menu.

func styleSelectTrigger(focused, open, disabled bool) lipgloss.Style {
	t := theme.Current()
	border := t.BorderNormal()
	switch {
	case disabled:
		border = t.BorderDim()
	case focused || open:
		border = t.BorderFocused()
	}
	// Toasts are drawn over the screen, so the background is set explicitly.
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		BorderBackground(t.Background()).
		Background(t.Background()).
		Foreground(t.Text()).
		Padding(0, 1)
}

func styleSelectMenu() lipgloss.Style {
	t := theme.Current()
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder(), false, true, true, true).
		BorderForeground(t.BorderFocused())
}

func styleSelectOption(highlighted, selected bool) lipgloss.Style {
	t := theme.Current()
	s := lipgloss.NewStyle().Foreground(t.Text()).Padding(0, 1)
	if selected {
		s = s.Foreground(t.Accent()).Bold(true)
	}
	if highlighted {
		s = s.Background(t.BackgroundSecondary())
	}
	return s
}

func stylePlaceholder() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().TextMuted()).Italic(true)
}

// Dashboard.

func stylePane(focused bool) lipgloss.Style {
	t := theme.Current()
	s := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.BorderNormal())
	if focused {
		s = s.BorderForeground(t.BorderFocused())
	}
	return s
}

func styleRowSelected() lipgloss.Style {
	t := theme.Current()
	return lipgloss.NewStyle().
		Background(t.BackgroundSecondary()).
		Foreground(t.TextEmphasized()).
		Bold(true)
}

func styleStatusIcon(s goals.Status) lipgloss.Style {
	t := theme.Current()
	switch s {
	case goals.StatusCompleted:
		return lipgloss.NewStyle().Foreground(t.Success())
	case goals.StatusInProgress:
		return lipgloss.NewStyle().Foreground(t.Info())
	default:
		return lipgloss.NewStyle().Foreground(t.Text())
	}
}

func styleGoalTitle(s goals.Status) lipgloss.Style {
	if s.IsDone() {
		return styleMuted().Strikethrough(true)
	}
	return styleText()
}

func stylePriority(p goals.Priority) lipgloss.Style {
	t := theme.Current()
	switch p {
	case goals.PriorityHigh:
		return lipgloss.NewStyle().Foreground(t.Error()).Bold(true)
	case goals.PriorityMedium:
		return lipgloss.NewStyle().Foreground(t.Warning())
	default:
		return lipgloss.NewStyle().Foreground(t.TextMuted())
	}
}

// Toasts.

func styleToast(sev errors.Severity) lipgloss.Style {
	t := theme.Current()
	border := t.Info()
	switch sev {
	case errors.SeveritySuccess:
		border = t.Success()
	case errors.SeverityWarning:
		border = t.Warning()
	case errors.SeverityError:
		border = t.Error()
	}
	// Toasts are drawn over the screen, so the background is set explicitly.
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		BorderBackground(t.Background()).
		Background(t.Background()).
		Foreground(t.Text()).
		Padding(0, 1)
}

func styleToastIcon(sev errors.Severity) lipgloss.Style {
	t := theme.Current()
	switch sev {
	case errors.SeveritySuccess:
		return lipgloss.NewStyle().Foreground(t.Success()).Bold(true)
	case errors.SeverityWarning:
		return lipgloss.NewStyle().Foreground(t.Warning()).Bold(true)
	case errors.SeverityError:
		return lipgloss.NewStyle().Foreground(t.Error()).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(t.Info()).Bold(true)
	}
}

// Help overlay and footer.

func styleHelpOverlay() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Current().Primary()).
		Padding(1, 2)
}

func styleHelpSectionHeader() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Secondary()).Bold(true)
}

func styleHelpKey() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Info()).Bold(true)
}

func styleKeyPill() lipgloss.Style {
	t := theme.Current()
	return lipgloss.NewStyle().Background(t.Primary()).Foreground(t.Background()).Bold(true)
}

func buildMarkdownRenderer(format string, width int) func(string) string {
	fallback := func(input string) string {
		return wordwrap.String(input, width)
	}

	style := strings.ToLower(strings.TrimSpace(format))
	if style == "" || style == "rich" {
		style = "dark"
	}
	if style == "plain" {
		return fallback
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fallback
	}
	return func(input string) string {
		out, err := renderer.Render(input)
		if err != nil {
			return fallback(input)
		}
		return strings.TrimSpace(out)
	}
}
