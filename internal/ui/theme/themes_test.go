package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestBuiltinsRegistered(t *testing.T) {
	want := []string{"catppuccin", "gruvbox", "tokyonight"}
	got := Available()
	if len(got) != len(want) {
		t.Fatalf("Available() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Available() = %v, want %v", got, want)
		}
	}
}

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() { SetTheme("tokyonight") })
	for _, name := range Available() {
		if !SetTheme(name) {
			t.Errorf("SetTheme(%q) returned false", name)
			continue
		}
		if CurrentName() != name {
			t.Errorf("CurrentName() = %q, expected %q", CurrentName(), name)
		}
	}
	if SetTheme("nonexistent-theme") {
		t.Error("SetTheme(\"nonexistent-theme\") returned true")
	}
}

func TestCycleThemeWraps(t *testing.T) {
	t.Cleanup(func() { SetTheme("tokyonight") })
	SetTheme("tokyonight")

	if got := CycleTheme(); got != "catppuccin" {
		t.Fatalf("CycleTheme() from last = %q, want wrap to catppuccin", got)
	}
	if got := CycleTheme(); got != "gruvbox" {
		t.Fatalf("CycleTheme() = %q, want gruvbox", got)
	}
	if Current() != Theme(Gruvbox) {
		t.Fatal("Current() should follow CycleTheme")
	}
}

func TestThemeColorsNotEmpty(t *testing.T) {
	for _, name := range Available() {
		SetTheme(name)
		th := Current()

		colors := map[string]lipgloss.AdaptiveColor{
			"Primary":             th.Primary(),
			"Secondary":           th.Secondary(),
			"Accent":              th.Accent(),
			"Error":               th.Error(),
			"Warning":             th.Warning(),
			"Success":             th.Success(),
			"Info":                th.Info(),
			"Text":                th.Text(),
			"TextMuted":           th.TextMuted(),
			"TextEmphasized":      th.TextEmphasized(),
			"Background":          th.Background(),
			"BackgroundSecondary": th.BackgroundSecondary(),
			"BackgroundDarker":    th.BackgroundDarker(),
			"BorderNormal":        th.BorderNormal(),
			"BorderFocused":       th.BorderFocused(),
			"BorderDim":           th.BorderDim(),
		}
		for colorName, color := range colors {
			if color.Dark == "" || color.Light == "" {
				t.Errorf("theme %q: %s is missing a variant", name, colorName)
			}
		}
	}
	SetTheme("tokyonight")
}
