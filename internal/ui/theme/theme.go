// Package theme provides a semantic color system for the daybook UI.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the semantic colors used by daybook screens.
// All methods return AdaptiveColor for automatic light/dark terminal support.
type Theme interface {
	Primary() lipgloss.AdaptiveColor   // Focused borders, header background
	Secondary() lipgloss.AdaptiveColor // Field labels
	Accent() lipgloss.AdaptiveColor    // Goal titles, highlighted option

	Error() lipgloss.AdaptiveColor   // Field errors, error toasts
	Warning() lipgloss.AdaptiveColor // Warning toasts, high priority
	Success() lipgloss.AdaptiveColor // Completed goals, success toasts
	Info() lipgloss.AdaptiveColor    // Info toasts, in-progress goals

	Text() lipgloss.AdaptiveColor
	TextMuted() lipgloss.AdaptiveColor
	TextEmphasized() lipgloss.AdaptiveColor

	Background() lipgloss.AdaptiveColor
	BackgroundSecondary() lipgloss.AdaptiveColor // Selected rows, open menus
	BackgroundDarker() lipgloss.AdaptiveColor    // Badges

	BorderNormal() lipgloss.AdaptiveColor
	BorderFocused() lipgloss.AdaptiveColor
	BorderDim() lipgloss.AdaptiveColor
}

// Palette is a Theme backed by plain fields.
type Palette struct {
	PrimaryColor             lipgloss.AdaptiveColor
	SecondaryColor           lipgloss.AdaptiveColor
	AccentColor              lipgloss.AdaptiveColor
	ErrorColor               lipgloss.AdaptiveColor
	WarningColor             lipgloss.AdaptiveColor
	SuccessColor             lipgloss.AdaptiveColor
	InfoColor                lipgloss.AdaptiveColor
	TextColor                lipgloss.AdaptiveColor
	TextMutedColor           lipgloss.AdaptiveColor
	TextEmphasizedColor      lipgloss.AdaptiveColor
	BackgroundColor          lipgloss.AdaptiveColor
	BackgroundSecondaryColor lipgloss.AdaptiveColor
	BackgroundDarkerColor    lipgloss.AdaptiveColor
	BorderNormalColor        lipgloss.AdaptiveColor
	BorderFocusedColor       lipgloss.AdaptiveColor
	BorderDimColor           lipgloss.AdaptiveColor
}

func (p Palette) Primary() lipgloss.AdaptiveColor             { return p.PrimaryColor }
func (p Palette) Secondary() lipgloss.AdaptiveColor           { return p.SecondaryColor }
func (p Palette) Accent() lipgloss.AdaptiveColor              { return p.AccentColor }
func (p Palette) Error() lipgloss.AdaptiveColor               { return p.ErrorColor }
func (p Palette) Warning() lipgloss.AdaptiveColor             { return p.WarningColor }
func (p Palette) Success() lipgloss.AdaptiveColor             { return p.SuccessColor }
func (p Palette) Info() lipgloss.AdaptiveColor                { return p.InfoColor }
func (p Palette) Text() lipgloss.AdaptiveColor                { return p.TextColor }
func (p Palette) TextMuted() lipgloss.AdaptiveColor           { return p.TextMutedColor }
func (p Palette) TextEmphasized() lipgloss.AdaptiveColor      { return p.TextEmphasizedColor }
func (p Palette) Background() lipgloss.AdaptiveColor          { return p.BackgroundColor }
func (p Palette) BackgroundSecondary() lipgloss.AdaptiveColor { return p.BackgroundSecondaryColor }
func (p Palette) BackgroundDarker() lipgloss.AdaptiveColor    { return p.BackgroundDarkerColor }
func (p Palette) BorderNormal() lipgloss.AdaptiveColor        { return p.BorderNormalColor }
func (p Palette) BorderFocused() lipgloss.AdaptiveColor       { return p.BorderFocusedColor }
func (p Palette) BorderDim() lipgloss.AdaptiveColor           { return p.BorderDimColor }

func c(dark, light string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Dark: dark, Light: light}
}
