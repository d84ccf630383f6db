package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cast"
)

// SelectState represents whether the option menu is showing.
type SelectState int

const (
	// SelectClosed shows only the trigger.
	SelectClosed SelectState = iota
	// SelectOpen shows the trigger and the option menu.
	SelectOpen
)

// selectTriggerHeight is the trigger's row count including its border.
const selectTriggerHeight = 3

// SelectOption is one choice. Value is typically a string or an int.
type SelectOption struct {
	Value any
	Label string
	Icon  string
}

// SelectChangedMsg is emitted when an option is committed.
type SelectChangedMsg struct {
	ID    string
	Value any
}

// Select is a single-choice dropdown driven by keyboard and mouse.
//
// While open it holds a Subscription from the shared Listeners registry so
// the App can route every key and mouse event to it first. Every path out of
// the open state releases that subscription.
type Select struct {
	ID          string
	Options     []SelectOption
	Placeholder string
	Width       int

	value          any
	state          SelectState
	highlightIndex int
	focused        bool
	disabled       bool

	listeners *Listeners
	sub       *Subscription

	// Absolute screen position of the trigger's top-left cell.
	x, y int
}

// NewSelect creates a closed Select. listeners may be nil when no global
// routing is needed.
func NewSelect(id string, options []SelectOption, listeners *Listeners) Select {
	return Select{
		ID:             id,
		Options:        options,
		Placeholder:    "Select...",
		Width:          30,
		state:          SelectClosed,
		highlightIndex: -1,
		listeners:      listeners,
	}
}

// WithPlaceholder sets the placeholder text.
func (s Select) WithPlaceholder(p string) Select {
	s.Placeholder = p
	return s
}

// WithWidth sets the rendered width including the border.
func (s Select) WithWidth(w int) Select {
	if w < 8 {
		w = 8
	}
	s.Width = w
	return s
}

// WithValue sets the bound value.
func (s Select) WithValue(v any) Select {
	s.value = v
	return s
}

// sameValue compares option values by their string form, so 1 and "1" are
// the same option. Nil never matches.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	return cast.ToString(a) == cast.ToString(b)
}

// Value returns the bound value.
func (s Select) Value() any { return s.value }

// SetValue replaces the bound value without emitting a change.
func (s *Select) SetValue(v any) { s.value = v }

// State returns the current state.
func (s Select) State() SelectState { return s.currentState() }

// IsOpen reports whether the menu is showing.
func (s Select) IsOpen() bool { return s.currentState() == SelectOpen }

// currentState reports Closed once another owner has taken the listener
// claim, even if close has not run yet.
func (s Select) currentState() SelectState {
	if s.state == SelectOpen && s.sub != nil && !s.sub.Active() {
		return SelectClosed
	}
	return s.state
}

// HighlightIndex returns the highlighted option or -1.
func (s Select) HighlightIndex() int {
	if s.currentState() != SelectOpen {
		return -1
	}
	return s.highlightIndex
}

// Focused reports whether the trigger has focus.
func (s Select) Focused() bool { return s.focused }

// Disabled reports whether interaction is suppressed.
func (s Select) Disabled() bool { return s.disabled }

// SelectedIndex returns the index of the option matching the bound value, or -1.
func (s Select) SelectedIndex() int {
	for i, opt := range s.Options {
		if sameValue(opt.Value, s.value) {
			return i
		}
	}
	return -1
}

// SelectedOption returns the option matching the bound value.
func (s Select) SelectedOption() (SelectOption, bool) {
	if i := s.SelectedIndex(); i >= 0 {
		return s.Options[i], true
	}
	return SelectOption{}, false
}

// Focus gives the trigger keyboard focus.
func (s *Select) Focus() { s.focused = true }

// Blur removes focus and closes the menu.
func (s *Select) Blur() {
	s.focused = false
	s.close()
}

// SetDisabled toggles interaction. Disabling closes the menu.
func (s *Select) SetDisabled(disabled bool) {
	s.disabled = disabled
	if disabled {
		s.close()
	}
}

// SetOrigin records where the trigger is drawn so mouse events can be mapped.
func (s *Select) SetOrigin(x, y int) {
	s.x, s.y = x, y
}

// Origin returns the trigger's top-left cell.
func (s Select) Origin() (int, int) { return s.x, s.y }

// Height returns the rendered row count in the current state.
func (s Select) Height() int {
	if s.currentState() == SelectOpen {
		return selectTriggerHeight + s.menuHeight()
	}
	return selectTriggerHeight
}

func (s Select) menuHeight() int {
	if len(s.Options) == 0 {
		return 2 // empty row plus bottom border
	}
	return len(s.Options) + 1
}

// Open shows the menu, highlighting the current value when present.
func (s *Select) Open() {
	if s.disabled || s.currentState() == SelectOpen {
		return
	}
	if s.state == SelectOpen {
		s.close()
	}
	s.state = SelectOpen
	switch idx := s.SelectedIndex(); {
	case idx >= 0:
		s.highlightIndex = idx
	case len(s.Options) > 0:
		s.highlightIndex = 0
	default:
		s.highlightIndex = -1
	}
	if s.listeners != nil {
		s.sub = s.listeners.Acquire(s.ID)
	}
}

// Close hides the menu without committing.
func (s *Select) Close() { s.close() }

func (s *Select) close() {
	s.state = SelectClosed
	s.highlightIndex = -1
	if s.sub != nil {
		s.sub.Release()
		s.sub = nil
	}
}

func (s *Select) commit(idx int) tea.Cmd {
	if idx < 0 || idx >= len(s.Options) {
		s.close()
		return nil
	}
	value := s.Options[idx].Value
	s.value = value
	s.close()
	id := s.ID
	return func() tea.Msg {
		return SelectChangedMsg{ID: id, Value: value}
	}
}

// Update handles key and mouse input.
func (s Select) Update(msg tea.Msg) (Select, tea.Cmd) {
	if s.state == SelectOpen && s.currentState() == SelectClosed {
		s.close()
	}
	if s.disabled {
		return s, nil
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s.currentState() == SelectOpen {
			return s.handleOpenKey(msg)
		}
		return s.handleClosedKey(msg)
	case tea.MouseMsg:
		return s.handleMouse(msg)
	}
	return s, nil
}

func (s Select) handleClosedKey(msg tea.KeyMsg) (Select, tea.Cmd) {
	if !s.focused {
		return s, nil
	}
	switch msg.Type {
	case tea.KeyDown, tea.KeyEnter, tea.KeySpace:
		s.Open()
	}
	return s, nil
}

// handleOpenKey consumes every key while the menu is showing.
func (s Select) handleOpenKey(msg tea.KeyMsg) (Select, tea.Cmd) {
	switch msg.Type {
	case tea.KeyDown:
		if last := len(s.Options) - 1; s.highlightIndex < last {
			s.highlightIndex++
		}
	case tea.KeyUp:
		if s.highlightIndex > 0 {
			s.highlightIndex--
		}
	case tea.KeyHome:
		if len(s.Options) > 0 {
			s.highlightIndex = 0
		}
	case tea.KeyEnd:
		s.highlightIndex = len(s.Options) - 1
	case tea.KeyEnter:
		if s.highlightIndex >= 0 && s.highlightIndex < len(s.Options) {
			cmd := s.commit(s.highlightIndex)
			return s, cmd
		}
		s.close()
	case tea.KeyEsc, tea.KeyTab, tea.KeyShiftTab:
		s.close()
	}
	return s, nil
}

func (s Select) handleMouse(msg tea.MouseMsg) (Select, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionMotion:
		if s.currentState() == SelectOpen {
			if idx := s.OptionAt(msg.X, msg.Y); idx >= 0 {
				s.highlightIndex = idx
			}
		}
		return s, nil
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return s, nil
		}
	default:
		return s, nil
	}

	if s.OnTrigger(msg.X, msg.Y) {
		s.focused = true
		if s.currentState() == SelectOpen {
			s.close()
		} else {
			s.Open()
		}
		return s, nil
	}
	if s.currentState() != SelectOpen {
		return s, nil
	}
	if idx := s.OptionAt(msg.X, msg.Y); idx >= 0 {
		s.focused = true
		cmd := s.commit(idx)
		return s, cmd
	}
	if !s.Contains(msg.X, msg.Y) {
		s.close()
	}
	return s, nil
}

// OnTrigger reports whether (x, y) falls on the trigger.
func (s Select) OnTrigger(x, y int) bool {
	return x >= s.x && x < s.x+s.Width && y >= s.y && y < s.y+selectTriggerHeight
}

// Contains reports whether (x, y) falls anywhere on the component.
func (s Select) Contains(x, y int) bool {
	return x >= s.x && x < s.x+s.Width && y >= s.y && y < s.y+s.Height()
}

// OptionAt maps a cell to an option index, or -1. Only meaningful while open.
func (s Select) OptionAt(x, y int) int {
	if s.currentState() != SelectOpen || x < s.x || x >= s.x+s.Width {
		return -1
	}
	row := y - s.y - selectTriggerHeight
	if row < 0 || row >= len(s.Options) {
		return -1
	}
	return row
}

// View renders the trigger and, when open, the menu below it.
func (s Select) View() string {
	inner := s.Width - 4 // border plus padding
	if inner < 1 {
		inner = 1
	}

	arrow := "▾"
	if s.currentState() == SelectOpen {
		arrow = "▴"
	}
	label := stylePlaceholder().Render(ansi.Truncate(s.Placeholder, inner-2, "…"))
	if opt, ok := s.SelectedOption(); ok {
		label = optionText(opt, inner-2)
	}
	gap := inner - lipgloss.Width(label) - lipgloss.Width(arrow)
	if gap < 1 {
		gap = 1
	}
	trigger := styleSelectTrigger(s.focused, s.currentState() == SelectOpen, s.disabled).
		Width(s.Width - 2).
		Render(label + strings.Repeat(" ", gap) + arrow)

	if s.currentState() != SelectOpen {
		return trigger
	}

	selected := s.SelectedIndex()
	rows := make([]string, 0, len(s.Options))
	for i, opt := range s.Options {
		mark := "  "
		if i == selected {
			mark = "✓ "
		}
		rows = append(rows, styleSelectOption(i == s.highlightIndex, i == selected).
			Width(s.Width-2).
			Render(mark+optionText(opt, inner-4)))
	}
	if len(rows) == 0 {
		rows = append(rows, stylePlaceholder().Width(s.Width-2).Render(" No options"))
	}
	menu := styleSelectMenu().Render(strings.Join(rows, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, trigger, menu)
}

func optionText(opt SelectOption, width int) string {
	text := opt.Label
	if opt.Icon != "" {
		text = opt.Icon + " " + text
	}
	return ansi.Truncate(text, width, "…")
}

// SelectA11y is the accessibility snapshot of a Select, mirroring the
// combobox/listbox roles a screen reader would see.
type SelectA11y struct {
	Role             string
	Expanded         bool
	Disabled         bool
	ActiveDescendant int
	Listbox          ListboxA11y
}

// ListboxA11y describes the option menu.
type ListboxA11y struct {
	Role    string
	Visible bool
	Options []OptionA11y
}

// OptionA11y describes a single option.
type OptionA11y struct {
	Role        string
	Label       string
	Selected    bool
	Highlighted bool
}

// A11y returns the current accessibility snapshot.
func (s Select) A11y() SelectA11y {
	selected := s.SelectedIndex()
	opts := make([]OptionA11y, len(s.Options))
	for i, opt := range s.Options {
		opts[i] = OptionA11y{
			Role:        "option",
			Label:       opt.Label,
			Selected:    i == selected,
			Highlighted: s.currentState() == SelectOpen && i == s.highlightIndex,
		}
	}
	return SelectA11y{
		Role:             "combobox",
		Expanded:         s.currentState() == SelectOpen,
		Disabled:         s.disabled,
		ActiveDescendant: s.highlightIndex,
		Listbox: ListboxA11y{
			Role:    "listbox",
			Visible: s.currentState() == SelectOpen,
			Options: opts,
		},
	}
}
