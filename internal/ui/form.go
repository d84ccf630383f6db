package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cast"

	"daybook/internal/validate"
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldSelect
)

// textFieldHeight counts the label, input and message rows.
const textFieldHeight = 3

type formField struct {
	key      string
	label    string
	rule     validate.Field
	required bool
	kind     fieldKind

	input    textinput.Model
	sel      Select
	sanitize func(string) string
	hint     func(string) string

	err string
}

// FieldOption configures a text field.
type FieldOption func(*formField)

// Required makes an empty value fail submission.
func Required() FieldOption {
	return func(f *formField) { f.required = true }
}

// Rule attaches a validation rule checked on blur and on submit.
func Rule(field validate.Field) FieldOption {
	return func(f *formField) { f.rule = field }
}

// Masked hides the typed characters.
func Masked() FieldOption {
	return func(f *formField) {
		f.input.EchoMode = textinput.EchoPassword
		f.input.EchoCharacter = '•'
	}
}

// Sanitized rewrites the value after every keystroke.
func Sanitized(fn func(string) string) FieldOption {
	return func(f *formField) { f.sanitize = fn }
}

// Hint shows fn(value) under the field while it has no error.
func Hint(fn func(string) string) FieldOption {
	return func(f *formField) { f.hint = fn }
}

// Placeholder sets the empty-input placeholder.
func Placeholder(p string) FieldOption {
	return func(f *formField) { f.input.Placeholder = p }
}

// CharLimit caps the input length.
func CharLimit(n int) FieldOption {
	return func(f *formField) { f.input.CharLimit = n }
}

// Form is a vertical stack of labelled inputs. Fields are validated when
// focus leaves them and all together on submit; errors render inline.
type Form struct {
	id        string
	fields    []*formField
	focus     int
	x, y      int
	width     int
	keys      KeyMap
	listeners *Listeners
}

// NewForm creates an empty form. listeners is handed to select fields.
func NewForm(id string, listeners *Listeners) *Form {
	return &Form{
		id:        id,
		width:     44,
		keys:      DefaultKeyMap(),
		listeners: listeners,
	}
}

// ID returns the form id carried by formSubmitMsg.
func (f *Form) ID() string { return f.id }

// AddText appends a text input.
func (f *Form) AddText(key, label string, opts ...FieldOption) *Form {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 256
	field := &formField{key: key, label: label, kind: fieldText, input: ti}
	for _, opt := range opts {
		opt(field)
	}
	f.fields = append(f.fields, field)
	f.layout()
	if len(f.fields) == 1 {
		f.applyFocus()
	}
	return f
}

// AddSelect appends a select field bound to value.
func (f *Form) AddSelect(key, label string, options []SelectOption, value any) *Form {
	sel := NewSelect(f.id+"."+key, options, f.listeners).WithValue(value)
	f.fields = append(f.fields, &formField{key: key, label: label, kind: fieldSelect, sel: sel})
	f.layout()
	if len(f.fields) == 1 {
		f.applyFocus()
	}
	return f
}

func (f *Form) field(key string) *formField {
	for _, fld := range f.fields {
		if fld.key == key {
			return fld
		}
	}
	return nil
}

// Value returns a text field's value, or the string form of a select value.
func (f *Form) Value(key string) string {
	fld := f.field(key)
	if fld == nil {
		return ""
	}
	if fld.kind == fieldSelect {
		if opt, ok := fld.sel.SelectedOption(); ok {
			return cast.ToString(opt.Value)
		}
		return ""
	}
	return fld.input.Value()
}

// SelectValue returns the raw value bound to a select field.
func (f *Form) SelectValue(key string) any {
	if fld := f.field(key); fld != nil && fld.kind == fieldSelect {
		return fld.sel.Value()
	}
	return nil
}

// SetValue replaces a text field's value.
func (f *Form) SetValue(key, value string) {
	if fld := f.field(key); fld != nil && fld.kind == fieldText {
		fld.input.SetValue(value)
	}
}

// Error returns the inline error for a field.
func (f *Form) Error(key string) string {
	if fld := f.field(key); fld != nil {
		return fld.err
	}
	return ""
}

// SetError sets an inline error, e.g. from a server response.
func (f *Form) SetError(key, msg string) {
	if fld := f.field(key); fld != nil {
		fld.err = msg
	}
}

// FocusedKey returns the key of the focused field.
func (f *Form) FocusedKey() string {
	if f.focus < 0 || f.focus >= len(f.fields) {
		return ""
	}
	return f.fields[f.focus].key
}

// Focus moves focus to the field with key.
func (f *Form) Focus(key string) tea.Cmd {
	for i, fld := range f.fields {
		if fld.key == key {
			f.focus = i
			return f.applyFocus()
		}
	}
	return nil
}

// Reset clears values and errors and focuses the first field.
func (f *Form) Reset() tea.Cmd {
	for _, fld := range f.fields {
		fld.err = ""
		if fld.kind == fieldText {
			fld.input.Reset()
		}
	}
	f.focus = 0
	return f.applyFocus()
}

// SetOrigin positions the form for mouse hit testing.
func (f *Form) SetOrigin(x, y int) {
	f.x, f.y = x, y
	f.layout()
}

// SetWidth sets the width of every control.
func (f *Form) SetWidth(w int) {
	if w < 20 {
		w = 20
	}
	f.width = w
	f.layout()
}

// Capturing reports whether a select menu is open and owns input.
func (f *Form) Capturing() bool {
	for _, fld := range f.fields {
		if fld.kind == fieldSelect && fld.sel.IsOpen() {
			return true
		}
	}
	return false
}

// CloseMenus closes any open select without committing.
func (f *Form) CloseMenus() {
	for _, fld := range f.fields {
		if fld.kind == fieldSelect {
			fld.sel.Close()
		}
	}
	f.layout()
}

// Height returns the rendered row count.
func (f *Form) Height() int {
	h := 0
	for _, fld := range f.fields {
		h += fld.height()
	}
	return h
}

func (fld *formField) height() int {
	if fld.kind == fieldSelect {
		return 2 + fld.sel.Height()
	}
	return textFieldHeight
}

// layout recomputes control geometry. Must follow anything that changes a
// field height.
func (f *Form) layout() {
	row := f.y
	for _, fld := range f.fields {
		switch fld.kind {
		case fieldSelect:
			fld.sel = fld.sel.WithWidth(f.width)
			fld.sel.SetOrigin(f.x, row+1)
		default:
			fld.input.Width = max(f.width-4, 1)
		}
		row += fld.height()
	}
}

// fieldAt maps a screen row to a field index, or -1.
func (f *Form) fieldAt(x, y int) int {
	if x < f.x || x >= f.x+f.width {
		return -1
	}
	row := f.y
	for i, fld := range f.fields {
		h := fld.height()
		if y >= row && y < row+h {
			return i
		}
		row += h
	}
	return -1
}

func (f *Form) applyFocus() tea.Cmd {
	var cmd tea.Cmd
	for i, fld := range f.fields {
		focused := i == f.focus
		switch fld.kind {
		case fieldSelect:
			if focused {
				fld.sel.Focus()
			} else {
				fld.sel.Blur()
			}
		default:
			if focused {
				fld.input.PromptStyle = styleInputPrompt(true)
				cmd = fld.input.Focus()
			} else {
				fld.input.PromptStyle = styleInputPrompt(false)
				fld.input.Blur()
			}
		}
	}
	f.layout()
	return cmd
}

func (f *Form) moveFocus(delta int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	f.validateField(f.focus)
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	return f.applyFocus()
}

func (f *Form) lastTextField() int {
	for i := len(f.fields) - 1; i >= 0; i-- {
		if f.fields[i].kind == fieldText {
			return i
		}
	}
	return -1
}

// Update routes input to the focused field and handles focus movement and
// submission. A valid submission emits formSubmitMsg.
func (f *Form) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return f.handleKey(msg)
	case tea.MouseMsg:
		return f.handleMouse(msg)
	case SelectChangedMsg:
		for _, fld := range f.fields {
			if fld.kind == fieldSelect && fld.sel.ID == msg.ID {
				fld.err = ""
			}
		}
		f.layout()
		return nil
	}
	if fld := f.focusedField(); fld != nil && fld.kind == fieldText {
		var cmd tea.Cmd
		fld.input, cmd = fld.input.Update(msg)
		return cmd
	}
	return nil
}

func (f *Form) focusedField() *formField {
	if f.focus < 0 || f.focus >= len(f.fields) {
		return nil
	}
	return f.fields[f.focus]
}

func (f *Form) handleKey(msg tea.KeyMsg) tea.Cmd {
	fld := f.focusedField()
	if fld == nil {
		return nil
	}

	if fld.kind == fieldSelect && fld.sel.IsOpen() {
		var cmd tea.Cmd
		fld.sel, cmd = fld.sel.Update(msg)
		f.layout()
		return cmd
	}

	switch {
	case key.Matches(msg, f.keys.Submit):
		return f.Submit()
	case key.Matches(msg, f.keys.Tab):
		return f.moveFocus(1)
	case key.Matches(msg, f.keys.ShiftTab):
		return f.moveFocus(-1)
	}

	if fld.kind == fieldSelect {
		var cmd tea.Cmd
		fld.sel, cmd = fld.sel.Update(msg)
		f.layout()
		return cmd
	}

	if msg.Type == tea.KeyEnter {
		if f.focus == f.lastTextField() {
			return f.Submit()
		}
		return f.moveFocus(1)
	}

	var cmd tea.Cmd
	fld.input, cmd = fld.input.Update(msg)
	if fld.sanitize != nil {
		if v := fld.input.Value(); fld.sanitize(v) != v {
			fld.input.SetValue(fld.sanitize(v))
		}
	}
	if fld.err != "" && fld.rule != "" {
		// Clear a stale error as soon as the value becomes valid.
		if f.ruleError(fld) == "" {
			fld.err = ""
		}
	}
	return cmd
}

func (f *Form) handleMouse(msg tea.MouseMsg) tea.Cmd {
	press := msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft
	for _, fld := range f.fields {
		if fld.kind != fieldSelect || !fld.sel.IsOpen() {
			continue
		}
		if press && !fld.sel.Contains(msg.X, msg.Y) {
			// The press closes the menu and still lands on the field drawn
			// under it, hit-tested against the layout before the menu folds.
			target := f.fieldAt(msg.X, msg.Y)
			openTarget := target >= 0 && f.fields[target].kind == fieldSelect &&
				f.fields[target].sel.OnTrigger(msg.X, msg.Y)
			fld.sel.Close()
			cmd := f.focusIndex(target)
			if openTarget {
				f.fields[target].sel.Open()
				f.layout()
			}
			return cmd
		}
		var cmd tea.Cmd
		fld.sel, cmd = fld.sel.Update(msg)
		f.layout()
		return cmd
	}
	if !press {
		return nil
	}
	idx := f.fieldAt(msg.X, msg.Y)
	if idx < 0 {
		return nil
	}
	cmd := f.focusIndex(idx)
	if fld := f.fields[idx]; fld.kind == fieldSelect {
		var selCmd tea.Cmd
		fld.sel, selCmd = fld.sel.Update(msg)
		f.layout()
		cmd = tea.Batch(cmd, selCmd)
	}
	return cmd
}

// focusIndex moves focus to idx, running the blur check on the field left.
func (f *Form) focusIndex(idx int) tea.Cmd {
	if idx < 0 || idx == f.focus {
		f.layout()
		return nil
	}
	f.validateField(f.focus)
	f.focus = idx
	return f.applyFocus()
}

func (f *Form) ruleContext() validate.Context {
	ctx := validate.Context{}
	for _, fld := range f.fields {
		switch fld.rule {
		case validate.FieldPassword, validate.FieldNewPassword:
			ctx.Password = fld.input.Value()
		case validate.FieldConfirmPassword:
			ctx.ConfirmPassword = fld.input.Value()
		}
	}
	return ctx
}

func (f *Form) ruleError(fld *formField) string {
	if fld.rule == "" || fld.kind != fieldText {
		return ""
	}
	return validate.FieldError(fld.rule, fld.input.Value(), f.ruleContext())
}

// validateField runs the blur check. Empty optional values stay quiet until
// submit.
func (f *Form) validateField(i int) {
	if i < 0 || i >= len(f.fields) {
		return
	}
	fld := f.fields[i]
	if fld.kind != fieldText {
		return
	}
	if strings.TrimSpace(fld.input.Value()) == "" {
		fld.err = ""
		return
	}
	fld.err = f.ruleError(fld)
}

// Validate checks every field and focuses the first invalid one.
func (f *Form) Validate() bool {
	values := make(map[validate.Field]string)
	for _, fld := range f.fields {
		if fld.kind == fieldText && fld.rule != "" {
			values[fld.rule] = fld.input.Value()
		}
	}
	errs := validate.Form(values)

	first := -1
	for i, fld := range f.fields {
		fld.err = ""
		switch {
		case fld.required && f.isEmpty(fld):
			fld.err = fld.label + " is required"
		case fld.kind == fieldText && fld.rule != "":
			fld.err = errs[fld.rule]
		}
		if fld.err != "" && first < 0 {
			first = i
		}
	}
	if first >= 0 {
		f.focus = first
		f.applyFocus()
		return false
	}
	return true
}

func (f *Form) isEmpty(fld *formField) bool {
	if fld.kind == fieldSelect {
		return fld.sel.SelectedIndex() < 0
	}
	return strings.TrimSpace(fld.input.Value()) == ""
}

// Submit validates and, when clean, emits formSubmitMsg.
func (f *Form) Submit() tea.Cmd {
	if !f.Validate() {
		return nil
	}
	id := f.id
	return func() tea.Msg { return formSubmitMsg{id: id} }
}

// View renders every field top to bottom.
func (f *Form) View() string {
	rows := make([]string, 0, len(f.fields))
	for i, fld := range f.fields {
		focused := i == f.focus
		label := styleFieldLabel(focused).Render(fld.label)
		var control string
		if fld.kind == fieldSelect {
			control = fld.sel.View()
		} else {
			control = lipgloss.NewStyle().Width(f.width).Render(fld.input.View())
		}
		note := ""
		switch {
		case fld.err != "":
			note = styleFieldError().Render("✖ " + fld.err)
		case fld.hint != nil && fld.kind == fieldText:
			note = styleFieldHint().Render(fld.hint(fld.input.Value()))
		}
		rows = append(rows, lipgloss.JoinVertical(lipgloss.Left, label, control, note))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
