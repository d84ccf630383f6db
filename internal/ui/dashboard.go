package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"daybook/internal/debug"
	"daybook/internal/errors"
	"daybook/internal/goals"
	"daybook/internal/timing"
	"daybook/internal/validate"
)

const (
	dateDebounce    = 300 * time.Millisecond
	refreshInterval = time.Second

	statusSelectID = "goal-status"
	editorFormID   = "goal-editor"

	// Dashboard rows: date bar on bodyTop, panes from paneTop.
	paneTop    = bodyTop + 2
	minListW   = 28
	detailMinW = 30
)

func statusOptions() []SelectOption {
	opts := make([]SelectOption, 0, len(goals.Statuses))
	for _, s := range goals.Statuses {
		opts = append(opts, SelectOption{Value: string(s), Label: s.Label(), Icon: s.Icon()})
	}
	return opts
}

func priorityOptions() []SelectOption {
	opts := make([]SelectOption, 0, len(goals.Priorities))
	for _, p := range goals.Priorities {
		opts = append(opts, SelectOption{Value: int(p), Label: p.Label(), Icon: p.Icon()})
	}
	return opts
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dashboard lists one day's goals with a detail pane for the selected goal.
type dashboard struct {
	clock    clockwork.Clock
	day      time.Time
	goals    []goals.Goal
	cursor   int
	loading  bool
	fetchErr string

	status        Select
	editor        *Form
	confirmDelete bool

	detail     viewport.Model
	completion progress.Model
	markdown   string
	render     func(string) string
	renderW    int

	debounce *timing.Debouncer
	throttle *timing.Throttler

	width, height int
}

func newDashboard(clock clockwork.Clock, l *Listeners, markdown string) *dashboard {
	return &dashboard{
		clock:    clock,
		day:      dayOf(clock.Now()),
		status:   NewSelect(statusSelectID, statusOptions(), l).WithPlaceholder("Set status"),
		detail:   viewport.New(detailMinW, 5),
		markdown: markdown,
		completion: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(16),
			progress.WithoutPercentage(),
		),
		debounce: timing.NewDebouncer(clock, dateDebounce),
		throttle: timing.NewThrottler(clock, refreshInterval),
	}
}

func (d *dashboard) selected() (goals.Goal, bool) {
	if d.cursor < 0 || d.cursor >= len(d.goals) {
		return goals.Goal{}, false
	}
	return d.goals[d.cursor], true
}

func (d *dashboard) dayString() string {
	return goals.FormatDate(d.day)
}

// Pane geometry.

func (d *dashboard) listWidth() int {
	w := d.width * 2 / 5
	return max(w, minListW)
}

func (d *dashboard) detailWidth() int {
	return max(d.width-d.listWidth(), detailMinW)
}

func (d *dashboard) paneHeight() int {
	// Rows left after header, date bar, spacers and footer.
	return max(d.height-paneTop-1, 6)
}

func (d *dashboard) listRows() int {
	return max(d.paneHeight()-2, 1)
}

func (d *dashboard) listOffset() int {
	return max(d.cursor-d.listRows()+1, 0)
}

// statusOrigin is where the status trigger sits inside the detail pane:
// after the border, padding and title row.
func (d *dashboard) statusOrigin() (int, int) {
	return d.listWidth() + 2, paneTop + 2
}

func (d *dashboard) resize(width, height int) {
	d.width, d.height = width, height
	x, y := d.statusOrigin()
	d.status = d.status.WithWidth(min(d.detailWidth()-4, 32))
	d.status.SetOrigin(x, y)
	d.detail.Width = max(d.detailWidth()-4, 1)
	d.detail.Height = max(d.paneHeight()-2-selectTriggerHeight-4, 1)
	if d.editor != nil {
		d.editor.SetWidth(min(width-2*formLeft, formWidth+10))
	}
	d.syncDetail()
}

// syncDetail refreshes the viewport for the selected goal.
func (d *dashboard) syncDetail() {
	g, ok := d.selected()
	if !ok {
		d.detail.SetContent("")
		return
	}
	if d.render == nil || d.renderW != d.detail.Width {
		d.render = buildMarkdownRenderer(d.markdown, d.detail.Width)
		d.renderW = d.detail.Width
	}
	desc := strings.TrimSpace(g.Description)
	if desc == "" {
		d.detail.SetContent(styleMuted().Render("No description."))
	} else {
		// Escaped so raw HTML in a description is shown rather than dropped.
		d.detail.SetContent(d.render(cast.ToString(validate.SanitizeInput(desc))))
	}
	d.detail.GotoTop()
	d.status.SetValue(string(g.Status))
}

func (d *dashboard) setGoals(list []goals.Goal) {
	d.goals = list
	if d.cursor >= len(list) {
		d.cursor = len(list) - 1
	}
	if d.cursor < 0 {
		d.cursor = 0
	}
	d.syncDetail()
}

func (d *dashboard) replaceGoal(g goals.Goal) {
	for i := range d.goals {
		if d.goals[i].ID == g.ID {
			d.goals[i] = g
		}
	}
	d.syncDetail()
}

func (d *dashboard) removeGoal(id string) {
	kept := d.goals[:0]
	for _, g := range d.goals {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	d.setGoals(kept)
}

func (d *dashboard) openEditor(l *Listeners) tea.Cmd {
	d.status.Close()
	d.editor = NewForm(editorFormID, l).
		AddText("title", "Title", Required(), Rule(validate.FieldTitle), CharLimit(120)).
		AddText("description", "Description (markdown)", CharLimit(2000)).
		AddSelect("priority", "Priority", priorityOptions(), int(goals.PriorityMedium))
	d.editor.SetWidth(min(d.width-2*formLeft, formWidth+10))
	d.editor.SetOrigin(formLeft, bodyTop+2)
	return d.editor.Focus("title")
}

func (d *dashboard) closeEditor() {
	if d.editor != nil {
		d.editor.CloseMenus()
		d.editor = nil
	}
}

// Update handling lives on App so results can be classified and toasted.

func (a *App) startFetch() tea.Cmd {
	d := a.dash
	// A direct fetch supersedes any pending date settle.
	d.debounce.Cancel()
	d.loading = true
	d.fetchErr = ""
	return tea.Batch(a.startSpinner(), loadGoalsCmd(a.ctx, a.backend, d.day))
}

func (a *App) changeDay(day time.Time) tea.Cmd {
	d := a.dash
	d.day = dayOf(day)
	d.goals = nil
	d.cursor = 0
	d.loading = true
	d.confirmDelete = false
	d.status.Close()
	d.syncDetail()
	seq, wait := d.debounce.Trigger()
	return tea.Batch(a.startSpinner(), scheduleDateSettle(seq, wait))
}

func (a *App) updateDashboard(msg tea.Msg) tea.Cmd {
	d := a.dash
	switch msg := msg.(type) {
	case dateSettledMsg:
		if d.debounce.Fire(msg.seq) {
			return a.startFetch()
		}
		return nil
	case goalsLoadedMsg:
		if msg.day != d.dayString() {
			debug.Logger().Debug("dropping stale goals", zap.String("day", msg.day))
			return nil
		}
		d.loading = false
		if msg.err != nil {
			d.fetchErr = "Could not load goals"
			return a.fail(msg.err, d.fetchErr)
		}
		d.setGoals(msg.goals)
		return nil
	case goalCreatedMsg:
		if msg.err != nil {
			return a.fail(msg.err, "Could not add the goal")
		}
		d.closeEditor()
		if msg.goal.Date == "" || strings.HasPrefix(msg.goal.Date, d.dayString()) {
			d.setGoals(append(d.goals, msg.goal))
			d.cursor = len(d.goals) - 1
			d.syncDetail()
		}
		return a.notify(errors.SeveritySuccess, fmt.Sprintf("Added “%s”", msg.goal.Title))
	case goalUpdatedMsg:
		if msg.err != nil {
			d.syncDetail()
			return a.fail(msg.err, "Could not update the goal")
		}
		d.replaceGoal(msg.goal)
		return a.notify(errors.SeveritySuccess, "Status → "+msg.goal.Status.Label())
	case goalDeletedMsg:
		if msg.err != nil {
			return a.fail(msg.err, "Could not delete the goal")
		}
		d.removeGoal(msg.id)
		return a.notify(errors.SeveritySuccess, "Goal deleted")
	case SelectChangedMsg:
		if d.editor != nil {
			return d.editor.Update(msg)
		}
		if msg.ID != statusSelectID {
			return nil
		}
		return a.commitStatus(cast.ToString(msg.Value))
	case formSubmitMsg:
		if d.editor == nil || msg.id != d.editor.ID() {
			return nil
		}
		draft := goals.Draft{
			Title:       strings.TrimSpace(d.editor.Value("title")),
			Description: strings.TrimSpace(d.editor.Value("description")),
			Priority:    goals.Priority(cast.ToInt(d.editor.SelectValue("priority"))),
			Date:        d.dayString(),
		}
		return createGoalCmd(a.ctx, a.backend, draft)
	case tea.KeyMsg:
		return a.dashboardKey(msg)
	case tea.MouseMsg:
		return a.dashboardMouse(msg)
	}
	if d.editor != nil {
		return d.editor.Update(msg)
	}
	return nil
}

func (a *App) commitStatus(raw string) tea.Cmd {
	d := a.dash
	g, ok := d.selected()
	if !ok {
		return nil
	}
	status, err := goals.ParseStatus(raw)
	if err != nil || status == g.Status {
		return nil
	}
	return updateStatusCmd(a.ctx, a.backend, g.ID, status)
}

func (a *App) dashboardKey(msg tea.KeyMsg) tea.Cmd {
	d := a.dash
	k := a.keys

	if d.status.IsOpen() {
		var cmd tea.Cmd
		d.status, cmd = d.status.Update(msg)
		return cmd
	}

	if d.editor != nil {
		if !d.editor.Capturing() && key.Matches(msg, k.Escape) {
			d.closeEditor()
			return nil
		}
		return d.editor.Update(msg)
	}

	if d.confirmDelete {
		d.confirmDelete = false
		if g, ok := d.selected(); ok && key.Matches(msg, k.Confirm) {
			return deleteGoalCmd(a.ctx, a.backend, g.ID)
		}
		return nil
	}

	switch {
	case key.Matches(msg, k.Up):
		if d.cursor > 0 {
			d.cursor--
			d.syncDetail()
		}
	case key.Matches(msg, k.Down):
		if d.cursor < len(d.goals)-1 {
			d.cursor++
			d.syncDetail()
		}
	case key.Matches(msg, k.PrevDay):
		return a.changeDay(d.day.AddDate(0, 0, -1))
	case key.Matches(msg, k.NextDay):
		return a.changeDay(d.day.AddDate(0, 0, 1))
	case key.Matches(msg, k.Today):
		if today := dayOf(d.clock.Now()); !today.Equal(d.day) {
			return a.changeDay(today)
		}
	case key.Matches(msg, k.PageUp):
		_ = d.detail.PageUp()
	case key.Matches(msg, k.PageDown):
		_ = d.detail.PageDown()
	case key.Matches(msg, k.Refresh):
		if !d.throttle.Allow() {
			debug.Logf("refresh throttled, %s remaining", d.throttle.Remaining())
			return nil
		}
		return a.startFetch()
	case key.Matches(msg, k.Status):
		if _, ok := d.selected(); ok {
			d.status.Focus()
			d.status.Open()
		}
	case key.Matches(msg, k.New):
		return d.openEditor(a.listeners)
	case key.Matches(msg, k.Delete):
		if _, ok := d.selected(); ok {
			d.confirmDelete = true
		}
	case key.Matches(msg, k.Copy):
		if g, ok := d.selected(); ok {
			if err := a.copyText(g.Title); err != nil {
				return a.notify(errors.SeverityWarning, "Clipboard unavailable: "+err.Error())
			}
			return a.notify(errors.SeveritySuccess, fmt.Sprintf("Copied “%s”", g.Title))
		}
	case key.Matches(msg, k.Logout):
		return logoutCmd(a.ctx, a.backend)
	}
	return nil
}

func (a *App) dashboardMouse(msg tea.MouseMsg) tea.Cmd {
	d := a.dash
	if d.editor != nil {
		return d.editor.Update(msg)
	}
	if d.status.IsOpen() {
		var cmd tea.Cmd
		d.status, cmd = d.status.Update(msg)
		return cmd
	}
	if tea.MouseEvent(msg).IsWheel() && msg.X >= d.listWidth() {
		var cmd tea.Cmd
		d.detail, cmd = d.detail.Update(msg)
		return cmd
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	if _, ok := d.selected(); ok && d.status.OnTrigger(msg.X, msg.Y) {
		var cmd tea.Cmd
		d.status, cmd = d.status.Update(msg)
		return cmd
	}
	// List rows start one below the pane's top border.
	if msg.X < d.listWidth() {
		row := msg.Y - paneTop - 1
		if row >= 0 && row < d.listRows() {
			if idx := d.listOffset() + row; idx < len(d.goals) && idx != d.cursor {
				d.cursor = idx
				d.syncDetail()
			}
		}
	}
	return nil
}

// View.

func (a *App) viewDashboard() string {
	d := a.dash
	if d.editor != nil {
		return a.viewEditor()
	}
	dateBar := a.viewDateBar()
	panes := lipgloss.JoinHorizontal(lipgloss.Top, a.viewGoalList(), a.viewGoalDetail())
	return lipgloss.JoinVertical(lipgloss.Left, dateBar, "", panes)
}

func (a *App) viewDateBar() string {
	d := a.dash
	label := d.day.Format("Monday, 2 Jan 2006")
	if d.day.Equal(dayOf(d.clock.Now())) {
		label += " (today)"
	}
	st := goals.Summarize(d.goals)
	pct := 0.0
	if st.Total > 0 {
		pct = float64(st.Completed) / float64(st.Total)
	}
	stats := styleMuted().Render(fmt.Sprintf("%d goals · %d done · %d in progress", st.Total, st.Completed, st.InProgress))
	left := styleMuted().Render("◀ ") + styleTitle().Render(label) + styleMuted().Render(" ▶")
	return " " + left + "   " + d.completion.ViewAs(pct) + "  " + stats
}

func (a *App) viewGoalList() string {
	d := a.dash
	w := d.listWidth()
	inner := max(w-4, 4)
	var rows []string
	switch {
	case d.loading && len(d.goals) == 0:
		rows = append(rows, a.spinner.View()+" Loading goals…")
	case d.fetchErr != "" && len(d.goals) == 0:
		rows = append(rows, styleFieldError().Render(d.fetchErr), styleMuted().Render("Press r to retry."))
	case len(d.goals) == 0:
		rows = append(rows, styleMuted().Render("No goals for this day."), styleMuted().Render("Press n to add one."))
	default:
		offset := d.listOffset()
		end := min(offset+d.listRows(), len(d.goals))
		for i := offset; i < end; i++ {
			g := d.goals[i]
			icon := styleStatusIcon(g.Status).Render(g.Status.Icon())
			prio := stylePriority(g.Priority).Render(g.Priority.Icon())
			title := ansi.Truncate(g.Title, inner-4, "…")
			line := icon + " " + styleGoalTitle(g.Status).Render(title)
			gap := max(inner-lipgloss.Width(line)-lipgloss.Width(prio), 1)
			line += strings.Repeat(" ", gap) + prio
			if i == d.cursor {
				line = styleRowSelected().Width(inner).Render(ansi.Strip(line))
			}
			rows = append(rows, line)
		}
	}
	return stylePane(!d.status.IsOpen()).
		Padding(0, 1).
		Width(w - 2).
		Height(d.paneHeight() - 2).
		MaxHeight(d.paneHeight()).
		Render(strings.Join(rows, "\n"))
}

func (a *App) viewGoalDetail() string {
	d := a.dash
	w := d.detailWidth()
	body := styleMuted().Render("Select a goal to see its details.")
	if g, ok := d.selected(); ok {
		meta := []string{
			stylePriority(g.Priority).Render(g.Priority.Icon()+" "+g.Priority.Label()) + styleMuted().Render(" priority"),
		}
		if !g.CreatedAt.IsZero() {
			meta = append(meta, styleMuted().Render("Created "+relativeTime(g.CreatedAt, d.clock.Now())))
		}
		if d.confirmDelete {
			meta = append(meta, styleFieldError().Render(fmt.Sprintf("Delete “%s”? y to confirm", ansi.Truncate(g.Title, 30, "…"))))
		} else {
			meta = append(meta, "")
		}
		body = lipgloss.JoinVertical(lipgloss.Left,
			styleTitle().Render(ansi.Truncate(g.Title, w-4, "…")),
			d.status.View(),
			strings.Join(meta, "\n"),
			d.detail.View(),
		)
	}
	return stylePane(d.status.IsOpen()).
		Padding(0, 1).
		Width(w - 2).
		Height(d.paneHeight() - 2).
		MaxHeight(d.paneHeight()).
		Render(body)
}

func (a *App) viewEditor() string {
	d := a.dash
	header := styleTitle().Render("New goal for " + d.day.Format("Mon 2 Jan"))
	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		d.editor.View(),
		"",
		styleMuted().Render("Ctrl+S save · Tab next field · Esc cancel"),
	)
	return lipgloss.NewStyle().PaddingLeft(formLeft).Render(body)
}
