package ui

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"daybook/internal/api"
	"daybook/internal/debug"
	"daybook/internal/errors"
	"daybook/internal/session"
	"daybook/internal/telemetry"
	"daybook/internal/ui/theme"
)

var (
	// ErrNoBackend is returned by NewApp without a Backend.
	ErrNoBackend = stderrors.New("ui: backend is required")
	// ErrNoSession is returned by NewApp without a session store.
	ErrNoSession = stderrors.New("ui: session store is required")
)

type screenID int

const (
	screenLogin screenID = iota
	screenRegister
	screenReset
	screenDashboard
)

func (s screenID) String() string {
	switch s {
	case screenRegister:
		return "register"
	case screenReset:
		return "reset"
	case screenDashboard:
		return "dashboard"
	default:
		return "login"
	}
}

// Config configures the UI application.
type Config struct {
	Backend   Backend
	Session   session.Store
	Monitor   *telemetry.Monitor
	Clock     clockwork.Clock
	Listeners *Listeners
	// SaveTheme persists the theme chosen with the cycle key.
	SaveTheme func(name string) error
	// CopyText writes to the system clipboard.
	CopyText func(text string) error
	// MarkdownStyle is a glamour style name, or "plain".
	MarkdownStyle string
	Version       string
}

// App implements the Bubble Tea model for daybook.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	backend   Backend
	errs      *api.ErrorHandler
	monitor   *telemetry.Monitor
	clock     clockwork.Clock
	listeners *Listeners
	keys      KeyMap
	saveTheme func(string) error
	copyText  func(string) error
	version   string

	screen   screenID
	login    *loginScreen
	register *registerScreen
	reset    *resetScreen
	dash     *dashboard

	toasts       *toastStack
	spinner      spinner.Model
	spinning     bool
	showHelp     bool
	unauthorized bool
	username     string

	width  int
	height int
}

// NewApp builds the application and picks the first screen from the stored
// session.
func NewApp(cfg Config) (*App, error) {
	if cfg.Backend == nil {
		return nil, ErrNoBackend
	}
	if cfg.Session == nil {
		return nil, ErrNoSession
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Listeners == nil {
		cfg.Listeners = NewListeners()
	}
	if cfg.Monitor == nil {
		cfg.Monitor = telemetry.NewMonitor(telemetry.WithClock(cfg.Clock))
	}

	ctx, cancel := context.WithCancel(context.Background())
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Current().Primary())

	a := &App{
		ctx:       ctx,
		cancel:    cancel,
		backend:   cfg.Backend,
		monitor:   cfg.Monitor,
		clock:     cfg.Clock,
		listeners: cfg.Listeners,
		keys:      DefaultKeyMap(),
		saveTheme: cfg.SaveTheme,
		copyText:  cfg.CopyText,
		version:   cfg.Version,
		login:     newLoginScreen(cfg.Listeners),
		register:  newRegisterScreen(cfg.Listeners),
		reset:     newResetScreen(cfg.Listeners),
		dash:      newDashboard(cfg.Clock, cfg.Listeners, cfg.MarkdownStyle),
		toasts:    newToastStack(cfg.Clock),
		spinner:   sp,
	}
	a.errs = api.NewErrorHandler(cfg.Session, func() { a.unauthorized = true })
	a.errs.Logger = debug.Logger()
	if a.copyText == nil {
		a.copyText = func(string) error { return stderrors.New("clipboard not configured") }
	}

	if cfg.Backend.Authenticated(ctx) {
		a.screen = screenDashboard
		a.username = cfg.Backend.Username(ctx)
	}
	debug.Logger().Info("app ready", zap.Stringer("screen", a.screen))
	return a, nil
}

// Init kicks off the first fetch when a session already exists.
func (a *App) Init() tea.Cmd {
	if a.screen == screenDashboard {
		return a.startFetch()
	}
	return a.login.form.Focus("username")
}

// Close cancels in-flight requests.
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *App) quit() tea.Cmd {
	a.cancel()
	return tea.Quit
}

// Update routes messages. While a select holds the global subscription every
// key and mouse event goes to the active screen first and app shortcuts are
// skipped.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil
	case spinner.TickMsg:
		if !a.busy() {
			a.spinning = false
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	case toastExpiredMsg:
		a.toasts.expire(msg.id)
		return a, nil
	case authDoneMsg:
		return a, a.handleAuth(msg)
	case otpRequestedMsg, passwordResetMsg:
		return a, a.updateReset(msg)
	case goalsLoadedMsg, goalCreatedMsg, goalUpdatedMsg, goalDeletedMsg, dateSettledMsg:
		if a.screen != screenDashboard {
			// Late result after leaving the dashboard.
			a.dash.loading = false
			return a, nil
		}
		return a, a.updateDashboard(msg)
	case loggedOutMsg:
		if msg.err != nil {
			debug.Logger().Warn("logout failed", zap.Error(msg.err))
		}
		return a, tea.Batch(a.show(screenLogin), a.notify(errors.SeverityInfo, "Signed out"))
	case tea.KeyMsg:
		if key.Matches(msg, a.keys.ForceQuit) {
			return a, a.quit()
		}
		if a.listeners.Count() > 0 {
			return a, a.route(msg)
		}
		if a.showHelp {
			if key.Matches(msg, a.keys.Help) || key.Matches(msg, a.keys.Escape) {
				a.showHelp = false
			}
			return a, nil
		}
		if a.screen == screenDashboard && a.dash.editor == nil && !a.dash.confirmDelete {
			switch {
			case key.Matches(msg, a.keys.Help):
				a.showHelp = true
				return a, nil
			case key.Matches(msg, a.keys.Quit):
				return a, a.quit()
			case key.Matches(msg, a.keys.Theme):
				return a, a.cycleTheme()
			}
		}
	case tea.MouseMsg:
		if a.showHelp && a.listeners.Count() == 0 {
			if msg.Action == tea.MouseActionPress {
				a.showHelp = false
			}
			return a, nil
		}
	}
	return a, a.route(msg)
}

func (a *App) route(msg tea.Msg) tea.Cmd {
	switch a.screen {
	case screenRegister:
		return a.updateRegister(msg)
	case screenReset:
		return a.updateReset(msg)
	case screenDashboard:
		return a.updateDashboard(msg)
	default:
		return a.updateLogin(msg)
	}
}

func (a *App) busy() bool {
	return a.login.busy || a.register.busy || a.reset.busy || a.dash.loading
}

func (a *App) startSpinner() tea.Cmd {
	if a.spinning {
		return nil
	}
	a.spinning = true
	return a.spinner.Tick
}

func (a *App) notify(sev errors.Severity, message string) tea.Cmd {
	return a.toasts.push(sev, message)
}

// fail classifies err, shows it, and leaves for Login on AUTH_ERROR.
func (a *App) fail(err error, override string) tea.Cmd {
	if err == nil || stderrors.Is(err, context.Canceled) {
		return nil
	}
	ce := a.errs.Handle(err, override)
	debug.Logger().Warn("request failed",
		zap.String("code", string(ce.Code)),
		zap.Stringer("screen", a.screen),
		zap.Error(err),
	)
	cmd := a.notify(errors.SeverityOf(ce.Code), ce.Message)

	if a.unauthorized || errors.IsCode(ce, errors.CodeAuth) {
		a.unauthorized = false
		if a.screen != screenLogin {
			return tea.Batch(a.show(screenLogin), cmd)
		}
	}
	return cmd
}

func (a *App) handleAuth(msg authDoneMsg) tea.Cmd {
	from := a.screen
	a.login.busy = false
	a.register.busy = false
	if msg.err != nil {
		override := "Sign-in failed"
		if from == screenRegister {
			override = "Registration failed"
		}
		return a.fail(msg.err, override)
	}
	a.username = msg.result.User.Username
	a.login.form.Reset()
	a.register.form.Reset()
	greeting := "Welcome back, " + a.username
	if from == screenRegister {
		greeting = "Account created. Welcome, " + a.username
	}
	return tea.Batch(a.show(screenDashboard), a.notify(errors.SeveritySuccess, greeting))
}

// show switches screens, closing anything that holds the global subscription.
func (a *App) show(next screenID) tea.Cmd {
	a.dash.status.Close()
	a.dash.closeEditor()
	a.dash.confirmDelete = false
	a.showHelp = false
	if next != screenDashboard && a.dash.debounce.Pending() {
		debug.Logger().Debug("dropping pending date fetch", zap.String("day", a.dash.dayString()))
		a.dash.debounce.Cancel()
	}
	a.screen = next

	switch next {
	case screenLogin:
		a.username = ""
		a.dash.goals = nil
		a.login.busy = false
		a.login.form.SetValue("password", "")
		return a.login.form.Focus("username")
	case screenRegister:
		return a.register.form.Reset()
	case screenReset:
		a.reset.step = resetRequestOTP
		a.reset.busy = false
		return a.reset.request.Reset()
	case screenDashboard:
		a.dash.day = dayOf(a.clock.Now())
		a.dash.cursor = 0
		return a.startFetch()
	}
	return nil
}

func (a *App) cycleTheme() tea.Cmd {
	name := theme.CycleTheme()
	a.spinner.Style = lipgloss.NewStyle().Foreground(theme.Current().Primary())
	if a.saveTheme != nil {
		if err := a.saveTheme(name); err != nil {
			debug.Logger().Warn("save theme", zap.String("theme", name), zap.Error(err))
			return a.notify(errors.SeverityWarning, fmt.Sprintf("Theme %s applied but not saved", name))
		}
	}
	return a.notify(errors.SeverityInfo, "Theme: "+name)
}

func (a *App) resize(width, height int) {
	a.width, a.height = width, height
	fw := min(formWidth, max(width-2*formLeft, 20))
	a.login.form.SetWidth(fw)
	a.register.form.SetWidth(fw)
	a.reset.request.SetWidth(fw)
	a.reset.confirm.SetWidth(fw)
	a.dash.resize(width, height)
}

// View renders header, body and footer, then composes overlays on a canvas.
func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading…"
	}

	var body string
	switch a.screen {
	case screenRegister:
		body = a.viewRegister()
	case screenReset:
		body = a.viewReset()
	case screenDashboard:
		body = a.viewDashboard()
	default:
		body = a.viewLogin()
	}

	bodyHeight := max(a.height-bodyTop-1, 1)
	base := lipgloss.JoinVertical(lipgloss.Left,
		a.renderHeader(),
		"",
		lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body),
		a.renderFooter(),
	)
	if !a.showHelp && a.toasts.len() == 0 {
		return base
	}

	canvas := NewCanvas(a.width, a.height)
	canvas.DrawStringAt(0, 0, base)
	if a.showHelp {
		canvas.DrawCentered(renderHelpOverlay(a.keys), 1, 1)
	}
	if stack := a.toasts.view(a.width); stack != "" {
		canvas.DrawBottomRight(stack, 1, 1)
	}
	return canvas.Render()
}

func (a *App) renderHeader() string {
	left := styleAppHeader().Render("daybook")
	if a.version != "" {
		left += " " + styleMuted().Render(a.version)
	}
	right := ""
	if s, ok := a.monitor.Last(); ok {
		outcome := ""
		if s.Outcome != telemetry.OutcomeOK {
			outcome = " ✖"
		}
		right = styleMuted().Render(fmt.Sprintf("%s %s%s", s.Operation, s.Duration.Round(time.Millisecond), outcome))
	}
	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-1, 1)
	return left + strings.Repeat(" ", gap) + right
}
