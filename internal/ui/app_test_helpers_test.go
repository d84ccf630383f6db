package ui

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"
	"github.com/muesli/termenv"

	"daybook/internal/api"
	"daybook/internal/goals"
	"daybook/internal/session"
)

// fakeBackend is an in-memory Backend keyed by wire date.
type fakeBackend struct {
	mu sync.Mutex

	goals  map[string][]goals.Goal
	nextID int
	user   string

	loginErr  error
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	resetErr  error

	loginCalls  int
	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int
	logoutCalls int
	listedDays  []string
	lastDraft   goals.Draft
	lastReg     api.Registration
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{goals: make(map[string][]goals.Goal), nextID: 100}
}

var _ Backend = (*fakeBackend)(nil)

func (f *fakeBackend) Login(_ context.Context, username, _ string) (api.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	if f.loginErr != nil {
		return api.AuthResult{}, f.loginErr
	}
	f.user = username
	return api.AuthResult{Token: "tok", User: api.User{Username: username}}, nil
}

func (f *fakeBackend) Register(_ context.Context, reg api.Registration) (api.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReg = reg
	f.user = reg.Email
	return api.AuthResult{Token: "tok", User: api.User{Username: reg.Email}}, nil
}

func (f *fakeBackend) ForgotPassword(_ context.Context, email string) (string, error) {
	if f.resetErr != nil {
		return "", f.resetErr
	}
	return "Code sent to " + email, nil
}

func (f *fakeBackend) ResetPassword(_ context.Context, _, otp, _ string) (string, error) {
	if otp != "123456" {
		return "", &api.ResponseError{StatusCode: 400, Message: "Invalid code"}
	}
	return "Password updated", nil
}

func (f *fakeBackend) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	f.user = ""
	return nil
}

func (f *fakeBackend) Authenticated(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user != ""
}

func (f *fakeBackend) Username(context.Context) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user
}

func (f *fakeBackend) ListGoals(_ context.Context, day time.Time) ([]goals.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	key := goals.FormatDate(day)
	f.listedDays = append(f.listedDays, key)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]goals.Goal(nil), f.goals[key]...), nil
}

func (f *fakeBackend) CreateGoal(_ context.Context, d goals.Draft) (goals.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.lastDraft = d
	if f.createErr != nil {
		return goals.Goal{}, f.createErr
	}
	f.nextID++
	g := goals.Goal{
		ID:          fmt.Sprintf("g%d", f.nextID),
		Title:       d.Title,
		Description: d.Description,
		Priority:    d.Priority,
		Status:      goals.StatusPending,
		Date:        d.Date,
	}
	f.goals[d.Date] = append(f.goals[d.Date], g)
	return g, nil
}

func (f *fakeBackend) UpdateGoalStatus(_ context.Context, id string, status goals.Status) (goals.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return goals.Goal{}, f.updateErr
	}
	for day, list := range f.goals {
		for i := range list {
			if list[i].ID == id {
				list[i].Status = status
				f.goals[day] = list
				return list[i], nil
			}
		}
	}
	return goals.Goal{}, &api.ResponseError{StatusCode: 404, Message: "Goal not found"}
}

func (f *fakeBackend) DeleteGoal(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for day, list := range f.goals {
		kept := list[:0]
		for _, g := range list {
			if g.ID != id {
				kept = append(kept, g)
			}
		}
		f.goals[day] = kept
	}
	return nil
}

var errUnauthorized = &api.ResponseError{StatusCode: 401, Message: "Session expired"}

// testDay is the fake clock's starting day.
var testDay = time.Date(2024, 3, 9, 9, 30, 0, 0, time.Local)

type testApp struct {
	*App
	backend *fakeBackend
	clock   *clockwork.FakeClock
	store   *session.MemoryStore
	copied  []string
	saved   []string
}

type testOption func(*Config, *testApp)

func signedIn(user string) testOption {
	return func(_ *Config, ta *testApp) { ta.backend.user = user }
}

func withSaveThemeErr(err error) testOption {
	return func(cfg *Config, ta *testApp) {
		cfg.SaveTheme = func(name string) error {
			ta.saved = append(ta.saved, name)
			return err
		}
	}
}

// newTestApp builds an App over fakes and sizes it to 100x30.
func newTestApp(t *testing.T, opts ...testOption) *testApp {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)

	ta := &testApp{
		backend: newFakeBackend(),
		clock:   clockwork.NewFakeClockAt(testDay),
		store:   session.NewMemoryStore(),
	}
	cfg := Config{
		Backend:       ta.backend,
		Session:       ta.store,
		Clock:         ta.clock,
		MarkdownStyle: "plain",
		CopyText: func(s string) error {
			ta.copied = append(ta.copied, s)
			return nil
		},
		SaveTheme: func(name string) error {
			ta.saved = append(ta.saved, name)
			return nil
		},
	}
	for _, opt := range opts {
		opt(&cfg, ta)
	}

	app, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	t.Cleanup(app.Close)
	ta.App = app
	ta.send(tea.WindowSizeMsg{Width: 100, Height: 30})
	return ta
}

// send feeds msg through Update and returns the command.
func (ta *testApp) send(msg tea.Msg) tea.Cmd {
	_, cmd := ta.Update(msg)
	return cmd
}

// drain runs cmd and feeds every resulting message of this package back
// through Update, following batches. Timer-driven commands (ticks, cursor
// blinks, toast expiry, date settle) are abandoned after a short wait so
// tests control time explicitly.
func (ta *testApp) drain(cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0 && steps < 200; steps++ {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch m := runWithTimeout(c).(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, m...)
		case toastExpiredMsg, dateSettledMsg:
		default:
			if reflect.TypeOf(m).PkgPath() != uiPkgPath {
				continue
			}
			queue = append(queue, ta.send(m))
		}
	}
}

var uiPkgPath = reflect.TypeOf(App{}).PkgPath()

func runWithTimeout(cmd tea.Cmd) tea.Msg {
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		return msg
	case <-time.After(30 * time.Millisecond):
		return nil
	}
}

func (ta *testApp) typeText(s string) {
	for _, r := range s {
		ta.drain(ta.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}))
	}
}

func (ta *testApp) press(k tea.KeyType) {
	ta.drain(ta.send(tea.KeyMsg{Type: k}))
}

func (ta *testApp) runeKey(r rune) {
	ta.drain(ta.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}))
}

func (ta *testApp) click(x, y int) {
	ta.drain(ta.send(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}))
}

// settle advances past the date debounce and delivers settle token seq.
func (ta *testApp) settle(seq uint64) {
	ta.clock.Advance(dateDebounce)
	ta.drain(ta.send(dateSettledMsg{seq: seq}))
}

// signIn drives the login form through a successful sign-in.
func (ta *testApp) signIn(t *testing.T, user string) {
	t.Helper()
	ta.typeText(user)
	ta.press(tea.KeyTab)
	ta.typeText("Secret123")
	ta.press(tea.KeyEnter)
	if ta.screen != screenDashboard {
		t.Fatalf("expected dashboard after sign-in, got %s", ta.screen)
	}
}

func seedGoals(fb *fakeBackend, day time.Time, list ...goals.Goal) {
	key := goals.FormatDate(day)
	for i := range list {
		list[i].Date = key
	}
	fb.goals[key] = list
}

var errBoom = errors.New("boom")
