package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"daybook/internal/api"
	appErrors "daybook/internal/errors"
	"daybook/internal/goals"
	"daybook/internal/session"
	"daybook/internal/ui/theme"
)

func latestToast(t *testing.T, ta *testApp) toast {
	t.Helper()
	tt, ok := ta.toasts.latest()
	if !ok {
		t.Fatal("expected a toast")
	}
	return tt
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := runWithTimeout(cmd).(tea.QuitMsg)
	return ok
}

func TestNewAppRequiresDependencies(t *testing.T) {
	t.Run("Backend", func(t *testing.T) {
		_, err := NewApp(Config{Session: session.NewMemoryStore()})
		if !errors.Is(err, ErrNoBackend) {
			t.Fatalf("expected ErrNoBackend, got %v", err)
		}
	})
	t.Run("Session", func(t *testing.T) {
		_, err := NewApp(Config{Backend: newFakeBackend()})
		if !errors.Is(err, ErrNoSession) {
			t.Fatalf("expected ErrNoSession, got %v", err)
		}
	})
}

func TestInitialScreen(t *testing.T) {
	t.Run("LoginWithoutSession", func(t *testing.T) {
		ta := newTestApp(t)
		if ta.screen != screenLogin {
			t.Fatalf("expected login, got %s", ta.screen)
		}
		if got := ta.login.form.FocusedKey(); got != "username" {
			t.Fatalf("expected username focused, got %q", got)
		}
	})

	t.Run("DashboardWithSession", func(t *testing.T) {
		ta := newTestApp(t, signedIn("ada"))
		seedGoals(ta.backend, testDay, goals.Goal{ID: "1", Title: "Ship it", Status: goals.StatusPending})
		ta.drain(ta.Init())

		if ta.screen != screenDashboard {
			t.Fatalf("expected dashboard, got %s", ta.screen)
		}
		if ta.username != "ada" {
			t.Fatalf("expected username ada, got %q", ta.username)
		}
		if len(ta.dash.goals) != 1 || ta.dash.loading {
			t.Fatalf("expected one loaded goal, got %d (loading=%v)", len(ta.dash.goals), ta.dash.loading)
		}
		if ta.backend.listedDays[0] != "2024-03-09" {
			t.Fatalf("expected fetch for 2024-03-09, got %v", ta.backend.listedDays)
		}
	})
}

func TestLoginFlow(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ta := newTestApp(t)
		ta.signIn(t, "ada")

		if ta.username != "ada" {
			t.Fatalf("expected username ada, got %q", ta.username)
		}
		if got := latestToast(t, ta); got.severity != appErrors.SeveritySuccess || !strings.Contains(got.message, "ada") {
			t.Fatalf("unexpected toast %+v", got)
		}
		if ta.login.form.Value("password") != "" {
			t.Fatal("expected the password to be cleared after sign-in")
		}
	})

	t.Run("RequiredFieldsBlockSubmit", func(t *testing.T) {
		ta := newTestApp(t)
		ta.press(tea.KeyTab)
		ta.press(tea.KeyEnter)

		if ta.backend.loginCalls != 0 {
			t.Fatal("expected no login call with empty fields")
		}
		if got := ta.login.form.Error("username"); got != "Username is required" {
			t.Fatalf("unexpected username error %q", got)
		}
		if ta.login.form.FocusedKey() != "username" {
			t.Fatal("expected focus on the first invalid field")
		}
	})

	t.Run("FailureShowsServerMessage", func(t *testing.T) {
		ta := newTestApp(t)
		ta.backend.loginErr = &api.ResponseError{StatusCode: 400, Message: "Invalid credentials"}
		ta.typeText("ada")
		ta.press(tea.KeyTab)
		ta.typeText("wrong-pass")
		ta.press(tea.KeyEnter)

		if ta.screen != screenLogin {
			t.Fatalf("expected to stay on login, got %s", ta.screen)
		}
		if ta.login.busy {
			t.Fatal("expected busy to clear after failure")
		}
		if got := latestToast(t, ta); got.message != "Invalid credentials" {
			t.Fatalf("unexpected toast %+v", got)
		}
	})

	t.Run("NetworkFailureUsesOverride", func(t *testing.T) {
		ta := newTestApp(t)
		ta.backend.loginErr = &api.RequestError{Err: errBoom}
		ta.typeText("ada")
		ta.press(tea.KeyTab)
		ta.typeText("secret1")
		ta.press(tea.KeyEnter)

		if got := latestToast(t, ta); got.message != "Sign-in failed" {
			t.Fatalf("expected override message, got %q", got.message)
		}
	})
}

func TestUnauthorizedReturnsToLogin(t *testing.T) {
	ta := newTestApp(t, signedIn("ada"))
	ctx := context.Background()
	_ = ta.store.Set(ctx, session.KeyToken, "stale")
	_ = ta.store.Set(ctx, session.KeyUsername, "ada")
	ta.backend.listErr = errUnauthorized

	ta.drain(ta.Init())

	if ta.screen != screenLogin {
		t.Fatalf("expected login after 401, got %s", ta.screen)
	}
	if ta.store.Len() != 0 {
		t.Fatalf("expected session cleared, %d keys remain", ta.store.Len())
	}
	if got := latestToast(t, ta); got.message != "Session expired" {
		t.Fatalf("unexpected toast %q", got.message)
	}
	if ta.username != "" {
		t.Fatal("expected username cleared")
	}
}

func TestSelectCapturesInput(t *testing.T) {
	ta := newTestApp(t, signedIn("ada"))
	seedGoals(ta.backend, testDay, goals.Goal{ID: "1", Title: "Ship it", Status: goals.StatusPending})
	ta.drain(ta.Init())

	ta.runeKey('s')
	if !ta.dash.status.IsOpen() || ta.listeners.Count() != 1 {
		t.Fatalf("expected open status select holding the subscription (count=%d)", ta.listeners.Count())
	}
	if ta.listeners.Owner() != statusSelectID {
		t.Fatalf("expected owner %q, got %q", statusSelectID, ta.listeners.Owner())
	}

	if isQuit(ta.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})) {
		t.Fatal("q must not quit while the select is open")
	}
	ta.runeKey('?')
	if ta.showHelp {
		t.Fatal("help must not open while the select is open")
	}

	ta.press(tea.KeyEsc)
	if ta.dash.status.IsOpen() || ta.listeners.Count() != 0 {
		t.Fatal("expected esc to close the select and release the subscription")
	}
	if !isQuit(ta.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})) {
		t.Fatal("expected q to quit once the select is closed")
	}
}

func TestForceQuitAlwaysWins(t *testing.T) {
	ta := newTestApp(t, signedIn("ada"))
	seedGoals(ta.backend, testDay, goals.Goal{ID: "1", Title: "Ship it"})
	ta.drain(ta.Init())
	ta.runeKey('s')

	if !isQuit(ta.send(tea.KeyMsg{Type: tea.KeyCtrlC})) {
		t.Fatal("expected ctrl+c to quit with an open select")
	}
	if ta.ctx.Err() == nil {
		t.Fatal("expected quit to cancel in-flight requests")
	}
}

func TestQuitKeyOnlyOnDashboard(t *testing.T) {
	ta := newTestApp(t)
	if isQuit(ta.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})) {
		t.Fatal("q must type into the login form, not quit")
	}
	if got := ta.login.form.Value("username"); got != "q" {
		t.Fatalf("expected q typed into username, got %q", got)
	}
}

func TestHelpOverlay(t *testing.T) {
	ta := newTestApp(t, signedIn("ada"))
	ta.drain(ta.Init())

	ta.runeKey('?')
	if !ta.showHelp {
		t.Fatal("expected help to open")
	}
	if !strings.Contains(ta.View(), "DAYBOOK HELP") {
		t.Fatal("expected the overlay in the view")
	}

	// Keys are swallowed while help is up.
	ta.runeKey('n')
	if ta.dash.editor != nil {
		t.Fatal("expected n to be ignored under the help overlay")
	}

	ta.press(tea.KeyEsc)
	if ta.showHelp {
		t.Fatal("expected esc to close help")
	}

	ta.runeKey('?')
	ta.click(1, 1)
	if ta.showHelp {
		t.Fatal("expected a click to close help")
	}
}

func TestCycleTheme(t *testing.T) {
	prev := theme.CurrentName()
	t.Cleanup(func() { theme.SetTheme(prev) })

	t.Run("SavesChoice", func(t *testing.T) {
		ta := newTestApp(t, signedIn("ada"))
		ta.drain(ta.Init())
		ta.runeKey('t')

		if len(ta.saved) != 1 || ta.saved[0] != theme.CurrentName() {
			t.Fatalf("expected saved theme %q, got %v", theme.CurrentName(), ta.saved)
		}
		if got := latestToast(t, ta); got.message != "Theme: "+theme.CurrentName() {
			t.Fatalf("unexpected toast %q", got.message)
		}
	})

	t.Run("WarnsWhenSaveFails", func(t *testing.T) {
		ta := newTestApp(t, signedIn("ada"), withSaveThemeErr(errBoom))
		ta.drain(ta.Init())
		ta.runeKey('t')

		got := latestToast(t, ta)
		if got.severity != appErrors.SeverityWarning || !strings.Contains(got.message, "not saved") {
			t.Fatalf("unexpected toast %+v", got)
		}
	})
}

func TestRegisterFlow(t *testing.T) {
	ta := newTestApp(t)
	ta.drain(ta.send(tea.KeyMsg{Type: tea.KeyCtrlR}))
	if ta.screen != screenRegister {
		t.Fatalf("expected register, got %s", ta.screen)
	}

	ta.typeText("Ada Lovelace")
	ta.press(tea.KeyTab)
	ta.typeText("ada@example.com")
	ta.press(tea.KeyTab)
	ta.typeText("98-76 54x3210")
	if got := ta.register.form.Value("mobile"); got != "9876543210" {
		t.Fatalf("expected sanitized mobile, got %q", got)
	}
	ta.press(tea.KeyTab)
	ta.typeText("Secret123")
	ta.press(tea.KeyTab)
	ta.typeText("Secret124")
	ta.press(tea.KeyEnter)

	if ta.screen != screenRegister {
		t.Fatal("expected mismatched confirmation to block submit")
	}
	if got := ta.register.form.Error("confirmPassword"); got == "" {
		t.Fatal("expected a confirmPassword error")
	}

	ta.press(tea.KeyBackspace)
	ta.typeText("3")
	ta.press(tea.KeyEnter)

	if ta.screen != screenDashboard {
		t.Fatalf("expected dashboard after register, got %s", ta.screen)
	}
	want := api.Registration{Name: "Ada Lovelace", Email: "ada@example.com", Mobile: "9876543210", Password: "Secret123"}
	if ta.backend.lastReg != want {
		t.Fatalf("unexpected registration %+v", ta.backend.lastReg)
	}
	if got := latestToast(t, ta); !strings.HasPrefix(got.message, "Account created") {
		t.Fatalf("unexpected toast %q", got.message)
	}
}

func TestRegisterEscReturnsToLogin(t *testing.T) {
	ta := newTestApp(t)
	ta.drain(ta.send(tea.KeyMsg{Type: tea.KeyCtrlR}))
	ta.press(tea.KeyEsc)
	if ta.screen != screenLogin {
		t.Fatalf("expected login, got %s", ta.screen)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	ta := newTestApp(t)
	ta.drain(ta.send(tea.KeyMsg{Type: tea.KeyCtrlF}))
	if ta.screen != screenReset || ta.reset.step != resetRequestOTP {
		t.Fatalf("expected reset step 1, got %s/%d", ta.screen, ta.reset.step)
	}

	ta.typeText("ada@example.com")
	ta.press(tea.KeyEnter)
	if ta.reset.step != resetConfirm || ta.reset.email != "ada@example.com" {
		t.Fatalf("expected confirm step for ada@example.com, got %d/%q", ta.reset.step, ta.reset.email)
	}
	if got := latestToast(t, ta); got.message != "Code sent to ada@example.com" {
		t.Fatalf("unexpected toast %q", got.message)
	}

	t.Run("EscGoesBackOneStep", func(t *testing.T) {
		ta.press(tea.KeyEsc)
		if ta.screen != screenReset || ta.reset.step != resetRequestOTP {
			t.Fatal("expected esc to return to the email step")
		}
		ta.press(tea.KeyEnter)
	})

	ta.typeText("12a3456")
	if got := ta.reset.confirm.Value("otp"); got != "123456" {
		t.Fatalf("expected digits only, got %q", got)
	}
	ta.press(tea.KeyTab)
	ta.typeText("NewSecret1")
	ta.press(tea.KeyEnter)

	if ta.screen != screenLogin {
		t.Fatalf("expected login after reset, got %s", ta.screen)
	}
	if got := latestToast(t, ta); got.message != "Password updated" {
		t.Fatalf("unexpected toast %q", got.message)
	}
}

func TestPasswordResetBadCode(t *testing.T) {
	ta := newTestApp(t)
	ta.drain(ta.send(tea.KeyMsg{Type: tea.KeyCtrlF}))
	ta.typeText("ada@example.com")
	ta.press(tea.KeyEnter)
	ta.typeText("000000")
	ta.press(tea.KeyTab)
	ta.typeText("NewSecret1")
	ta.press(tea.KeyEnter)

	if ta.screen != screenReset || ta.reset.step != resetConfirm {
		t.Fatal("expected to stay on the code step")
	}
	if got := latestToast(t, ta); got.message != "Invalid code" {
		t.Fatalf("unexpected toast %q", got.message)
	}
}

func TestLogout(t *testing.T) {
	ta := newTestApp(t, signedIn("ada"))
	seedGoals(ta.backend, testDay, goals.Goal{ID: "1", Title: "Ship it"})
	ta.drain(ta.Init())

	ta.runeKey('L')
	if ta.backend.logoutCalls != 1 {
		t.Fatalf("expected one logout call, got %d", ta.backend.logoutCalls)
	}
	if ta.screen != screenLogin || len(ta.dash.goals) != 0 {
		t.Fatal("expected login with goals cleared")
	}
	if got := latestToast(t, ta); got.message != "Signed out" {
		t.Fatalf("unexpected toast %q", got.message)
	}
}

func TestLateGoalsAfterLeavingDashboard(t *testing.T) {
	ta := newTestApp(t)
	ta.dash.loading = true
	ta.send(goalsLoadedMsg{day: "2024-03-09", goals: []goals.Goal{{ID: "1"}}})

	if ta.dash.loading || len(ta.dash.goals) != 0 {
		t.Fatal("expected late results to be dropped off the dashboard")
	}
}

func TestViewLayout(t *testing.T) {
	ta := newTestApp(t, signedIn("ada"))
	seedGoals(ta.backend, testDay, goals.Goal{ID: "1", Title: "Ship it", Status: goals.StatusInProgress})
	ta.drain(ta.Init())
	ta.toasts.clear()

	lines := strings.Split(ta.View(), "\n")
	if len(lines) != ta.height {
		t.Fatalf("expected %d lines, got %d", ta.height, len(lines))
	}
	if !strings.Contains(lines[0], "daybook") {
		t.Fatalf("expected header first, got %q", lines[0])
	}
	if !strings.Contains(lines[len(lines)-1], "Signed in as ada") {
		t.Fatalf("expected footer last, got %q", lines[len(lines)-1])
	}

	t.Run("ToastsOnCanvas", func(t *testing.T) {
		ta.notify(appErrors.SeverityInfo, "Hello there")
		view := ta.View()
		if !strings.Contains(view, "Hello there") {
			t.Fatal("expected toast in view")
		}
		if got := len(strings.Split(view, "\n")); got != ta.height {
			t.Fatalf("expected canvas height %d, got %d", ta.height, got)
		}
	})

	t.Run("NotSizedYet", func(t *testing.T) {
		app, err := NewApp(Config{Backend: newFakeBackend(), Session: session.NewMemoryStore()})
		if err != nil {
			t.Fatal(err)
		}
		defer app.Close()
		if app.View() != "Loading…" {
			t.Fatalf("unexpected view %q", app.View())
		}
	})
}
