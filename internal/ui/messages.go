package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"daybook/internal/api"
	"daybook/internal/goals"
)

// Backend is the slice of the API client the screens call. *api.Client
// satisfies it.
type Backend interface {
	Login(ctx context.Context, username, password string) (api.AuthResult, error)
	Register(ctx context.Context, reg api.Registration) (api.AuthResult, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, email, otp, newPassword string) (string, error)
	Logout(ctx context.Context) error
	Authenticated(ctx context.Context) bool
	Username(ctx context.Context) string
	ListGoals(ctx context.Context, day time.Time) ([]goals.Goal, error)
	CreateGoal(ctx context.Context, draft goals.Draft) (goals.Goal, error)
	UpdateGoalStatus(ctx context.Context, id string, status goals.Status) (goals.Goal, error)
	DeleteGoal(ctx context.Context, id string) error
}

type authDoneMsg struct {
	result api.AuthResult
	err    error
}

type otpRequestedMsg struct {
	email   string
	message string
	err     error
}

type passwordResetMsg struct {
	message string
	err     error
}

type loggedOutMsg struct {
	err error
}

type goalsLoadedMsg struct {
	day   string
	goals []goals.Goal
	err   error
}

type goalCreatedMsg struct {
	goal goals.Goal
	err  error
}

type goalUpdatedMsg struct {
	goal goals.Goal
	err  error
}

type goalDeletedMsg struct {
	id  string
	err error
}

// dateSettledMsg fires when the date-navigation debounce window may have
// elapsed for the given trigger.
type dateSettledMsg struct {
	seq uint64
}

type toastExpiredMsg struct {
	id int
}

// formSubmitMsg is emitted by a Form that passed validation.
type formSubmitMsg struct {
	id string
}

func loginCmd(ctx context.Context, b Backend, username, password string) tea.Cmd {
	return func() tea.Msg {
		res, err := b.Login(ctx, username, password)
		return authDoneMsg{result: res, err: err}
	}
}

func registerCmd(ctx context.Context, b Backend, reg api.Registration) tea.Cmd {
	return func() tea.Msg {
		res, err := b.Register(ctx, reg)
		return authDoneMsg{result: res, err: err}
	}
}

func forgotPasswordCmd(ctx context.Context, b Backend, email string) tea.Cmd {
	return func() tea.Msg {
		msg, err := b.ForgotPassword(ctx, email)
		return otpRequestedMsg{email: email, message: msg, err: err}
	}
}

func resetPasswordCmd(ctx context.Context, b Backend, email, otp, newPassword string) tea.Cmd {
	return func() tea.Msg {
		msg, err := b.ResetPassword(ctx, email, otp, newPassword)
		return passwordResetMsg{message: msg, err: err}
	}
}

func logoutCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		return loggedOutMsg{err: b.Logout(ctx)}
	}
}

func loadGoalsCmd(ctx context.Context, b Backend, day time.Time) tea.Cmd {
	return func() tea.Msg {
		list, err := b.ListGoals(ctx, day)
		return goalsLoadedMsg{day: goals.FormatDate(day), goals: list, err: err}
	}
}

func createGoalCmd(ctx context.Context, b Backend, draft goals.Draft) tea.Cmd {
	return func() tea.Msg {
		g, err := b.CreateGoal(ctx, draft)
		return goalCreatedMsg{goal: g, err: err}
	}
}

func updateStatusCmd(ctx context.Context, b Backend, id string, status goals.Status) tea.Cmd {
	return func() tea.Msg {
		g, err := b.UpdateGoalStatus(ctx, id, status)
		return goalUpdatedMsg{goal: g, err: err}
	}
}

func deleteGoalCmd(ctx context.Context, b Backend, id string) tea.Cmd {
	return func() tea.Msg {
		return goalDeletedMsg{id: id, err: b.DeleteGoal(ctx, id)}
	}
}

func scheduleDateSettle(seq uint64, wait time.Duration) tea.Cmd {
	return tea.Tick(wait, func(time.Time) tea.Msg {
		return dateSettledMsg{seq: seq}
	})
}

func scheduleToastExpiry(id int, ttl time.Duration) tea.Cmd {
	return tea.Tick(ttl, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}
