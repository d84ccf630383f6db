package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"daybook/internal/api"
	"daybook/internal/errors"
	"daybook/internal/validate"
)

// Screen geometry shared by every form screen: the app header sits on row 0,
// the screen title on bodyTop, its subtitle below, then the form.
const (
	formLeft  = 2
	bodyTop   = 2
	formTop   = bodyTop + 3
	formWidth = 44
)

func newFormAt(id string, l *Listeners) *Form {
	f := NewForm(id, l)
	f.SetWidth(formWidth)
	f.SetOrigin(formLeft, formTop)
	return f
}

func strengthHint(v string) string {
	if v == "" {
		return "Use 8+ characters with upper, lower and a digit"
	}
	return "Strength: " + string(validate.PasswordStrength(v))
}

func renderFormScreen(title, subtitle string, form *Form, footer string) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		styleTitle().Render(title),
		styleMuted().Render(subtitle),
		"",
		form.View(),
		"",
		styleMuted().Render(footer),
	)
	return lipgloss.NewStyle().PaddingLeft(formLeft).Render(body)
}

// loginScreen collects credentials.
type loginScreen struct {
	form *Form
	busy bool
}

func newLoginScreen(l *Listeners) *loginScreen {
	f := newFormAt("login", l).
		AddText("username", "Username", Required(), Placeholder("username or email")).
		AddText("password", "Password", Required(), Masked())
	return &loginScreen{form: f}
}

func (a *App) updateLogin(msg tea.Msg) tea.Cmd {
	s := a.login
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s.form.Capturing() {
			break
		}
		switch {
		case key.Matches(msg, a.keys.Register):
			return a.show(screenRegister)
		case key.Matches(msg, a.keys.Forgot):
			return a.show(screenReset)
		}
	case formSubmitMsg:
		if msg.id != s.form.ID() || s.busy {
			return nil
		}
		s.busy = true
		username := strings.TrimSpace(s.form.Value("username"))
		return tea.Batch(a.startSpinner(), loginCmd(a.ctx, a.backend, username, s.form.Value("password")))
	}
	return s.form.Update(msg)
}

func (a *App) viewLogin() string {
	s := a.login
	subtitle := "Sign in to see today's goals."
	if s.busy {
		subtitle = a.spinner.View() + " Signing in…"
	}
	return renderFormScreen("Welcome back", subtitle, s.form,
		"Enter submit · Ctrl+R create account · Ctrl+F forgot password")
}

// registerScreen creates an account.
type registerScreen struct {
	form *Form
	busy bool
}

func newRegisterScreen(l *Listeners) *registerScreen {
	f := newFormAt("register", l).
		AddText("name", "Full name", Required(), Rule(validate.FieldName)).
		AddText("email", "Email", Required(), Rule(validate.FieldEmail), Placeholder("you@example.com")).
		AddText("mobile", "Mobile (optional)", Rule(validate.FieldMobile), Sanitized(validate.Mobile), CharLimit(validate.MobileLength), Placeholder("10 digits")).
		AddText("password", "Password", Required(), Rule(validate.FieldPassword), Masked(), Hint(strengthHint)).
		AddText("confirmPassword", "Confirm password", Required(), Rule(validate.FieldConfirmPassword), Masked())
	return &registerScreen{form: f}
}

func (a *App) updateRegister(msg tea.Msg) tea.Cmd {
	s := a.register
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !s.form.Capturing() && key.Matches(msg, a.keys.Escape) {
			return a.show(screenLogin)
		}
	case formSubmitMsg:
		if msg.id != s.form.ID() || s.busy {
			return nil
		}
		s.busy = true
		reg := api.Registration{
			Name:     strings.TrimSpace(s.form.Value("name")),
			Email:    strings.TrimSpace(s.form.Value("email")),
			Mobile:   s.form.Value("mobile"),
			Password: s.form.Value("password"),
		}
		return tea.Batch(a.startSpinner(), registerCmd(a.ctx, a.backend, reg))
	}
	return s.form.Update(msg)
}

func (a *App) viewRegister() string {
	s := a.register
	subtitle := "Create an account to start planning your days."
	if s.busy {
		subtitle = a.spinner.View() + " Creating account…"
	}
	return renderFormScreen("Create account", subtitle, s.form, "Enter submit · Tab next field · Esc back to sign in")
}

type resetStep int

const (
	resetRequestOTP resetStep = iota
	resetConfirm
)

// resetScreen runs the two-step password reset.
type resetScreen struct {
	step    resetStep
	email   string
	request *Form
	confirm *Form
	busy    bool
}

func newResetScreen(l *Listeners) *resetScreen {
	request := newFormAt("reset-request", l).
		AddText("email", "Email", Required(), Rule(validate.FieldEmail), Placeholder("you@example.com"))
	confirm := newFormAt("reset-confirm", l).
		AddText("otp", "One-time code", Required(), Rule(validate.FieldOTP), Sanitized(validate.OTP), CharLimit(validate.OTPLength)).
		AddText("newPassword", "New password", Required(), Rule(validate.FieldNewPassword), Masked(), Hint(strengthHint))
	return &resetScreen{request: request, confirm: confirm}
}

func (s *resetScreen) active() *Form {
	if s.step == resetConfirm {
		return s.confirm
	}
	return s.request
}

func (a *App) updateReset(msg tea.Msg) tea.Cmd {
	s := a.reset
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s.active().Capturing() || !key.Matches(msg, a.keys.Escape) {
			break
		}
		if s.step == resetConfirm {
			s.step = resetRequestOTP
			return s.request.Focus("email")
		}
		return a.show(screenLogin)
	case formSubmitMsg:
		if msg.id != s.active().ID() || s.busy {
			return nil
		}
		s.busy = true
		if s.step == resetRequestOTP {
			email := strings.TrimSpace(s.request.Value("email"))
			return tea.Batch(a.startSpinner(), forgotPasswordCmd(a.ctx, a.backend, email))
		}
		return tea.Batch(a.startSpinner(),
			resetPasswordCmd(a.ctx, a.backend, s.email, s.confirm.Value("otp"), s.confirm.Value("newPassword")))
	case otpRequestedMsg:
		s.busy = false
		if msg.err != nil {
			return a.fail(msg.err, "Could not send the reset code")
		}
		s.email = msg.email
		s.step = resetConfirm
		return tea.Batch(s.confirm.Reset(), a.notify(errors.SeveritySuccess, orDefault(msg.message, "Check your email for the reset code.")))
	case passwordResetMsg:
		s.busy = false
		if msg.err != nil {
			return a.fail(msg.err, "Could not reset the password")
		}
		s.step = resetRequestOTP
		s.email = ""
		return tea.Batch(a.show(screenLogin), a.notify(errors.SeveritySuccess, orDefault(msg.message, "Password updated. Sign in with the new password.")))
	}
	return s.active().Update(msg)
}

func (a *App) viewReset() string {
	s := a.reset
	title, subtitle, footer := "Reset password", "We'll email you a 6-digit code.", "Enter send code · Esc back to sign in"
	if s.step == resetConfirm {
		subtitle = "Enter the code sent to " + s.email + "."
		footer = "Enter reset password · Esc use a different email"
	}
	if s.busy {
		subtitle = a.spinner.View() + " Working…"
	}
	return renderFormScreen(title, subtitle, s.active(), footer)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
