package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"daybook/internal/errors"
	"daybook/internal/session"
)

// User is the account summary returned on login and register.
type User struct {
	Username string `json:"username"`
}

// AuthResult is a successful login or registration.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type authResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
	Error string `json:"error"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the sign-up payload.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile,omitempty"`
	Password string `json:"password"`
}

type forgotRequest struct {
	Email string `json:"email"`
}

type resetRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Login exchanges credentials for a token and stores it. Attempts per
// username are rate limited locally; an exceeded limit fails with a
// RATE_LIMIT error without contacting the server.
func (c *Client) Login(ctx context.Context, username, password string) (AuthResult, error) {
	key := "login:" + strings.ToLower(strings.TrimSpace(username))
	lim, err := c.loginLimiter.Get(ctx, key)
	if err != nil {
		return AuthResult{}, fmt.Errorf("check login limit: %w", err)
	}
	if lim.Reached {
		c.logger.Debug("login rate limited", zap.String("username", username))
		return AuthResult{}, errors.New(errors.CodeRateLimit,
			"Too many login attempts. Please wait a minute and try again.", ErrLoginRateLimited)
	}

	var resp authResponse
	err = c.do(ctx, "auth.login", http.MethodPost, "/auth/login", nil,
		loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return AuthResult{}, err
	}
	if resp.Token == "" && resp.Error != "" {
		return AuthResult{}, &ResponseError{StatusCode: http.StatusBadRequest, Message: resp.Error}
	}
	return c.persist(ctx, resp, username)
}

// Register creates an account. A returned token signs the user in.
func (c *Client) Register(ctx context.Context, reg Registration) (AuthResult, error) {
	var resp authResponse
	if err := c.do(ctx, "auth.register", http.MethodPost, "/auth/register", nil, reg, &resp); err != nil {
		return AuthResult{}, err
	}
	if resp.Token == "" && resp.Error != "" {
		return AuthResult{}, &ResponseError{StatusCode: http.StatusBadRequest, Message: resp.Error}
	}
	fallback := reg.Email
	if fallback == "" {
		fallback = reg.Name
	}
	return c.persist(ctx, resp, fallback)
}

func (c *Client) persist(ctx context.Context, resp authResponse, fallbackUser string) (AuthResult, error) {
	if resp.Token == "" {
		return AuthResult{}, ErrMissingToken
	}
	if resp.User.Username == "" {
		resp.User.Username = fallbackUser
	}
	if err := c.store.Set(ctx, session.KeyToken, resp.Token); err != nil {
		return AuthResult{}, fmt.Errorf("store token: %w", err)
	}
	if err := c.store.Set(ctx, session.KeyUsername, resp.User.Username); err != nil {
		return AuthResult{}, fmt.Errorf("store username: %w", err)
	}
	return AuthResult{Token: resp.Token, User: resp.User}, nil
}

// ForgotPassword asks the server to email a one-time code.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, "auth.forgot", http.MethodPost, "/auth/forgot-password", nil,
		forgotRequest{Email: email}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ResetPassword sets a new password using the emailed code.
func (c *Client) ResetPassword(ctx context.Context, email, otp, newPassword string) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, "auth.reset", http.MethodPost, "/auth/reset-password", nil,
		resetRequest{Email: email, OTP: otp, NewPassword: newPassword}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Logout forgets the stored credentials.
func (c *Client) Logout(ctx context.Context) error {
	return session.Clear(ctx, c.store)
}

// Authenticated reports whether a token is stored.
func (c *Client) Authenticated(ctx context.Context) bool {
	return session.Lookup(ctx, c.store, session.KeyToken) != ""
}

// Username returns the signed-in username, if any.
func (c *Client) Username(ctx context.Context) string {
	return session.Lookup(ctx, c.store, session.KeyUsername)
}
