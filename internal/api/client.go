// Package api talks to the daily-goals backend over JSON/HTTP and turns
// transport failures into classified errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"

	"daybook/internal/session"
	"daybook/internal/telemetry"
)

// Default configuration values.
const (
	DefaultTimeout       = 10 * time.Second
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = time.Second
	DefaultLoginRate     = "5-M"

	maxBodyBytes = 1 << 20
)

// Error variables for specific error conditions.
var (
	ErrMissingToken     = errors.New("auth response did not include a token")
	ErrLoginRateLimited = errors.New("too many login attempts")
	ErrBaseURLRequired  = errors.New("api base url is required")
	ErrInvalidLoginRate = errors.New("invalid login rate")
)

// ResponseError means the server answered with a non-2xx status.
type ResponseError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("http %d", e.StatusCode)
}

// RequestError means the request was sent but no response arrived.
type RequestError struct {
	Method string
	URL    string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode
	}
	return 0
}

// Client is the backend client. The bearer token is read from the session
// store on every request, so a login in one screen is seen by all others.
type Client struct {
	baseURL      *url.URL
	httpClient   *http.Client
	store        session.Store
	loginLimiter *limiter.Limiter
	monitor      *telemetry.Monitor
	logger       *zap.Logger
	retries      int
	retryDelay   time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithLoginLimiter replaces the per-username login limiter.
func WithLoginLimiter(l *limiter.Limiter) ClientOption {
	return func(c *Client) {
		c.loginLimiter = l
	}
}

// WithMonitor records request durations.
func WithMonitor(m *telemetry.Monitor) ClientOption {
	return func(c *Client) {
		c.monitor = m
	}
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRetry sets the attempt budget for idempotent requests.
func WithRetry(attempts int, delay time.Duration) ClientOption {
	return func(c *Client) {
		c.retries = attempts
		c.retryDelay = delay
	}
}

// NewLoginLimiter builds an in-memory limiter from a rate such as "5-M".
func NewLoginLimiter(rate string) (*limiter.Limiter, error) {
	if strings.TrimSpace(rate) == "" {
		rate = DefaultLoginRate
	}
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidLoginRate, rate, err)
	}
	return limiter.New(memory.NewStore(), parsed), nil
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, store session.Store, opts ...ClientOption) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, ErrBaseURLRequired
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if store == nil {
		store = session.NewMemoryStore()
	}
	c := &Client{
		baseURL: parsed,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		store:      store,
		logger:     zap.NewNop(),
		retries:    DefaultRetryAttempts,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.loginLimiter == nil {
		l, err := NewLoginLimiter(DefaultLoginRate)
		if err != nil {
			return nil, err
		}
		c.loginLimiter = l
	}
	return c, nil
}

// Session returns the store holding the token.
func (c *Client) Session() session.Store {
	return c.store
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (b errorBody) text() string {
	if b.Error != "" {
		return b.Error
	}
	return b.Message
}

// do sends one JSON request. out may be nil.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	track := func(fn func() error) error {
		if c.monitor == nil {
			return fn()
		}
		return c.monitor.Track(op, fn)
	}
	return track(func() error {
		return c.send(ctx, method, path, query, in, out)
	})
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, in, out any) error {
	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := session.Lookup(ctx, c.store, session.KeyToken); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.logger.With(
		zap.String("method", method),
		zap.String("path", target.Path),
		zap.String("request_id", requestID),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Debug("request failed", zap.Error(err))
		return &RequestError{Method: method, URL: target.String(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &RequestError{Method: method, URL: target.String(), Err: fmt.Errorf("read body: %w", err)}
	}
	log.Debug("response", zap.Int("status", resp.StatusCode), zap.Int("bytes", len(data)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		return &ResponseError{StatusCode: resp.StatusCode, Message: eb.text(), Body: data}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// withRetry runs an idempotent request under the client's retry budget.
func (c *Client) withRetry(ctx context.Context, fn func(context.Context) error) error {
	_, err := Retry(ctx, c.retries, c.retryDelay, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
