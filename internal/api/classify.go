package api

import (
	"context"
	stderrors "errors"
	"net/http"

	"go.uber.org/zap"

	"daybook/internal/errors"
	"daybook/internal/session"
)

// statusCodes maps response statuses to categories. Anything absent is a
// server error.
var statusCodes = map[int]errors.Code{
	http.StatusBadRequest:      errors.CodeValidation,
	http.StatusUnauthorized:    errors.CodeAuth,
	http.StatusForbidden:       errors.CodePermissionDenied,
	http.StatusNotFound:        errors.CodeNotFound,
	http.StatusTooManyRequests: errors.CodeRateLimit,
}

// ErrorHandler classifies errors at the call boundary. A 401 clears the
// stored credentials and calls OnUnauthorized.
type ErrorHandler struct {
	Store          session.Store
	OnUnauthorized func()
	Logger         *zap.Logger
}

// NewErrorHandler returns a handler that resets store on 401.
func NewErrorHandler(store session.Store, onUnauthorized func()) *ErrorHandler {
	return &ErrorHandler{Store: store, OnUnauthorized: onUnauthorized, Logger: zap.NewNop()}
}

// Handle maps err to a classified error. The message is the server's when a
// response carried one, else override when non-empty, else the category
// default. A nil err yields the zero Error.
func (h *ErrorHandler) Handle(err error, override string) errors.Error {
	if err == nil {
		return errors.Error{}
	}
	if existing, ok := errors.As(err); ok {
		return existing
	}

	var respErr *ResponseError
	var reqErr *RequestError
	var classified errors.Error
	switch {
	case stderrors.As(err, &respErr):
		code, ok := statusCodes[respErr.StatusCode]
		if !ok {
			code = errors.CodeServer
		}
		if code == errors.CodeAuth {
			h.resetSession()
		}
		msg := respErr.Message
		if msg == "" {
			msg = pick(override, code)
		}
		classified = errors.New(code, msg, err)
	case stderrors.As(err, &reqErr):
		classified = errors.New(errors.CodeNetwork, pick(override, errors.CodeNetwork), err)
	default:
		classified = errors.New(errors.CodeUnknown, pick(override, errors.CodeUnknown), err)
	}

	h.logger().Debug("classified error",
		zap.String("code", string(classified.Code)),
		zap.Error(err),
	)
	return classified
}

func (h *ErrorHandler) resetSession() {
	if h.Store != nil {
		if err := session.Clear(context.Background(), h.Store); err != nil {
			h.logger().Warn("clear session", zap.Error(err))
		}
	}
	if h.OnUnauthorized != nil {
		h.OnUnauthorized()
	}
}

func (h *ErrorHandler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func pick(override string, code errors.Code) string {
	if override != "" {
		return override
	}
	return errors.DefaultMessage(code)
}
