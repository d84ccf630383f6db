// Package validate holds the client-side form rules shared by every screen.
// Rules are pure: the same value and context always produce the same verdict.
package validate

import (
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Field names a form input with a known rule.
type Field string

const (
	FieldName            Field = "name"
	FieldEmail           Field = "email"
	FieldMobile          Field = "mobile"
	FieldPassword        Field = "password"
	FieldConfirmPassword Field = "confirmPassword"
	FieldNewPassword     Field = "newPassword"
	FieldOTP             Field = "otp"
	FieldTitle           Field = "title"
)

// Context carries sibling values that some rules compare against.
type Context struct {
	Password        string
	ConfirmPassword string
}

const (
	MsgName            = "Name must be at least 2 characters long"
	MsgEmail           = "Please enter a valid email address"
	MsgMobileLength    = "Mobile number must be exactly 10 digits"
	MsgMobileInvalid   = "Please enter a valid mobile number"
	MsgPassword        = "Password must be at least 6 characters long"
	MsgConfirmPassword = "Passwords do not match"
	MsgNewPassword     = "New password must be at least 6 characters long"
	MsgOTP             = "Please enter a valid 6-digit OTP"
	MsgTitleRequired   = "Goal title is required"
	MsgTitleTooLong    = "Goal title must be at most 120 characters"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	engineOnce sync.Once
	engine     *validator.Validate
)

func validatorEngine() *validator.Validate {
	engineOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// The stock "email" tag is RFC-strict; the login backend accepts anything
		// shaped like local@domain.tld.
		_ = v.RegisterValidation("loose_email", func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		})
		engine = v
	})
	return engine
}

type rule func(value string, ctx Context) string

var rules = map[Field]rule{
	FieldName: func(value string, _ Context) string {
		if failedTag(validatorEngine().Var(strings.TrimSpace(value), "min=2")) != "" {
			return MsgName
		}
		return ""
	},
	FieldEmail: func(value string, _ Context) string {
		if failedTag(validatorEngine().Var(value, "omitempty,loose_email")) != "" {
			return MsgEmail
		}
		return ""
	},
	FieldMobile: func(value string, _ Context) string {
		switch failedTag(validatorEngine().Var(value, "omitempty,len=10,number")) {
		case "":
			return ""
		case "len":
			return MsgMobileLength
		default:
			return MsgMobileInvalid
		}
	},
	FieldPassword: func(value string, _ Context) string {
		if failedTag(validatorEngine().Var(value, "omitempty,min=6")) != "" {
			return MsgPassword
		}
		return ""
	},
	FieldConfirmPassword: func(value string, ctx Context) string {
		if failedTag(validatorEngine().VarWithValue(value, ctx.Password, "omitempty,eqfield")) != "" {
			return MsgConfirmPassword
		}
		return ""
	},
	FieldNewPassword: func(value string, _ Context) string {
		if failedTag(validatorEngine().Var(value, "omitempty,min=6")) != "" {
			return MsgNewPassword
		}
		return ""
	},
	FieldOTP: func(value string, _ Context) string {
		if failedTag(validatorEngine().Var(value, "omitempty,len=6,number")) != "" {
			return MsgOTP
		}
		return ""
	},
	FieldTitle: func(value string, _ Context) string {
		switch failedTag(validatorEngine().Var(strings.TrimSpace(value), "min=1,max=120")) {
		case "":
			return ""
		case "max":
			return MsgTitleTooLong
		default:
			return MsgTitleRequired
		}
	},
}

// failedTag returns the tag of the first failing rule, or "" when valid.
func failedTag(err error) string {
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Tag()
	}
	return "invalid"
}

// FieldError returns the message for a failing field, or "" when the value is
// acceptable. Unknown fields always pass.
func FieldError(field Field, value string, ctx Context) string {
	r, ok := rules[field]
	if !ok {
		return ""
	}
	return r(value, ctx)
}

// Form validates every value in the map and returns only the failing fields.
// Password and confirmPassword entries feed the comparison context.
func Form(values map[Field]string) map[Field]string {
	ctx := Context{
		Password:        values[FieldPassword],
		ConfirmPassword: values[FieldConfirmPassword],
	}
	if pw, ok := values[FieldNewPassword]; ok && ctx.Password == "" {
		ctx.Password = pw
	}
	errs := make(map[Field]string)
	for field, value := range values {
		if msg := FieldError(field, value, ctx); msg != "" {
			errs[field] = msg
		}
	}
	return errs
}

// IsEmail reports whether s looks like local@domain.tld.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsMobile reports whether s is exactly ten ASCII digits.
func IsMobile(s string) bool {
	return len(s) == 10 && allDigits(s)
}

// IsOTP reports whether s is exactly six ASCII digits.
func IsOTP(s string) bool {
	return len(s) == 6 && allDigits(s)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
