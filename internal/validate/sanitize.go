package validate

import (
	"html"
	"strings"
)

// Digit counts accepted by the mobile and OTP fields.
const (
	MobileLength = 10
	OTPLength    = 6
)

// Mobile keeps the digits of s and truncates to ten characters. It is applied
// after every keystroke, so it must be idempotent.
func Mobile(s string) string {
	return digitsOnly(s, MobileLength)
}

// OTP keeps the digits of s and truncates to six characters.
func OTP(s string) string {
	return digitsOnly(s, OTPLength)
}

func digitsOnly(s string, limit int) string {
	var b strings.Builder
	for _, r := range s {
		if b.Len() >= limit {
			break
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EscapeHTML escapes markup-significant characters for safe redisplay.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

// SanitizeInput escapes string values and returns anything else unchanged.
func SanitizeInput(v any) any {
	if s, ok := v.(string); ok {
		return EscapeHTML(s)
	}
	return v
}

// Strength buckets a password for UI feedback. It never gates submission.
type Strength string

const (
	StrengthWeak   Strength = "weak"
	StrengthMedium Strength = "medium"
	StrengthStrong Strength = "strong"
)

// PasswordStrength classifies s: weak under 6 characters, strong at 8 or more
// with ASCII upper, lower and digit classes present, medium otherwise.
func PasswordStrength(s string) Strength {
	n := len([]rune(s))
	if n < 6 {
		return StrengthWeak
	}
	if n < 8 {
		return StrengthMedium
	}
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if upper && lower && digit {
		return StrengthStrong
	}
	return StrengthMedium
}
