package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/jonboulle/clockwork"
	"github.com/muesli/termenv"

	"daybook/internal/errors"
)

func TestToastStackPushAndExpire(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := newToastStack(clock)

	if cmd := s.push(errors.SeverityInfo, "   "); cmd != nil || s.len() != 0 {
		t.Fatal("blank messages should be dropped")
	}

	if s.push(errors.SeverityError, "first") == nil {
		t.Fatal("expected an expiry command")
	}
	s.push(errors.SeveritySuccess, "second")
	if s.len() != 2 {
		t.Fatalf("expected 2 toasts, got %d", s.len())
	}

	s.expire(1)
	if s.len() != 1 {
		t.Fatalf("expected 1 toast after expiring id 1, got %d", s.len())
	}
	if last, _ := s.latest(); last.message != "second" {
		t.Fatalf("expected second to remain, got %q", last.message)
	}
}

func TestToastStackExpiresStaleEntries(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := newToastStack(clock)
	s.push(errors.SeverityInfo, "old")
	clock.Advance(toastTTL + time.Second)
	s.push(errors.SeverityInfo, "new")

	s.expire(999)
	if s.len() != 1 {
		t.Fatalf("expected only the fresh toast, got %d", s.len())
	}
}

func TestToastStackCapsVisible(t *testing.T) {
	s := newToastStack(clockwork.NewFakeClock())
	for _, m := range []string{"a", "b", "c", "d", "e"} {
		s.push(errors.SeverityInfo, m)
	}
	if s.len() != toastMaxShown {
		t.Fatalf("expected %d toasts, got %d", toastMaxShown, s.len())
	}
	if last, _ := s.latest(); last.message != "e" {
		t.Fatalf("newest toast should be kept, got %q", last.message)
	}
}

func TestToastView(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	s := newToastStack(clockwork.NewFakeClock())
	s.push(errors.SeverityWarning, "Too many login attempts")
	out := ansi.Strip(s.view(80))
	if !strings.Contains(out, "⚠") || !strings.Contains(out, "Too many login attempts") {
		t.Fatalf("unexpected toast view:\n%s", out)
	}
	if w := lipgloss.Width(out); w > toastWidth {
		t.Fatalf("toast wider than %d: %d", toastWidth, w)
	}
}
