package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"
	"github.com/muesli/reflow/wordwrap"

	"daybook/internal/errors"
)

const (
	toastTTL      = 5 * time.Second
	toastMaxShown = 3
	toastWidth    = 44
)

type toast struct {
	id       int
	severity errors.Severity
	message  string
	expires  time.Time
}

// toastStack holds the visible notifications, newest last.
type toastStack struct {
	clock  clockwork.Clock
	ttl    time.Duration
	items  []toast
	nextID int
}

func newToastStack(clock clockwork.Clock) *toastStack {
	return &toastStack{clock: clock, ttl: toastTTL}
}

// push adds a toast and returns the command that expires it.
func (s *toastStack) push(sev errors.Severity, message string) tea.Cmd {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}
	s.nextID++
	s.items = append(s.items, toast{
		id:       s.nextID,
		severity: sev,
		message:  message,
		expires:  s.clock.Now().Add(s.ttl),
	})
	if len(s.items) > toastMaxShown {
		s.items = s.items[len(s.items)-toastMaxShown:]
	}
	return scheduleToastExpiry(s.nextID, s.ttl)
}

// expire drops the toast with id plus anything already past its deadline.
func (s *toastStack) expire(id int) {
	now := s.clock.Now()
	kept := s.items[:0]
	for _, t := range s.items {
		if t.id == id || !now.Before(t.expires) {
			continue
		}
		kept = append(kept, t)
	}
	s.items = kept
}

func (s *toastStack) clear() {
	s.items = nil
}

func (s *toastStack) len() int {
	return len(s.items)
}

func (s *toastStack) latest() (toast, bool) {
	if len(s.items) == 0 {
		return toast{}, false
	}
	return s.items[len(s.items)-1], true
}

func toastIcon(sev errors.Severity) string {
	switch sev {
	case errors.SeveritySuccess:
		return "✔"
	case errors.SeverityWarning:
		return "⚠"
	case errors.SeverityError:
		return "✖"
	default:
		return "ℹ"
	}
}

// view renders the stack as one block, oldest on top.
func (s *toastStack) view(maxWidth int) string {
	if len(s.items) == 0 {
		return ""
	}
	width := min(toastWidth, maxWidth-2)
	if width < 12 {
		width = 12
	}
	blocks := make([]string, 0, len(s.items))
	for _, t := range s.items {
		icon := styleToastIcon(t.severity).Render(toastIcon(t.severity))
		body := wordwrap.String(t.message, width-6)
		blocks = append(blocks, styleToast(t.severity).Width(width-2).Render(icon+" "+body))
	}
	return lipgloss.JoinVertical(lipgloss.Right, blocks...)
}
