// Package goals defines the daily goal model shared by the API client and UI.
package goals

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of goal dates and the ?date= query.
const DateLayout = "2006-01-02"

// Status represents the lifecycle state of a goal.
type Status string

const (
	StatusUnknown    Status = ""
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists the selectable statuses in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// ParseStatus normalises and validates an incoming status string.
// Underscores are accepted for backends that send in_progress.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-"))
	if err := s.Validate(); err != nil {
		return StatusUnknown, err
	}
	return s, nil
}

// Validate ensures the status is one the backend understands.
func (s Status) Validate() error {
	for _, known := range Statuses {
		if s == known {
			return nil
		}
	}
	if s == StatusUnknown {
		return fmt.Errorf("invalid status: blank")
	}
	return fmt.Errorf("invalid status: %s", string(s))
}

// Label returns the human-readable name of the status.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Icon returns the single-cell glyph drawn next to the status.
func (s Status) Icon() string {
	switch s {
	case StatusInProgress:
		return "◐"
	case StatusCompleted:
		return "✔"
	default:
		return "○"
	}
}

// IsDone reports whether the goal needs no more work.
func (s Status) IsDone() bool {
	return s == StatusCompleted
}

// Priority ranks a goal. The wire value is an integer.
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

// Priorities lists the selectable priorities from highest to lowest.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Label returns the human-readable name of the priority.
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return "None"
	}
}

// Icon returns the glyph drawn next to the priority.
func (p Priority) Icon() string {
	switch p {
	case PriorityHigh:
		return "▲"
	case PriorityMedium:
		return "■"
	case PriorityLow:
		return "▼"
	default:
		return "·"
	}
}

// Goal is a single to-do item scheduled for one day.
type Goal struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority,omitempty"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Draft is the payload for creating a goal.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	Date        string   `json:"date"`
}

// FormatDate renders t in the wire date format.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a wire date in the local timezone.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// Stats summarises a day's goals for the dashboard header.
type Stats struct {
	Total      int
	Pending    int
	InProgress int
	Completed  int
}

// Summarize counts goals by status.
func Summarize(list []Goal) Stats {
	st := Stats{Total: len(list)}
	for _, g := range list {
		switch g.Status {
		case StatusInProgress:
			st.InProgress++
		case StatusCompleted:
			st.Completed++
		default:
			st.Pending++
		}
	}
	return st
}
