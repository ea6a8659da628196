package domain

import (
	"fmt"
	"strings"
	"time"
)

// Priority is one of low, medium, high.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority maps user input to a Priority. Empty input means medium.
func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case "", PriorityMedium:
		return PriorityMedium, nil
	case PriorityLow:
		return PriorityLow, nil
	case PriorityHigh:
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("%w: priority must be low, medium or high, got %q", ErrValidation, s)
}

// Valid reports whether p is one of the three known values.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Task is a single to-do item. ID and CreatedAt are assigned by the backing
// store and never change afterwards.
type Task struct {
	ID          string
	Title       string
	Description string
	DueDate     *time.Time // calendar date, 00:00 UTC
	Priority    Priority
	IsCompleted bool
	CreatedAt   time.Time
}

// TaskDraft is what a client supplies to create a task.
type TaskDraft struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    Priority
}

// TaskFields is the full set of editable fields; an update replaces all of them.
type TaskFields struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    Priority
	IsCompleted bool
}

// TaskPatch is a partial edit. Nil fields keep the current value.
// ClearDueDate removes the due date regardless of DueDate.
type TaskPatch struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Priority     *Priority
	IsCompleted  *bool
}

// Fields returns the editable fields of t.
func (t Task) Fields() TaskFields {
	return TaskFields{
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		IsCompleted: t.IsCompleted,
	}
}

// Apply merges p onto f.
func (p TaskPatch) Apply(f TaskFields) TaskFields {
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.ClearDueDate {
		f.DueDate = nil
	} else if p.DueDate != nil {
		f.DueDate = p.DueDate
	}
	if p.Priority != nil {
		f.Priority = *p.Priority
	}
	if p.IsCompleted != nil {
		f.IsCompleted = *p.IsCompleted
	}
	return f
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateLayout is the wire format of due dates.
const DateLayout = "2006-01-02"

// ParseDate accepts a date ("2006-01-02") or an RFC3339 timestamp and returns
// the calendar date. Empty input yields nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	layouts := []string{DateLayout, time.RFC3339Nano, "2006-01-02T15:04:05"}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			d := DateOf(parsed)
			return &d, nil
		}
	}
	return nil, fmt.Errorf("%w: date must be YYYY-MM-DD or RFC3339, got %q", ErrValidation, s)
}
