package home

import (
	"fmt"
	"strings"

	dom "taskflow/internal/domain"
)

// Filter selects tasks for display.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
	FilterHigh      Filter = "high"
	FilterMedium    Filter = "medium"
	FilterLow       Filter = "low"
)

// ParseFilter accepts the names above; empty means all.
func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterCompleted, FilterPending, FilterHigh, FilterMedium, FilterLow:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown filter %q", dom.ErrValidation, s)
}

func (f Filter) Match(t dom.Task) bool {
	switch f {
	case FilterCompleted:
		return t.IsCompleted
	case FilterPending:
		return !t.IsCompleted
	case FilterHigh:
		return t.Priority == dom.PriorityHigh
	case FilterMedium:
		return t.Priority == dom.PriorityMedium
	case FilterLow:
		return t.Priority == dom.PriorityLow
	}
	return true
}
