package dto

import (
	"encoding/json"
	"time"

	dom "taskflow/internal/domain"
)

// DueDate parses dueDate from JSON as either a date ("2006-01-02") or RFC3339.
// Only the calendar date is kept.
type DueDate struct{ t *time.Time }

func (d *DueDate) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		d.t = nil
		return nil
	}
	t, err := dom.ParseDate(*raw)
	if err != nil {
		return err
	}
	d.t = t
	return nil
}

// Ptr returns *time.Time for use in service/domain.
func (d DueDate) Ptr() *time.Time { return d.t }

type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"max=120"`
	Description string  `json:"description" binding:"max=1000"`
	DueDate     DueDate `json:"dueDate"` // optional: "2026-02-19" or RFC3339
	Priority    string  `json:"priority" binding:"omitempty,oneof=low medium high"`
}

type UpdateTaskRequest struct {
	Title        *string  `json:"title" binding:"omitempty,max=120"`
	Description  *string  `json:"description" binding:"omitempty,max=1000"`
	DueDate      *DueDate `json:"dueDate"` // nil = keep
	ClearDueDate bool     `json:"clearDueDate"`
	Priority     *string  `json:"priority" binding:"omitempty,oneof=low medium high"`
	IsCompleted  *bool    `json:"isCompleted"`
}

type TaskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     *string   `json:"dueDate"`
	Priority    string    `json:"priority"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
}

type StatsResponse struct {
	Total        int `json:"total"`
	Completed    int `json:"completed"`
	Pending      int `json:"pending"`
	HighPriority int `json:"highPriority"`
}

// HomeResponse is the full view: load state, filtered tasks and the summary.
type HomeResponse struct {
	State  string         `json:"state"`
	Error  string         `json:"error,omitempty"`
	Filter string         `json:"filter"`
	Items  []TaskResponse `json:"items"`
	Stats  StatsResponse  `json:"stats"`
}

func NewTaskResponse(t dom.Task) TaskResponse {
	r := TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt,
	}
	if t.DueDate != nil {
		s := t.DueDate.Format(dom.DateLayout)
		r.DueDate = &s
	}
	return r
}

func NewTaskResponses(list []dom.Task) []TaskResponse {
	out := make([]TaskResponse, len(list))
	for i := range list {
		out[i] = NewTaskResponse(list[i])
	}
	return out
}

func NewStatsResponse(s dom.Stats) StatsResponse {
	return StatsResponse{
		Total:        s.Total,
		Completed:    s.Completed,
		Pending:      s.Pending,
		HighPriority: s.HighPriority,
	}
}

// Patch converts the request into a domain patch.
func (r UpdateTaskRequest) Patch() dom.TaskPatch {
	p := dom.TaskPatch{
		Title:        r.Title,
		Description:  r.Description,
		ClearDueDate: r.ClearDueDate,
		IsCompleted:  r.IsCompleted,
	}
	if r.DueDate != nil {
		p.DueDate = r.DueDate.Ptr()
	}
	if r.Priority != nil {
		pr := dom.Priority(*r.Priority)
		p.Priority = &pr
	}
	return p
}

// Draft converts the request into a domain draft.
func (r CreateTaskRequest) Draft() dom.TaskDraft {
	return dom.TaskDraft{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate.Ptr(),
		Priority:    dom.Priority(r.Priority),
	}
}
