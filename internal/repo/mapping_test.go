package repo

import (
	"encoding/json"
	"testing"
	"time"

	dom "taskflow/internal/domain"
	"taskflow/internal/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskFromRecord_BackendShape(t *testing.T) {
	r := record.Record{
		"Id":          "42",
		"title":       "Buy milk",
		"description": "2 litres",
		"dueDate":     "2026-05-01",
		"priority":    "high",
		"isCompleted": true,
		"CreatedOn":   "2026-04-01T10:00:00Z",
	}
	got := TaskFromRecord(r)
	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, dom.Task{
		ID:          "42",
		Title:       "Buy milk",
		Description: "2 litres",
		DueDate:     &due,
		Priority:    dom.PriorityHigh,
		IsCompleted: true,
		CreatedAt:   time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
	}, got)
}

func TestTaskFromRecord_LowercaseIDAndCreatedAtWins(t *testing.T) {
	r := record.Record{
		"id":        "abc",
		"title":     "x",
		"createdAt": "2026-04-02T08:00:00.000Z",
		"CreatedOn": "2026-04-03T08:00:00Z",
	}
	got := TaskFromRecord(r)
	assert.Equal(t, "abc", got.ID)
	assert.Equal(t, time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC), got.CreatedAt)
}

func TestTaskFromRecord_Defaults(t *testing.T) {
	got := TaskFromRecord(record.Record{"Id": float64(7), "title": "only title", "priority": "weird", "dueDate": nil})
	assert.Equal(t, "7", got.ID)
	assert.Equal(t, dom.PriorityMedium, got.Priority)
	assert.False(t, got.IsCompleted)
	assert.Nil(t, got.DueDate)
	assert.Empty(t, got.Description)
	assert.True(t, got.CreatedAt.IsZero())
}

func TestTaskRecord_RoundTripsThroughJSON(t *testing.T) {
	due := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	in := dom.Task{
		ID:        "u-1",
		Title:     "t",
		DueDate:   &due,
		Priority:  dom.PriorityLow,
		CreatedAt: time.Date(2026, 1, 1, 12, 30, 0, 0, time.UTC),
	}
	b, err := json.Marshal(taskRecord(in, true))
	require.NoError(t, err)
	var r record.Record
	require.NoError(t, json.Unmarshal(b, &r))
	assert.Equal(t, in, TaskFromRecord(r))
}
