package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	cases := map[string]Priority{
		"":       PriorityMedium,
		"medium": PriorityMedium,
		"LOW":    PriorityLow,
		" high ": PriorityHigh,
	}
	for in, want := range cases {
		got, err := ParsePriority(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePriority("urgent")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), *d)

	d, err = ParseDate("2026-03-14T18:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), *d)

	d, err = ParseDate("  ")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = ParseDate("14/03/2026")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTaskPatch_Apply(t *testing.T) {
	due := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	base := TaskFields{Title: "a", Description: "b", DueDate: &due, Priority: PriorityLow}

	title := "renamed"
	high := PriorityHigh
	done := true
	got := TaskPatch{Title: &title, Priority: &high, IsCompleted: &done}.Apply(base)
	assert.Equal(t, TaskFields{Title: "renamed", Description: "b", DueDate: &due, Priority: PriorityHigh, IsCompleted: true}, got)

	cleared := TaskPatch{ClearDueDate: true}.Apply(base)
	assert.Nil(t, cleared.DueDate)
	assert.Equal(t, base.Title, cleared.Title)
}
