package service

import (
	"context"
	"errors"
	"testing"

	dom "taskflow/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRepo struct {
	created []dom.TaskDraft
	updated []dom.TaskFields
	err     error
}

func (r *recordingRepo) FetchAll(context.Context) ([]dom.Task, error) {
	return []dom.Task{{ID: "1", Title: "t", Priority: dom.PriorityLow}}, r.err
}

func (r *recordingRepo) Create(_ context.Context, d dom.TaskDraft) (dom.Task, error) {
	if r.err != nil {
		return dom.Task{}, r.err
	}
	r.created = append(r.created, d)
	return dom.Task{ID: "new", Title: d.Title, Description: d.Description, Priority: d.Priority}, nil
}

func (r *recordingRepo) Update(_ context.Context, id string, f dom.TaskFields) (dom.Task, error) {
	if r.err != nil {
		return dom.Task{}, r.err
	}
	r.updated = append(r.updated, f)
	return dom.Task{ID: id, Title: f.Title, Priority: f.Priority}, nil
}

func (r *recordingRepo) ToggleCompletion(_ context.Context, id string, current bool) (dom.Task, error) {
	return dom.Task{ID: id, IsCompleted: !current}, r.err
}

func (r *recordingRepo) Delete(context.Context, string) error { return r.err }

func TestTaskService_CreateRejectsBlankTitle(t *testing.T) {
	repo := &recordingRepo{}
	svc := NewTaskService(repo, nil, "test", nil)

	for _, title := range []string{"", "   "} {
		_, err := svc.Create(context.Background(), dom.TaskDraft{Title: title})
		assert.ErrorIs(t, err, dom.ErrValidation)
	}
	assert.Empty(t, repo.created, "storage is never reached")
}

func TestTaskService_CreateNormalizesDraft(t *testing.T) {
	repo := &recordingRepo{}
	svc := NewTaskService(repo, nil, "test", nil)

	task, err := svc.Create(context.Background(), dom.TaskDraft{Title: "  Buy milk ", Description: " 2l "})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Title)
	require.Len(t, repo.created, 1)
	assert.Equal(t, dom.TaskDraft{Title: "Buy milk", Description: "2l", Priority: dom.PriorityMedium}, repo.created[0])

	_, err = svc.Create(context.Background(), dom.TaskDraft{Title: "x", Priority: "urgent"})
	assert.ErrorIs(t, err, dom.ErrValidation)
}

func TestTaskService_UpdateValidates(t *testing.T) {
	repo := &recordingRepo{}
	svc := NewTaskService(repo, nil, "test", nil)

	_, err := svc.Update(context.Background(), "1", dom.TaskFields{Title: " "})
	assert.ErrorIs(t, err, dom.ErrValidation)

	got, err := svc.Update(context.Background(), "1", dom.TaskFields{Title: "ok", Priority: dom.PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, dom.PriorityHigh, got.Priority)
}

func TestTaskService_PropagatesStoreErrors(t *testing.T) {
	repo := &recordingRepo{err: errors.Join(dom.ErrRemote, errors.New("boom"))}
	svc := NewTaskService(repo, nil, "test", nil)

	_, err := svc.FetchAll(context.Background())
	assert.ErrorIs(t, err, dom.ErrRemote)
	_, err = svc.ToggleCompletion(context.Background(), "1", false)
	assert.ErrorIs(t, err, dom.ErrRemote)
	assert.ErrorIs(t, svc.Delete(context.Background(), "1"), dom.ErrRemote)
}
