package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	dom "taskflow/internal/domain"
	"taskflow/internal/kv"
	"taskflow/internal/record"

	"github.com/google/uuid"
)

// TaskRepo is the task backend capability. Implementations assign ID and
// CreatedAt; input is assumed validated.
type TaskRepo interface {
	FetchAll(ctx context.Context) ([]dom.Task, error)
	Create(ctx context.Context, d dom.TaskDraft) (dom.Task, error)
	Update(ctx context.Context, id string, f dom.TaskFields) (dom.Task, error)
	// ToggleCompletion stores !currentStatus. The caller's view of the
	// current status is trusted, it is not re-read.
	ToggleCompletion(ctx context.Context, id string, currentStatus bool) (dom.Task, error)
	Delete(ctx context.Context, id string) error
}

// DefaultFetchLimit caps how many tasks a remote fetch returns.
const DefaultFetchLimit = 100

// RemoteTaskRepo keeps tasks in the "task" collection of a record store.
type RemoteTaskRepo struct {
	store record.Store
	limit int
	now   func() time.Time
}

func NewRemoteTaskRepo(store record.Store, limit int) *RemoteTaskRepo {
	if limit <= 0 {
		limit = DefaultFetchLimit
	}
	return &RemoteTaskRepo{store: store, limit: limit, now: time.Now}
}

func (r *RemoteTaskRepo) FetchAll(ctx context.Context) ([]dom.Task, error) {
	recs, err := r.store.Fetch(ctx, record.CollectionTask, record.Query{
		OrderBy: []record.Order{{Field: "createdAt", Direction: record.Desc}},
		Limit:   r.limit,
	})
	if err != nil {
		return nil, err
	}
	list := make([]dom.Task, 0, len(recs))
	for _, rec := range recs {
		t, err := remoteTask(rec)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	sortNewestFirst(list)
	return list, nil
}

func (r *RemoteTaskRepo) Create(ctx context.Context, d dom.TaskDraft) (dom.Task, error) {
	t := newTask(d, "", r.now())
	rec, err := r.store.Create(ctx, record.CollectionTask, taskRecord(t, false))
	if err != nil {
		return dom.Task{}, err
	}
	return remoteTask(rec)
}

func (r *RemoteTaskRepo) Update(ctx context.Context, id string, f dom.TaskFields) (dom.Task, error) {
	rec, err := r.store.Update(ctx, record.CollectionTask, id, fieldsRecord(f))
	if err != nil {
		return dom.Task{}, err
	}
	return remoteTask(rec)
}

func (r *RemoteTaskRepo) ToggleCompletion(ctx context.Context, id string, currentStatus bool) (dom.Task, error) {
	rec, err := r.store.Update(ctx, record.CollectionTask, id, record.Record{"isCompleted": !currentStatus})
	if err != nil {
		return dom.Task{}, err
	}
	return remoteTask(rec)
}

func (r *RemoteTaskRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, record.CollectionTask, id)
}

func remoteTask(rec record.Record) (dom.Task, error) {
	t, err := storedTask(rec)
	if err != nil {
		return dom.Task{}, fmt.Errorf("record %s: %w", record.CollectionTask, errors.Join(dom.ErrRemote, err))
	}
	return t, nil
}

// LocalTaskRepo keeps the whole task list serialized under one key. The
// list is read on first use and rewritten in full on every mutation; the
// in-memory copy only changes after a successful write.
type LocalTaskRepo struct {
	store kv.Store
	key   string
	now   func() time.Time
	newID func() string

	mu     sync.Mutex
	loaded bool
	tasks  []dom.Task
}

func NewLocalTaskRepo(store kv.Store, key string) *LocalTaskRepo {
	return &LocalTaskRepo{store: store, key: key, now: time.Now, newID: uuid.NewString}
}

func (r *LocalTaskRepo) FetchAll(ctx context.Context) ([]dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.loadLocked(ctx); err != nil {
		return nil, err
	}
	list := append([]dom.Task(nil), r.tasks...)
	sortNewestFirst(list)
	return list, nil
}

func (r *LocalTaskRepo) Create(ctx context.Context, d dom.TaskDraft) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.loadLocked(ctx); err != nil {
		return dom.Task{}, err
	}
	t := newTask(d, r.newID(), r.now())
	next := append(append([]dom.Task(nil), r.tasks...), t)
	if err := r.writeLocked(ctx, next); err != nil {
		return dom.Task{}, err
	}
	return t, nil
}

func (r *LocalTaskRepo) Update(ctx context.Context, id string, f dom.TaskFields) (dom.Task, error) {
	return r.modify(ctx, id, func(t dom.Task) dom.Task {
		t.Title = f.Title
		t.Description = f.Description
		t.DueDate = f.DueDate
		t.Priority = f.Priority
		t.IsCompleted = f.IsCompleted
		return t
	})
}

func (r *LocalTaskRepo) ToggleCompletion(ctx context.Context, id string, currentStatus bool) (dom.Task, error) {
	return r.modify(ctx, id, func(t dom.Task) dom.Task {
		t.IsCompleted = !currentStatus
		return t
	})
}

// Delete of an unknown id succeeds without writing.
func (r *LocalTaskRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.loadLocked(ctx); err != nil {
		return err
	}
	idx := indexOf(r.tasks, id)
	if idx < 0 {
		return nil
	}
	next := make([]dom.Task, 0, len(r.tasks)-1)
	next = append(next, r.tasks[:idx]...)
	next = append(next, r.tasks[idx+1:]...)
	return r.writeLocked(ctx, next)
}

func (r *LocalTaskRepo) modify(ctx context.Context, id string, fn func(dom.Task) dom.Task) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.loadLocked(ctx); err != nil {
		return dom.Task{}, err
	}
	idx := indexOf(r.tasks, id)
	if idx < 0 {
		return dom.Task{}, fmt.Errorf("task %s: %w", id, dom.ErrNotFound)
	}
	next := append([]dom.Task(nil), r.tasks...)
	next[idx] = fn(next[idx])
	if err := r.writeLocked(ctx, next); err != nil {
		return dom.Task{}, err
	}
	return next[idx], nil
}

func (r *LocalTaskRepo) loadLocked(ctx context.Context) error {
	if r.loaded {
		return nil
	}
	b, err := r.store.Get(ctx, r.key)
	if err != nil {
		return err
	}
	var recs []record.Record
	if len(b) > 0 {
		if err := json.Unmarshal(b, &recs); err != nil {
			return fmt.Errorf("decode %s: %w", r.key, errors.Join(dom.ErrStorageUnavailable, err))
		}
	}
	tasks := make([]dom.Task, 0, len(recs))
	for _, rec := range recs {
		t, err := storedTask(rec)
		if err != nil {
			return fmt.Errorf("decode %s: %w", r.key, errors.Join(dom.ErrStorageUnavailable, err))
		}
		tasks = append(tasks, t)
	}
	r.tasks = tasks
	r.loaded = true
	return nil
}

func (r *LocalTaskRepo) writeLocked(ctx context.Context, next []dom.Task) error {
	recs := make([]record.Record, len(next))
	for i, t := range next {
		recs[i] = taskRecord(t, true)
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.key, err)
	}
	if err := r.store.Set(ctx, r.key, b); err != nil {
		return err
	}
	r.tasks = next
	return nil
}

func newTask(d dom.TaskDraft, id string, now time.Time) dom.Task {
	p := d.Priority
	if p == "" {
		p = dom.PriorityMedium
	}
	return dom.Task{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueDate,
		Priority:    p,
		IsCompleted: false,
		// millisecond precision survives the wire format unchanged
		CreatedAt: now.UTC().Truncate(time.Millisecond),
	}
}

func indexOf(list []dom.Task, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func sortNewestFirst(list []dom.Task) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
