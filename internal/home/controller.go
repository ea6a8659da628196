// Package home keeps a session's task list and statistics summary in memory
// and in step with the backing stores.
package home

import (
	"context"
	"errors"
	"fmt"
	"sync"

	dom "taskflow/internal/domain"
	"taskflow/internal/metrics"
	"taskflow/internal/stats"

	"go.uber.org/zap"
)

// TaskBackend is the task store capability the controller drives.
type TaskBackend interface {
	FetchAll(ctx context.Context) ([]dom.Task, error)
	Create(ctx context.Context, d dom.TaskDraft) (dom.Task, error)
	Update(ctx context.Context, id string, f dom.TaskFields) (dom.Task, error)
	ToggleCompletion(ctx context.Context, id string, currentStatus bool) (dom.Task, error)
	Delete(ctx context.Context, id string) error
}

// StatsStore persists the derived summary.
type StatsStore interface {
	Save(ctx context.Context, s dom.Stats) (dom.Stats, error)
	Load(ctx context.Context) (dom.Stats, error)
}

// State of the controller.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// ErrNotReady is returned by mutations outside StateReady.
var ErrNotReady = errors.New("task list is not loaded")

// Snapshot is a copy of the controller's state for rendering.
type Snapshot struct {
	State State
	Err   error
	Tasks []dom.Task
	Stats dom.Stats
}

// Controller owns the in-memory list and summary of one session.
// The mutex only guards memory; backend calls run unlocked, so overlapping
// mutations are applied in the order their backend calls complete.
type Controller struct {
	tasks   TaskBackend
	stats   StatsStore
	log     *zap.Logger
	metrics *metrics.Metrics

	mu      sync.RWMutex
	state   State
	loadErr error
	list    []dom.Task
	summary dom.Stats
}

func New(tasks TaskBackend, statsStore StatsStore, log *zap.Logger, m *metrics.Metrics) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		tasks:   tasks,
		stats:   statsStore,
		log:     log,
		metrics: m,
		state:   StateLoading,
	}
}

// Load (re)enters StateLoading, fetches the full list, recomputes the
// summary and persists it. A fetch failure moves the controller to
// StateError and clears the list; calling Load again retries.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.state = StateLoading
	c.loadErr = nil
	c.mu.Unlock()

	list, err := c.tasks.FetchAll(ctx)
	c.metrics.Load(err)
	if err != nil {
		c.mu.Lock()
		c.state = StateError
		c.loadErr = err
		c.list = nil
		c.summary = dom.Stats{}
		c.mu.Unlock()
		c.log.Error("load tasks failed", zap.Error(err))
		return fmt.Errorf("load tasks: %w", err)
	}

	summary := stats.Compute(list)
	c.mu.Lock()
	c.list = list
	c.summary = summary
	c.state = StateReady
	c.mu.Unlock()

	c.checkDrift(ctx, summary)
	c.persistStats(ctx, summary)
	return nil
}

// Create stores a new task and appends it to the list. A Load that ran
// while the store call was in flight may already hold the task; it is then
// replaced instead.
func (c *Controller) Create(ctx context.Context, d dom.TaskDraft) (dom.Task, error) {
	if err := c.ready(); err != nil {
		return dom.Task{}, err
	}
	t, err := c.tasks.Create(ctx, d)
	c.metrics.Mutation("create", err)
	if err != nil {
		return dom.Task{}, c.mutationFailed("create", "", err)
	}
	c.apply(ctx, upsert(t))
	return t, nil
}

// Update merges p onto the task's current fields and stores the result.
func (c *Controller) Update(ctx context.Context, id string, p dom.TaskPatch) (dom.Task, error) {
	current, err := c.find(id)
	if err != nil {
		return dom.Task{}, err
	}
	t, err := c.tasks.Update(ctx, id, p.Apply(current.Fields()))
	c.metrics.Mutation("update", err)
	if err != nil {
		return dom.Task{}, c.mutationFailed("update", id, err)
	}
	c.apply(ctx, replace(t))
	return t, nil
}

// Toggle flips completion relative to the status held in memory.
func (c *Controller) Toggle(ctx context.Context, id string) (dom.Task, error) {
	current, err := c.find(id)
	if err != nil {
		return dom.Task{}, err
	}
	t, err := c.tasks.ToggleCompletion(ctx, id, current.IsCompleted)
	c.metrics.Mutation("toggle", err)
	if err != nil {
		return dom.Task{}, c.mutationFailed("toggle", id, err)
	}
	c.apply(ctx, replace(t))
	return t, nil
}

// Delete removes the task from the store and then from the list.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.ready(); err != nil {
		return err
	}
	err := c.tasks.Delete(ctx, id)
	c.metrics.Mutation("delete", err)
	if err != nil {
		return c.mutationFailed("delete", id, err)
	}
	c.apply(ctx, func(list []dom.Task) []dom.Task {
		out := make([]dom.Task, 0, len(list))
		for _, t := range list {
			if t.ID != id {
				out = append(out, t)
			}
		}
		return out
	})
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		State: c.state,
		Err:   c.loadErr,
		Tasks: append([]dom.Task(nil), c.list...),
		Stats: c.summary,
	}
}

// Tasks returns the tasks matching f, in list order.
func (c *Controller) Tasks(f Filter) []dom.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]dom.Task, 0, len(c.list))
	for _, t := range c.list {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// apply transforms the list, recomputes the summary and persists it.
// The transform receives a copy it may modify.
func (c *Controller) apply(ctx context.Context, fn func([]dom.Task) []dom.Task) {
	c.mu.Lock()
	c.list = fn(append([]dom.Task(nil), c.list...))
	summary := stats.Compute(c.list)
	c.summary = summary
	c.mu.Unlock()

	c.persistStats(ctx, summary)
}

// persistStats is best-effort. Failures are logged and counted.
func (c *Controller) persistStats(ctx context.Context, s dom.Stats) {
	if _, err := c.stats.Save(ctx, s); err != nil {
		c.metrics.StatsPersistFailed()
		c.log.Warn("persist stats failed", zap.Error(err))
	}
}

// checkDrift compares the persisted summary with the recomputed one. The
// persisted value is never used beyond this log line.
func (c *Controller) checkDrift(ctx context.Context, want dom.Stats) {
	got, err := c.stats.Load(ctx)
	if err != nil {
		c.log.Debug("read persisted stats failed", zap.Error(err))
		return
	}
	if got != want {
		c.log.Info("persisted stats drifted, overwriting",
			zap.Int("persisted_total", got.Total),
			zap.Int("total", want.Total))
	}
}

func (c *Controller) ready() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state != StateReady {
		return fmt.Errorf("%w (state %s)", ErrNotReady, c.state)
	}
	return nil
}

func (c *Controller) find(id string) (dom.Task, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state != StateReady {
		return dom.Task{}, fmt.Errorf("%w (state %s)", ErrNotReady, c.state)
	}
	for _, t := range c.list {
		if t.ID == id {
			return t, nil
		}
	}
	return dom.Task{}, fmt.Errorf("task %s: %w", id, dom.ErrNotFound)
}

func (c *Controller) mutationFailed(op, id string, err error) error {
	c.log.Warn("task mutation failed", zap.String("op", op), zap.String("id", id), zap.Error(err))
	return fmt.Errorf("%s task: %w", op, err)
}

// replace swaps the task with t's id; a task deleted meanwhile stays deleted.
func replace(t dom.Task) func([]dom.Task) []dom.Task {
	return func(list []dom.Task) []dom.Task {
		list, _ = swap(list, t)
		return list
	}
}

// upsert replaces the task with t's id or appends t.
func upsert(t dom.Task) func([]dom.Task) []dom.Task {
	return func(list []dom.Task) []dom.Task {
		list, found := swap(list, t)
		if !found {
			list = append(list, t)
		}
		return list
	}
}

func swap(list []dom.Task, t dom.Task) ([]dom.Task, bool) {
	for i := range list {
		if list[i].ID == t.ID {
			list[i] = t
			return list, true
		}
	}
	return list, false
}
