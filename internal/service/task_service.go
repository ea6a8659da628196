package service

import (
	"context"
	"fmt"
	"strings"

	"taskflow/internal/cache"
	dom "taskflow/internal/domain"
	"taskflow/internal/repo"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// TaskService validates input before it reaches a TaskRepo and, when a cache
// is configured, serves FetchAll through it.
type TaskService struct {
	repo  repo.TaskRepo
	cache *cache.TaskCache
	scope string
	log   *zap.Logger
	sf    singleflight.Group
}

// NewTaskService creates a TaskService. If c is nil, caching is disabled.
// scope keys the cache and must be unique per backing list.
func NewTaskService(r repo.TaskRepo, c *cache.TaskCache, scope string, log *zap.Logger) *TaskService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TaskService{repo: r, cache: c, scope: scope, log: log}
}

func (s *TaskService) FetchAll(ctx context.Context) ([]dom.Task, error) {
	if s.cache == nil {
		return s.repo.FetchAll(ctx)
	}
	v, err, _ := s.sf.Do("list:"+s.scope, func() (interface{}, error) {
		if list, err := s.cache.GetList(ctx, s.scope); err == nil && list != nil {
			return list, nil
		} else if err != nil {
			s.log.Debug("task cache read failed", zap.String("scope", s.scope), zap.Error(err))
		}
		list, err := s.repo.FetchAll(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetList(ctx, s.scope, list); err != nil {
			s.log.Debug("task cache write failed", zap.String("scope", s.scope), zap.Error(err))
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]dom.Task(nil), v.([]dom.Task)...), nil
}

func (s *TaskService) Create(ctx context.Context, d dom.TaskDraft) (dom.Task, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	if d.Title == "" {
		return dom.Task{}, fmt.Errorf("%w: title is required", dom.ErrValidation)
	}
	p, err := normalizePriority(d.Priority)
	if err != nil {
		return dom.Task{}, err
	}
	d.Priority = p

	t, err := s.repo.Create(ctx, d)
	if err != nil {
		return dom.Task{}, err
	}
	s.invalidateCache(ctx)
	return t, nil
}

func (s *TaskService) Update(ctx context.Context, id string, f dom.TaskFields) (dom.Task, error) {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	if f.Title == "" {
		return dom.Task{}, fmt.Errorf("%w: title is required", dom.ErrValidation)
	}
	p, err := normalizePriority(f.Priority)
	if err != nil {
		return dom.Task{}, err
	}
	f.Priority = p

	t, err := s.repo.Update(ctx, id, f)
	if err != nil {
		return dom.Task{}, err
	}
	s.invalidateCache(ctx)
	return t, nil
}

func (s *TaskService) ToggleCompletion(ctx context.Context, id string, currentStatus bool) (dom.Task, error) {
	t, err := s.repo.ToggleCompletion(ctx, id, currentStatus)
	if err != nil {
		return dom.Task{}, err
	}
	s.invalidateCache(ctx)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *TaskService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, s.scope); err != nil {
		s.log.Warn("task cache invalidation failed", zap.String("scope", s.scope), zap.Error(err))
	}
}

func normalizePriority(p dom.Priority) (dom.Priority, error) {
	if p.Valid() {
		return p, nil
	}
	return dom.ParsePriority(string(p))
}
