package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"taskflow/internal/cache"
	dom "taskflow/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cachedKey = "task:list:user:1"

// countingRepo counts fetches; a non-nil gate holds each fetch until closed.
type countingRepo struct {
	recordingRepo
	mu      sync.Mutex
	fetches int
	gate    chan struct{}
}

func (r *countingRepo) FetchAll(ctx context.Context) ([]dom.Task, error) {
	r.mu.Lock()
	r.fetches++
	r.mu.Unlock()
	if r.gate != nil {
		<-r.gate
	}
	return r.recordingRepo.FetchAll(ctx)
}

func (r *countingRepo) fetchCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetches
}

func newCachedService(t *testing.T) (*TaskService, *countingRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := &countingRepo{}
	return NewTaskService(repo, cache.NewTaskCache(rdb, time.Minute), "user:1", nil), repo, mr
}

func TestTaskService_FetchAllFillsThenHitsCache(t *testing.T) {
	svc, repo, mr := newCachedService(t)
	ctx := context.Background()

	first, err := svc.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.fetchCount())
	assert.True(t, mr.Exists(cachedKey))
	assert.Equal(t, time.Minute, mr.TTL(cachedKey))

	second, err := svc.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.fetchCount(), "served from cache")
	assert.Equal(t, first, second)
}

func TestTaskService_MutationsInvalidateCache(t *testing.T) {
	ops := map[string]func(context.Context, *TaskService) error{
		"create": func(ctx context.Context, s *TaskService) error {
			_, err := s.Create(ctx, dom.TaskDraft{Title: "new"})
			return err
		},
		"update": func(ctx context.Context, s *TaskService) error {
			_, err := s.Update(ctx, "1", dom.TaskFields{Title: "edited", Priority: dom.PriorityLow})
			return err
		},
		"toggle": func(ctx context.Context, s *TaskService) error {
			_, err := s.ToggleCompletion(ctx, "1", false)
			return err
		},
		"delete": func(ctx context.Context, s *TaskService) error {
			return s.Delete(ctx, "1")
		},
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			svc, repo, mr := newCachedService(t)
			ctx := context.Background()
			_, err := svc.FetchAll(ctx)
			require.NoError(t, err)
			require.True(t, mr.Exists(cachedKey))

			require.NoError(t, op(ctx, svc))
			assert.False(t, mr.Exists(cachedKey))

			_, err = svc.FetchAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, repo.fetchCount())
		})
	}
}

func TestTaskService_FailedMutationKeepsCache(t *testing.T) {
	svc, repo, mr := newCachedService(t)
	ctx := context.Background()
	_, err := svc.FetchAll(ctx)
	require.NoError(t, err)

	repo.err = errors.Join(dom.ErrRemote, errors.New("boom"))
	assert.ErrorIs(t, svc.Delete(ctx, "1"), dom.ErrRemote)
	assert.True(t, mr.Exists(cachedKey))
}

func TestTaskService_CacheDownNeverFailsCalls(t *testing.T) {
	svc, repo, mr := newCachedService(t)
	ctx := context.Background()
	mr.Close()

	list, err := svc.FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.fetchCount())

	_, err = svc.Create(ctx, dom.TaskDraft{Title: "still works"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "1"))
}

func TestTaskService_ConcurrentMissesShareOneFetch(t *testing.T) {
	svc, repo, _ := newCachedService(t)
	repo.gate = make(chan struct{})
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			list, err := svc.FetchAll(ctx)
			if err == nil && len(list) != 1 {
				err = errors.New("unexpected list length")
			}
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return repo.fetchCount() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(repo.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, repo.fetchCount())
}
