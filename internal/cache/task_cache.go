package cache

import (
	"context"
	"encoding/json"
	"time"

	dom "taskflow/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyList = "task:list:"

// TaskCache caches an owner's fetched task list in Redis.
type TaskCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTaskCache returns a new TaskCache.
func NewTaskCache(rdb *redis.Client, ttl time.Duration) *TaskCache {
	return &TaskCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached list for scope, or nil on a miss.
func (c *TaskCache) GetList(ctx context.Context, scope string) ([]dom.Task, error) {
	b, err := c.rdb.Get(ctx, keyList+scope).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.Task
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []dom.Task{}
	}
	return list, nil
}

// SetList stores the list for scope.
func (c *TaskCache) SetList(ctx context.Context, scope string, list []dom.Task) error {
	if list == nil {
		list = []dom.Task{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyList+scope, b, c.ttl).Err()
}

// Invalidate drops the cached list of scope (called on every write).
func (c *TaskCache) Invalidate(ctx context.Context, scope string) error {
	return c.rdb.Del(ctx, keyList+scope).Err()
}
