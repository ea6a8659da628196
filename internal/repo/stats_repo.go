package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	dom "taskflow/internal/domain"
	"taskflow/internal/kv"
	"taskflow/internal/record"
)

// StatsRepo persists the latest statistics summary as a single record.
// Each Save supersedes the previous value.
type StatsRepo interface {
	Save(ctx context.Context, s dom.Stats) (dom.Stats, error)
	// Load returns the zero summary when nothing was saved yet.
	Load(ctx context.Context) (dom.Stats, error)
}

// RemoteStatsRepo upserts into the "task_stats" collection of an
// owner-scoped record store.
type RemoteStatsRepo struct {
	store record.Store
}

func NewRemoteStatsRepo(store record.Store) *RemoteStatsRepo {
	return &RemoteStatsRepo{store: store}
}

func (r *RemoteStatsRepo) Save(ctx context.Context, s dom.Stats) (dom.Stats, error) {
	existing, err := r.first(ctx)
	if err != nil {
		return dom.Stats{}, err
	}
	var rec record.Record
	if existing != nil {
		rec, err = r.store.Update(ctx, record.CollectionStats, stringField(existing[record.FieldID]), statsRecord(s))
	} else {
		rec, err = r.store.Create(ctx, record.CollectionStats, statsRecord(s))
	}
	if err != nil {
		return dom.Stats{}, err
	}
	return statsFromRecord(rec), nil
}

func (r *RemoteStatsRepo) Load(ctx context.Context) (dom.Stats, error) {
	existing, err := r.first(ctx)
	if err != nil || existing == nil {
		return dom.Stats{}, err
	}
	return statsFromRecord(existing), nil
}

func (r *RemoteStatsRepo) first(ctx context.Context) (record.Record, error) {
	recs, err := r.store.Fetch(ctx, record.CollectionStats, record.Query{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

// LocalStatsRepo keeps the summary under one key of a key-value store.
type LocalStatsRepo struct {
	store kv.Store
	key   string
}

func NewLocalStatsRepo(store kv.Store, key string) *LocalStatsRepo {
	return &LocalStatsRepo{store: store, key: key}
}

func (r *LocalStatsRepo) Save(ctx context.Context, s dom.Stats) (dom.Stats, error) {
	b, err := json.Marshal(statsRecord(s))
	if err != nil {
		return dom.Stats{}, fmt.Errorf("encode %s: %w", r.key, err)
	}
	if err := r.store.Set(ctx, r.key, b); err != nil {
		return dom.Stats{}, err
	}
	return s, nil
}

func (r *LocalStatsRepo) Load(ctx context.Context) (dom.Stats, error) {
	b, err := r.store.Get(ctx, r.key)
	if err != nil || len(b) == 0 {
		return dom.Stats{}, err
	}
	var rec record.Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return dom.Stats{}, fmt.Errorf("decode %s: %w", r.key, errors.Join(dom.ErrStorageUnavailable, err))
	}
	return statsFromRecord(rec), nil
}

func statsRecord(s dom.Stats) record.Record {
	return record.Record{
		"total":        s.Total,
		"completed":    s.Completed,
		"pending":      s.Pending,
		"highPriority": s.HighPriority,
	}
}

func statsFromRecord(r record.Record) dom.Stats {
	return dom.Stats{
		Total:        intField(r["total"]),
		Completed:    intField(r["completed"]),
		Pending:      intField(r["pending"]),
		HighPriority: intField(r["highPriority"]),
	}
}
