package repo

import (
	"context"
	"testing"

	dom "taskflow/internal/domain"
	"taskflow/internal/kv"
	"taskflow/internal/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteStatsRepo_UpsertKeepsOneRecord(t *testing.T) {
	ctx := context.Background()
	store := newMemRecords()
	r := NewRemoteStatsRepo(store)

	empty, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, dom.Stats{}, empty)

	first := dom.Stats{Total: 2, Completed: 1, Pending: 1, HighPriority: 1}
	saved, err := r.Save(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first, saved)

	second := dom.Stats{Total: 3, Completed: 1, Pending: 2, HighPriority: 2}
	_, err = r.Save(ctx, second)
	require.NoError(t, err)

	assert.Len(t, store.data[record.CollectionStats], 1)
	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestLocalStatsRepo_SaveLoad(t *testing.T) {
	ctx := context.Background()
	r := NewLocalStatsRepo(kv.NewMemoryStore(), "stats:test")

	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, dom.Stats{}, got)

	want := dom.Stats{Total: 5, Completed: 4, Pending: 1}
	_, err = r.Save(ctx, want)
	require.NoError(t, err)
	got, err = r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLocalStatsRepo_Unavailable(t *testing.T) {
	r := NewLocalStatsRepo(&brokenKV{inner: map[string][]byte{}}, "stats:test")
	_, err := r.Save(context.Background(), dom.Stats{Total: 1, Pending: 1})
	assert.ErrorIs(t, err, dom.ErrStorageUnavailable)
}
