package repo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	dom "taskflow/internal/domain"
	"taskflow/internal/record"
)

// memRecords mimics the record backend: numeric ids under "Id", backend
// timestamps under "CreatedOn".
type memRecords struct {
	nextID int64
	data   map[string]map[int64]record.Record
	err    error
	now    time.Time
}

func newMemRecords() *memRecords {
	return &memRecords{data: map[string]map[int64]record.Record{}, now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memRecords) Fetch(_ context.Context, collection string, q record.Query) ([]record.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	ids := make([]int64, 0, len(m.data[collection]))
	for id := range m.data[collection] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []record.Record
	for _, id := range ids {
		out = append(out, m.copyOf(collection, id))
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *memRecords) Create(_ context.Context, collection string, r record.Record) (record.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.nextID++
	if m.data[collection] == nil {
		m.data[collection] = map[int64]record.Record{}
	}
	stored := record.Record{}
	for k, v := range r {
		stored[k] = v
	}
	m.data[collection][m.nextID] = stored
	return m.copyOf(collection, m.nextID), nil
}

func (m *memRecords) Update(_ context.Context, collection, id string, r record.Record) (record.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	n, _ := strconv.ParseInt(id, 10, 64)
	stored, ok := m.data[collection][n]
	if !ok {
		return nil, fmt.Errorf("record %s/%s: %w", collection, id, dom.ErrNotFound)
	}
	for k, v := range r {
		stored[k] = v
	}
	return m.copyOf(collection, n), nil
}

func (m *memRecords) Delete(_ context.Context, collection, id string) error {
	if m.err != nil {
		return m.err
	}
	n, _ := strconv.ParseInt(id, 10, 64)
	if _, ok := m.data[collection][n]; !ok {
		return fmt.Errorf("record %s/%s: %w", collection, id, dom.ErrNotFound)
	}
	delete(m.data[collection], n)
	return nil
}

func (m *memRecords) copyOf(collection string, id int64) record.Record {
	out := record.Record{}
	for k, v := range m.data[collection][id] {
		out[k] = v
	}
	out[record.FieldID] = strconv.FormatInt(id, 10)
	out[record.FieldCreatedOn] = m.now.Format(time.RFC3339)
	return out
}

var errBroken = errors.New("connection refused")

// brokenKV fails every call after the first okCalls.
type brokenKV struct {
	inner   map[string][]byte
	okCalls int
	calls   int
}

func (b *brokenKV) fail() error {
	b.calls++
	if b.calls > b.okCalls {
		return errors.Join(dom.ErrStorageUnavailable, errBroken)
	}
	return nil
}

func (b *brokenKV) Get(_ context.Context, key string) ([]byte, error) {
	if err := b.fail(); err != nil {
		return nil, err
	}
	return b.inner[key], nil
}

func (b *brokenKV) Set(_ context.Context, key string, value []byte) error {
	if err := b.fail(); err != nil {
		return err
	}
	b.inner[key] = value
	return nil
}

func (b *brokenKV) Delete(_ context.Context, key string) error {
	if err := b.fail(); err != nil {
		return err
	}
	delete(b.inner, key)
	return nil
}
