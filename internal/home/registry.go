package home

import (
	"context"
	"sync"
	"time"
)

// Identity is who a session belongs to.
type Identity struct {
	SessionID string
	UserID    int64
}

// Factory builds the controller for a new session. It decides between the
// remote and the local backing store.
type Factory func(id Identity) *Controller

const (
	DefaultIdleTimeout = 24 * time.Hour
	DefaultMaxSessions = 10000
)

// Option configures a Registry.
type Option func(*Registry)

// WithIdleTimeout sets how long an unused controller is kept before Sweep
// drops it.
func WithIdleTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.idle = d
		}
	}
}

// WithMaxSessions caps the number of controllers held at once. Creating one
// beyond the cap evicts the least recently used.
func WithMaxSessions(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.max = n
		}
	}
}

// Registry keeps one controller per session. Evicted sessions get a fresh
// controller, loaded from the backing store, on their next request.
type Registry struct {
	factory Factory
	idle    time.Duration
	max     int
	now     func() time.Time

	mu    sync.Mutex
	items map[string]*entry
}

type entry struct {
	userID   int64
	ctrl     *Controller
	once     sync.Once
	lastUsed time.Time
}

func NewRegistry(f Factory, opts ...Option) *Registry {
	r := &Registry{
		factory: f,
		idle:    DefaultIdleTimeout,
		max:     DefaultMaxSessions,
		now:     time.Now,
		items:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the session's controller, creating and loading it on first
// use. A failed first load is kept in StateError for the caller to report.
func (r *Registry) Get(ctx context.Context, id Identity) *Controller {
	r.mu.Lock()
	now := r.now()
	e, ok := r.items[id.SessionID]
	if !ok || e.userID != id.UserID {
		if !ok && len(r.items) >= r.max {
			r.evictOldestLocked()
		}
		e = &entry{userID: id.UserID, ctrl: r.factory(id)}
		r.items[id.SessionID] = e
	}
	e.lastUsed = now
	r.mu.Unlock()

	e.once.Do(func() {
		_ = e.ctrl.Load(ctx)
	})
	return e.ctrl
}

// Drop forgets the session's controller.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	delete(r.items, sessionID)
	r.mu.Unlock()
}

// Len reports how many sessions have a controller.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Sweep drops controllers unused for longer than the idle timeout and
// returns how many were dropped.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.idle)
	n := 0
	for id, e := range r.items {
		if e.lastUsed.Before(cutoff) {
			delete(r.items, id)
			n++
		}
	}
	return n
}

// Run calls Sweep every interval until ctx is done. onSweep, if set,
// receives the number of dropped controllers.
func (r *Registry) Run(ctx context.Context, interval time.Duration, onSweep func(dropped int)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n := r.Sweep()
			if onSweep != nil {
				onSweep(n)
			}
		}
	}
}

func (r *Registry) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, e := range r.items {
		if oldestID == "" || e.lastUsed.Before(oldest) {
			oldestID, oldest = id, e.lastUsed
		}
	}
	delete(r.items, oldestID)
}
