package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/myduka/web-frontend/internal/core/ports"
	"github.com/myduka/web-frontend/internal/pkg/metrics"
)

type registryEntry struct {
	store    *SessionStore
	init     sync.Once
	refs     int
	uses     uint64
	lastUsed time.Time
}

// Registry keeps exactly one SessionStore per browser session id. A store is
// initialised from durable storage on first use and dropped once no request
// holds it and it carries no state; durable storage stays the record.
//
// r.mu only guards the entries map. Storage I/O and store locks are never
// taken while holding it.
type Registry struct {
	api     ports.APIClient
	storage ports.StorageProvider
	log     zerolog.Logger

	mu      sync.Mutex
	entries map[string]*registryEntry
}

func NewRegistry(api ports.APIClient, storage ports.StorageProvider, log zerolog.Logger) *Registry {
	return &Registry{
		api:     api,
		storage: storage,
		log:     log,
		entries: make(map[string]*registryEntry),
	}
}

// Acquire returns the store for sessionID, creating and initialising it when
// needed. Concurrent callers for the same id wait for one initialisation.
// The caller must Release it.
func (r *Registry) Acquire(ctx context.Context, sessionID string) ports.SessionStore {
	r.mu.Lock()
	e, ok := r.entries[sessionID]
	if !ok {
		store := NewSessionStore(r.api, r.storage.Slot(sessionID), r.log.With().Str("session_id", sessionID).Logger())
		e = &registryEntry{store: store}
		r.entries[sessionID] = e
		metrics.ActiveSessions.Inc()
	}
	e.refs++
	e.uses++
	e.lastUsed = time.Now()
	r.mu.Unlock()

	e.init.Do(func() { e.store.Initialize(ctx) })
	return e.store
}

// Release drops one reference and forgets stores with nothing to remember:
// logged out, idle, and no error waiting to be shown. The sweeper takes the
// rest.
func (r *Registry) Release(sessionID string) {
	r.mu.Lock()
	e, ok := r.entries[sessionID]
	if !ok {
		r.mu.Unlock()
		return
	}
	e.refs--
	if e.refs > 0 {
		r.mu.Unlock()
		return
	}
	uses := e.uses
	r.mu.Unlock()

	if st := e.store.State(); st.Identity != nil || st.IsLoading || st.LastError != "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Someone acquired the store while its state was read; leave it to them.
	if cur, ok := r.entries[sessionID]; ok && cur == e && e.refs == 0 && e.uses == uses {
		delete(r.entries, sessionID)
		metrics.ActiveSessions.Dec()
	}
}

// Sweep forgets stores nobody has used for maxIdle. Logged-in sessions are
// rebuilt from durable storage on their next request.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	dropped := 0
	for id, e := range r.entries {
		if e.refs == 0 && e.lastUsed.Before(cutoff) {
			delete(r.entries, id)
			dropped++
		}
	}
	metrics.ActiveSessions.Sub(float64(dropped))
	return dropped
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (r *Registry) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(maxIdle); n > 0 {
				r.log.Debug().Int("dropped", n).Msg("idle session stores swept")
			}
		}
	}
}

// Len reports how many stores are held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
