// Package memory is a process-local StorageProvider for development and
// tests. Records vanish with the process.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/myduka/web-frontend/internal/core/domain"
	"github.com/myduka/web-frontend/internal/core/ports"
)

// IdentityStore holds identities in a map guarded by one mutex. The token is
// part of the identity value, so save and clear are a single write.
type IdentityStore struct {
	mu      sync.Mutex
	records map[string]domain.Identity
}

var _ ports.StorageProvider = (*IdentityStore)(nil)

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{records: make(map[string]domain.Identity)}
}

func (s *IdentityStore) Slot(sessionID string) ports.IdentityStorage {
	return &slot{store: s, sessionID: sessionID}
}

func (s *IdentityStore) Ping(context.Context) error { return nil }

func (s *IdentityStore) Name() string { return "memory" }

// Len reports how many sessions have a persisted identity.
func (s *IdentityStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type slot struct {
	store     *IdentityStore
	sessionID string
}

func (s *slot) Load(context.Context) (*domain.Identity, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	id, ok := s.store.records[s.sessionID]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func (s *slot) Save(_ context.Context, id *domain.Identity) error {
	if id == nil {
		return errors.New("save identity: nil identity")
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.records[s.sessionID] = *id
	return nil
}

func (s *slot) Clear(context.Context) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	delete(s.store.records, s.sessionID)
	return nil
}
