package middleware

import (
	"context"

	"github.com/myduka/web-frontend/internal/core/domain"
	"github.com/myduka/web-frontend/internal/core/ports"
)

type stubStore struct {
	state domain.SessionState
}

func signedIn(role domain.Role) *stubStore {
	return &stubStore{state: domain.SessionState{Identity: &domain.Identity{
		ID: "1", Username: "alice", Role: role, Token: "tkn1",
	}}}
}

func (s *stubStore) Initialize(context.Context)                          {}
func (s *stubStore) Login(context.Context, domain.Credentials) error     { return nil }
func (s *stubStore) Register(context.Context, domain.Registration) error { return nil }
func (s *stubStore) Logout(context.Context) error                        { return nil }
func (s *stubStore) InvalidateToken(context.Context, string) error       { return nil }
func (s *stubStore) State() domain.SessionState                          { return s.state }
func (s *stubStore) CurrentRole() (domain.Role, bool)                    { return s.state.Role() }

type stubRegistry struct {
	store    ports.SessionStore
	acquired []string
	released []string
}

func (r *stubRegistry) Acquire(_ context.Context, sid string) ports.SessionStore {
	r.acquired = append(r.acquired, sid)
	return r.store
}

func (r *stubRegistry) Release(sid string) {
	r.released = append(r.released, sid)
}
