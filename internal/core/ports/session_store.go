package ports

import (
	"context"
	"encoding/json"

	"github.com/myduka/web-frontend/internal/core/domain"
)

// SessionStore owns a SessionState and every transition of it.
type SessionStore interface {
	Initialize(ctx context.Context)
	Login(ctx context.Context, creds domain.Credentials) error
	Register(ctx context.Context, reg domain.Registration) error
	Logout(ctx context.Context) error
	InvalidateToken(ctx context.Context, token string) error
	CurrentRole() (domain.Role, bool)
	State() domain.SessionState
}

// SessionRegistry maps browser session ids to their single SessionStore.
// Every Acquire must be paired with a Release.
type SessionRegistry interface {
	Acquire(ctx context.Context, sessionID string) SessionStore
	Release(sessionID string)
}

// Gate decides what a navigation renders. It only reads session state.
type Gate interface {
	Evaluate(path string, state domain.SessionState) domain.RouteDecision
	StateOf(state domain.SessionState) domain.GateState
}

// DashboardService is the data side of the role dashboards.
type DashboardService interface {
	Load(ctx context.Context, id *domain.Identity, viewKey string, vars map[string]string) (json.RawMessage, error)
	Submit(ctx context.Context, id *domain.Identity, viewKey string, vars map[string]string, body json.RawMessage) (json.RawMessage, error)
}
