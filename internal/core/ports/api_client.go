package ports

import (
	"context"
	"encoding/json"

	"github.com/myduka/web-frontend/internal/core/domain"
)

// AuthPayload is a login/register answer normalised from the backend's
// several response shapes. Fields are raw; the session core validates them.
type AuthPayload struct {
	ID       string
	Username string
	Role     string
	Token    string
}

// APIClient is the part of the backend the session core depends on.
type APIClient interface {
	Login(ctx context.Context, creds domain.Credentials) (*AuthPayload, error)
	Register(ctx context.Context, reg domain.Registration) (*AuthPayload, error)
}

// ResourceClient issues authenticated calls on behalf of dashboard screens.
// token may be empty, in which case no Authorization header is sent.
type ResourceClient interface {
	Do(ctx context.Context, method, path, token string, body json.RawMessage) (json.RawMessage, error)
}
