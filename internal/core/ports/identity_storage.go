package ports

import (
	"context"

	"github.com/myduka/web-frontend/internal/core/domain"
)

// IdentityStorage is one browser session's durable slot. It holds the
// persisted identity and the persisted token; both are written and cleared
// together.
type IdentityStorage interface {
	// Load returns (nil, nil) when nothing is stored and
	// domain.ErrStoredIdentityMalformed for partial or undecodable records.
	Load(ctx context.Context) (*domain.Identity, error)
	Save(ctx context.Context, id *domain.Identity) error
	Clear(ctx context.Context) error
}

// StorageProvider hands out per-session slots over a shared backend.
type StorageProvider interface {
	Slot(sessionID string) IdentityStorage
	Ping(ctx context.Context) error
	Name() string
}
