package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/myduka/web-frontend/internal/core/domain"
	"github.com/myduka/web-frontend/internal/core/ports"
)

// Logical key names inside each session's namespace.
const (
	identityKey = "persisted-identity"
	tokenKey    = "persisted-token"
)

// IdentityStore persists identities in Redis.
// Key format: <prefix>:<session_id>:persisted-identity / persisted-token
type IdentityStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ ports.StorageProvider = (*IdentityStore)(nil)

// NewIdentityStore wraps client. A zero ttl keeps records until logout.
func NewIdentityStore(client *redis.Client, prefix string, ttl time.Duration) *IdentityStore {
	if prefix == "" {
		prefix = "myduka:session"
	}
	return &IdentityStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *IdentityStore) Slot(sessionID string) ports.IdentityStorage {
	base := fmt.Sprintf("%s:%s:", s.prefix, sessionID)
	return &slot{
		store:       s,
		identityKey: base + identityKey,
		tokenKey:    base + tokenKey,
	}
}

func (s *IdentityStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *IdentityStore) Name() string {
	return "redis"
}

type slot struct {
	store       *IdentityStore
	identityKey string
	tokenKey    string
}

// Load reads both keys in one round trip. A record with only one of the two
// keys, or with differing tokens, is malformed.
func (s *slot) Load(ctx context.Context) (*domain.Identity, error) {
	vals, err := s.store.client.MGet(ctx, s.identityKey, s.tokenKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load identity: %w", err)
	}
	rawIdentity, _ := vals[0].(string)
	token, _ := vals[1].(string)

	switch {
	case vals[0] == nil && vals[1] == nil:
		return nil, nil
	case rawIdentity == "" || token == "":
		return nil, fmt.Errorf("%w: partial record", domain.ErrStoredIdentityMalformed)
	}

	var id domain.Identity
	if err := json.Unmarshal([]byte(rawIdentity), &id); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoredIdentityMalformed, err)
	}
	if id.Token != token {
		return nil, fmt.Errorf("%w: token mismatch", domain.ErrStoredIdentityMalformed)
	}
	return &id, nil
}

// Save writes both keys inside MULTI/EXEC.
func (s *slot) Save(ctx context.Context, id *domain.Identity) error {
	if id == nil {
		return errors.New("save identity: nil identity")
	}
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	_, err = s.store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.identityKey, data, s.store.ttl)
		pipe.Set(ctx, s.tokenKey, id.Token, s.store.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

// Clear removes both keys with a single DEL, which Redis applies atomically.
func (s *slot) Clear(ctx context.Context) error {
	if err := s.store.client.Del(ctx, s.identityKey, s.tokenKey).Err(); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}
