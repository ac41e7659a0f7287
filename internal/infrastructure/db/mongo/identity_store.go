package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/myduka/web-frontend/internal/core/domain"
	"github.com/myduka/web-frontend/internal/core/ports"
)

const sessionCollection = "web_sessions"

// IdentityStore keeps one document per browser session. Identity and token
// live in the same document, so a write or a delete covers both at once.
type IdentityStore struct {
	db   *mongo.Database
	coll *mongo.Collection
}

var _ ports.StorageProvider = (*IdentityStore)(nil)

type identityDoc struct {
	ID       string `bson:"id"`
	Username string `bson:"username"`
	Role     string `bson:"role"`
	Token    string `bson:"token"`
}

type sessionDoc struct {
	SessionID string       `bson:"_id"`
	Identity  *identityDoc `bson:"identity"`
	Token     string       `bson:"token"`
	UpdatedAt time.Time    `bson:"updated_at"`
}

// NewIdentityStore prepares the collection. With a positive ttl a TTL index
// on updated_at lets MongoDB expire abandoned sessions.
func NewIdentityStore(ctx context.Context, db *mongo.Database, ttl time.Duration) (*IdentityStore, error) {
	s := &IdentityStore{db: db, coll: db.Collection(sessionCollection)}
	if ttl > 0 {
		_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())),
		})
		if err != nil {
			return nil, fmt.Errorf("create session ttl index: %w", err)
		}
	}
	return s, nil
}

func (s *IdentityStore) Slot(sessionID string) ports.IdentityStorage {
	return &slot{coll: s.coll, sessionID: sessionID}
}

func (s *IdentityStore) Ping(ctx context.Context) error {
	return s.db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

func (s *IdentityStore) Name() string {
	return "mongo"
}

type slot struct {
	coll      *mongo.Collection
	sessionID string
}

func (s *slot) Load(ctx context.Context) (*domain.Identity, error) {
	var doc sessionDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": s.sessionID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("load identity: %w", err)
	}
	return doc.identity()
}

func (s *slot) Save(ctx context.Context, id *domain.Identity) error {
	if id == nil {
		return errors.New("save identity: nil identity")
	}
	doc := newSessionDoc(s.sessionID, id, time.Now().UTC())
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": s.sessionID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

func (s *slot) Clear(ctx context.Context) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": s.sessionID}); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}

func newSessionDoc(sessionID string, id *domain.Identity, now time.Time) sessionDoc {
	return sessionDoc{
		SessionID: sessionID,
		Identity: &identityDoc{
			ID:       id.ID,
			Username: id.Username,
			Role:     id.Role.String(),
			Token:    id.Token,
		},
		Token:     id.Token,
		UpdatedAt: now,
	}
}

// identity rejects documents missing either half or whose tokens disagree.
func (d *sessionDoc) identity() (*domain.Identity, error) {
	if d.Identity == nil || d.Token == "" {
		return nil, fmt.Errorf("%w: partial record", domain.ErrStoredIdentityMalformed)
	}
	if d.Identity.Token != d.Token {
		return nil, fmt.Errorf("%w: token mismatch", domain.ErrStoredIdentityMalformed)
	}
	return &domain.Identity{
		ID:       d.Identity.ID,
		Username: d.Identity.Username,
		Role:     domain.Role(d.Identity.Role),
		Token:    d.Identity.Token,
	}, nil
}
