package memory

import (
	"context"
	"testing"

	"github.com/myduka/web-frontend/internal/core/domain"
)

func TestIdentityStore_SlotsAreIsolated(t *testing.T) {
	s := NewIdentityStore()
	ctx := context.Background()
	a, b := s.Slot("a"), s.Slot("b")

	id := &domain.Identity{ID: "1", Username: "alice", Role: domain.RoleClerk, Token: "tkn1"}
	if err := a.Save(ctx, id); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := a.Load(ctx)
	if err != nil || got == nil || *got != *id {
		t.Fatalf("load a: %+v %v", got, err)
	}
	if got, _ := b.Load(ctx); got != nil {
		t.Fatalf("slot b should be empty, got %+v", got)
	}

	got.Token = "mutated"
	if again, _ := a.Load(ctx); again.Token != "tkn1" {
		t.Fatalf("stored record shared with caller")
	}

	if err := a.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got, _ := a.Load(ctx); got != nil {
		t.Fatalf("expected empty slot after clear")
	}
	if s.Len() != 0 {
		t.Fatalf("expected no records, got %d", s.Len())
	}
}

func TestIdentityStore_SaveRejectsNil(t *testing.T) {
	s := NewIdentityStore()
	if err := s.Slot("a").Save(context.Background(), nil); err == nil {
		t.Fatalf("expected an error for a nil identity")
	}
	if s.Len() != 0 {
		t.Fatalf("nil identity must not be stored")
	}
}
