package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/myduka/web-frontend/internal/infrastructure/db/memory"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Liveness(t *testing.T) {
	c, rec, _ := newContext(http.MethodGet, "/health", "", nil)
	if err := NewHealthHandler(memory.NewIdentityStore(), nil).Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthHandler_Readiness_BackendDownIsDegraded(t *testing.T) {
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })
	c, rec, _ := newContext(http.MethodGet, "/health/ready", "", nil)

	if err := NewHealthHandler(memory.NewIdentityStore(), down).Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode(rec)
	deps, _ := resp["dependencies"].(map[string]any)
	if resp["status"] != "degraded" || deps["memory"] == nil || deps["backend"] == nil {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}
