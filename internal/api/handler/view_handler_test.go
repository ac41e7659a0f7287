package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/myduka/web-frontend/internal/core/domain"
	"github.com/myduka/web-frontend/internal/core/service"
)

func newViewHandler(d *stubDashboard) *ViewHandler {
	return NewViewHandler(service.NewGate(), d, zerolog.Nop())
}

func TestViewHandler_Public(t *testing.T) {
	c, rec, _ := newContext(http.MethodGet, "/register_with_token/abc", "", &stubStore{})
	c.Set("route", domain.Allow("public.register_with_token", map[string]string{"token": "abc"}))

	if err := newViewHandler(&stubDashboard{}).Public(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(rec)
	vars, _ := resp["vars"].(map[string]any)
	if resp["view"] != "public.register_with_token" || vars["token"] != "abc" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestViewHandler_Dashboard_LoadsData(t *testing.T) {
	store := &stubStore{state: domain.SessionState{Identity: identity(domain.RoleAdmin)}}
	dash := &stubDashboard{loadFn: func(id *domain.Identity, key string, vars map[string]string) (json.RawMessage, error) {
		if id.Token != "tkn1" || key != "admin.reports" || vars["period"] != "monthly" {
			t.Fatalf("unexpected load: %v %s %v", id, key, vars)
		}
		return json.RawMessage(`[{"total":10}]`), nil
	}}
	c, rec, _ := newContext(http.MethodGet, "/dashboard/admin/reports?period=monthly", "", store)
	c.Set("route", domain.Allow("admin.reports", nil))

	if err := newViewHandler(dash).Dashboard(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode(rec)
	data, _ := resp["data"].([]any)
	if resp["view"] != "admin.reports" || len(data) != 1 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestViewHandler_Dashboard_TokenRejectedLogsOut(t *testing.T) {
	store := &stubStore{state: domain.SessionState{Identity: identity(domain.RoleClerk)}}
	dash := &stubDashboard{loadFn: func(*domain.Identity, string, map[string]string) (json.RawMessage, error) {
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenRejected, &domain.BackendError{StatusCode: 401})
	}}
	c, rec, _ := newContext(http.MethodGet, "/dashboard/clerk/stock", "", store)
	c.Set("route", domain.Allow("clerk.stock", nil))

	if err := newViewHandler(dash).Dashboard(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected 302 /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if len(store.invalidated) != 1 || store.invalidated[0] != "tkn1" || store.state.Identity != nil {
		t.Fatalf("token not invalidated: %v", store.invalidated)
	}
}

func TestViewHandler_Dashboard_BackendErrorPropagates(t *testing.T) {
	store := &stubStore{state: domain.SessionState{Identity: identity(domain.RoleMerchant)}}
	want := fmt.Errorf("GET /stores: %w", domain.ErrTransportFailure)
	dash := &stubDashboard{loadFn: func(*domain.Identity, string, map[string]string) (json.RawMessage, error) {
		return nil, want
	}}
	c, _, _ := newContext(http.MethodGet, "/dashboard/merchant/stores", "", store)
	c.Set("route", domain.Allow("merchant.stores", nil))

	if err := newViewHandler(dash).Dashboard(c); !errors.Is(err, domain.ErrTransportFailure) {
		t.Fatalf("expected transport failure, got %v", err)
	}
}

func TestViewHandler_Submit(t *testing.T) {
	store := &stubStore{state: domain.SessionState{Identity: identity(domain.RoleMerchant)}}
	dash := &stubDashboard{submitFn: func(id *domain.Identity, key string, vars map[string]string, body json.RawMessage) (json.RawMessage, error) {
		if key != "merchant.inventory.update" || vars["id"] != "9" || string(body) != `{"quantity":3}` {
			t.Fatalf("unexpected submit: %s %v %s", key, vars, body)
		}
		return json.RawMessage(`{"id":9}`), nil
	}}
	c, rec, _ := newContext(http.MethodPost, "/dashboard/merchant/inventory/update/9", `{"quantity":3}`, store)

	if err := newViewHandler(dash).Submit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestViewHandler_Submit_UnknownView(t *testing.T) {
	store := &stubStore{state: domain.SessionState{Identity: identity(domain.RoleMerchant)}}
	c, _, _ := newContext(http.MethodPost, "/dashboard/merchant/nowhere", `{}`, store)

	err := newViewHandler(&stubDashboard{}).Submit(c)
	if !errors.Is(err, domain.ErrUnknownView) {
		t.Fatalf("expected ErrUnknownView, got %v", err)
	}
}

func TestViewHandler_Submit_InvalidJSON(t *testing.T) {
	store := &stubStore{state: domain.SessionState{Identity: identity(domain.RoleClerk)}}
	c, _, _ := newContext(http.MethodPost, "/dashboard/clerk/supply-requests", `{oops`, store)

	if err := newViewHandler(&stubDashboard{}).Submit(c); err == nil {
		t.Fatalf("expected error for invalid body")
	}
}

func TestViewHandler_Submit_TokenRejected(t *testing.T) {
	store := &stubStore{state: domain.SessionState{Identity: identity(domain.RoleClerk)}}
	dash := &stubDashboard{submitFn: func(*domain.Identity, string, map[string]string, json.RawMessage) (json.RawMessage, error) {
		return nil, domain.ErrTokenRejected
	}}
	c, rec, _ := newContext(http.MethodPost, "/dashboard/clerk/supply-requests", `{"product_id":1}`, store)

	if err := newViewHandler(dash).Submit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized || decode(rec)["redirect"] != "/login" {
		t.Fatalf("expected 401 with redirect, got %d %s", rec.Code, rec.Body.String())
	}
	if store.state.Identity != nil {
		t.Fatalf("session should be ended")
	}
}
