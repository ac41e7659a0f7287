package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/myduka/web-frontend/internal/core/domain"
)

var clerkIdentity = &domain.Identity{ID: "3", Username: "carl", Role: domain.RoleClerk, Token: "tkn-clerk"}

func TestDashboardService_EveryViewHasAScreen(t *testing.T) {
	for _, role := range domain.Roles {
		for _, v := range DashboardViews[role] {
			if _, ok := screens[ViewKey(role, v.Key)]; !ok {
				t.Fatalf("view %s has no screen", ViewKey(role, v.Key))
			}
		}
	}
}

func TestDashboardService_Load(t *testing.T) {
	res := &stubResources{resp: json.RawMessage(`[{"id":1}]`)}
	svc := NewDashboardService(res, zerolog.Nop())

	data, err := svc.Load(context.Background(), clerkIdentity, "clerk.stock", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != `[{"id":1}]` {
		t.Fatalf("unexpected data %s", data)
	}
	if len(res.calls) != 1 {
		t.Fatalf("expected one call, got %d", len(res.calls))
	}
	call := res.calls[0]
	if call.method != http.MethodGet || call.path != "/inventory" || call.token != "tkn-clerk" {
		t.Fatalf("unexpected call %+v", call)
	}
}

func TestDashboardService_Load_ExpandsVarsAndQuery(t *testing.T) {
	res := &stubResources{}
	svc := NewDashboardService(res, zerolog.Nop())
	admin := &domain.Identity{Role: domain.RoleAdmin, Token: "tkn-admin"}

	if _, err := svc.Load(context.Background(), admin, "admin.inventory.update", map[string]string{"id": "a b"}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := svc.Load(context.Background(), admin, "admin.reports", map[string]string{"period": "weekly", "ignored": "x"}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.calls[0].path != "/inventory/a%20b" {
		t.Fatalf("unexpected path %q", res.calls[0].path)
	}
	if res.calls[1].path != "/report?period=weekly" {
		t.Fatalf("unexpected path %q", res.calls[1].path)
	}
}

func TestDashboardService_Load_MissingVar(t *testing.T) {
	res := &stubResources{}
	svc := NewDashboardService(res, zerolog.Nop())

	_, err := svc.Load(context.Background(), &domain.Identity{Role: domain.RoleMerchant, Token: "t"}, "merchant.inventory.update", nil)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(res.calls) != 0 {
		t.Fatalf("no call expected")
	}
}

func TestDashboardService_Load_FormViewHasNoData(t *testing.T) {
	res := &stubResources{}
	svc := NewDashboardService(res, zerolog.Nop())

	data, err := svc.Load(context.Background(), clerkIdentity, "clerk.home", nil)
	if err != nil || data != nil || len(res.calls) != 0 {
		t.Fatalf("expected no data and no call, got %s %v %d", data, err, len(res.calls))
	}
}

func TestDashboardService_UnknownView(t *testing.T) {
	svc := NewDashboardService(&stubResources{}, zerolog.Nop())

	if _, err := svc.Load(context.Background(), clerkIdentity, "clerk.payroll", nil); !errors.Is(err, domain.ErrUnknownView) {
		t.Fatalf("load: expected ErrUnknownView, got %v", err)
	}
	if _, err := svc.Submit(context.Background(), clerkIdentity, "clerk.stock", nil, nil); !errors.Is(err, domain.ErrUnknownView) {
		t.Fatalf("submit on read-only view: expected ErrUnknownView, got %v", err)
	}
}

func TestDashboardService_Submit(t *testing.T) {
	res := &stubResources{resp: json.RawMessage(`{"message":"invited"}`)}
	svc := NewDashboardService(res, zerolog.Nop())
	merchant := &domain.Identity{Role: domain.RoleMerchant, Token: "tkn-m"}
	body := json.RawMessage(`{"email":"new@shop.test"}`)

	if _, err := svc.Submit(context.Background(), merchant, "merchant.admins.invite", nil, body); err != nil {
		t.Fatalf("submit: %v", err)
	}
	call := res.calls[0]
	if call.method != http.MethodPost || call.path != "/invite_admin" || call.token != "tkn-m" || string(call.body) != string(body) {
		t.Fatalf("unexpected call %+v", call)
	}
}

func TestDashboardService_NoSession(t *testing.T) {
	res := &stubResources{}
	svc := NewDashboardService(res, zerolog.Nop())

	if _, err := svc.Load(context.Background(), nil, "clerk.stock", nil); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if len(res.calls) != 0 {
		t.Fatalf("no call expected without a token")
	}
}

func TestDashboardService_PropagatesTokenRejection(t *testing.T) {
	res := &stubResources{err: domain.ErrTokenRejected}
	svc := NewDashboardService(res, zerolog.Nop())

	if _, err := svc.Load(context.Background(), clerkIdentity, "clerk.products", nil); !errors.Is(err, domain.ErrTokenRejected) {
		t.Fatalf("expected ErrTokenRejected, got %v", err)
	}
}
