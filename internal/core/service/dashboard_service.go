package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/myduka/web-frontend/internal/core/domain"
	"github.com/myduka/web-frontend/internal/core/ports"
)

type endpoint struct {
	Method string
	Path   string
}

// screen describes what a dashboard view reads and what its form submits.
// Zero endpoints mean the screen has nothing to fetch or submit.
type screen struct {
	Read   endpoint
	Submit endpoint
	// Query lists view vars forwarded as query parameters on Read.
	Query []string
}

func get(p string) endpoint  { return endpoint{Method: http.MethodGet, Path: p} }
func post(p string) endpoint { return endpoint{Method: http.MethodPost, Path: p} }
func put(p string) endpoint  { return endpoint{Method: http.MethodPut, Path: p} }

var inventoryScreens = map[string]screen{
	"inventory":        {Read: get("/inventory")},
	"inventory.add":    {Submit: post("/inventory")},
	"inventory.update": {Read: get("/inventory/{id}"), Submit: put("/inventory/{id}")},
	"inventory.assign": {Read: get("/clerks"), Submit: post("/inventory/assign")},
}

var screens = buildScreens(map[domain.Role]map[string]screen{
	domain.RoleAdmin: {
		"home":             {},
		"users":            {Read: get("/users"), Submit: post("/register_clerk")},
		"payments":         {Read: get("/payment")},
		"payments.process": {Submit: post("/payment")},
		"supply-requests":  {Read: get("/supply_request")},
		"reports":          {Read: get("/report"), Query: []string{"period"}},
	},
	domain.RoleMerchant: {
		"home":          {},
		"payments":      {Read: get("/payment")},
		"sales":         {Read: get("/sales"), Submit: post("/sales")},
		"reports":       {Read: get("/report/merchant_reports"), Query: []string{"period"}},
		"stores":        {Read: get("/stores"), Submit: post("/stores")},
		"admins":        {Read: get("/admins")},
		"admins.invite": {Submit: post("/invite_admin")},
	},
	domain.RoleClerk: {
		"home":            {},
		"stock":           {Read: get("/inventory")},
		"supply-requests": {Read: get("/supply_request"), Submit: post("/supply_request")},
		"products":        {Read: get("/products"), Submit: post("/product")},
	},
})

func buildScreens(byRole map[domain.Role]map[string]screen) map[string]screen {
	out := make(map[string]screen)
	for role, views := range byRole {
		for sub, sc := range views {
			out[ViewKey(role, sub)] = sc
		}
		if role == domain.RoleAdmin || role == domain.RoleMerchant {
			for sub, sc := range inventoryScreens {
				out[ViewKey(role, sub)] = sc
			}
		}
	}
	return out
}

// DashboardService fetches and submits the data behind dashboard screens,
// always with the identity's credential token.
type DashboardService struct {
	client ports.ResourceClient
	log    zerolog.Logger
}

func NewDashboardService(client ports.ResourceClient, log zerolog.Logger) *DashboardService {
	return &DashboardService{client: client, log: log}
}

// Load returns the data a view shows, or nil for pure form views.
func (s *DashboardService) Load(ctx context.Context, id *domain.Identity, viewKey string, vars map[string]string) (json.RawMessage, error) {
	sc, ok := screens[viewKey]
	if !ok {
		return nil, fmt.Errorf("load %s: %w", viewKey, domain.ErrUnknownView)
	}
	if sc.Read.Path == "" {
		return nil, nil
	}
	p, err := expand(sc.Read.Path, vars)
	if err != nil {
		return nil, err
	}
	if q := query(sc.Query, vars); q != "" {
		p += "?" + q
	}
	return s.call(ctx, id, viewKey, sc.Read.Method, p, nil)
}

// Submit forwards a view's form to the backend.
func (s *DashboardService) Submit(ctx context.Context, id *domain.Identity, viewKey string, vars map[string]string, body json.RawMessage) (json.RawMessage, error) {
	sc, ok := screens[viewKey]
	if !ok || sc.Submit.Path == "" {
		return nil, fmt.Errorf("submit %s: %w", viewKey, domain.ErrUnknownView)
	}
	p, err := expand(sc.Submit.Path, vars)
	if err != nil {
		return nil, err
	}
	return s.call(ctx, id, viewKey, sc.Submit.Method, p, body)
}

func (s *DashboardService) call(ctx context.Context, id *domain.Identity, viewKey, method, p string, body json.RawMessage) (json.RawMessage, error) {
	if id == nil {
		return nil, domain.ErrNoSession
	}
	data, err := s.client.Do(ctx, method, p, id.Token, body)
	if err != nil {
		ev := s.log.Warn()
		if errors.Is(err, domain.ErrTokenRejected) {
			ev = s.log.Info()
		}
		ev.Err(err).Str("view", viewKey).Str("method", method).Str("path", p).Msg("dashboard call failed")
		return nil, err
	}
	return data, nil
}

// expand substitutes {name} segments with escaped view vars.
func expand(tmpl string, vars map[string]string) (string, error) {
	var b strings.Builder
	for {
		open := strings.IndexByte(tmpl, '{')
		if open < 0 {
			b.WriteString(tmpl)
			return b.String(), nil
		}
		end := strings.IndexByte(tmpl[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("bad endpoint template %q", tmpl)
		}
		name := tmpl[open+1 : open+end]
		val := vars[name]
		if val == "" {
			return "", &domain.FieldError{Field: name, Message: name + " is required"}
		}
		b.WriteString(tmpl[:open])
		b.WriteString(url.PathEscape(val))
		tmpl = tmpl[open+end+1:]
	}
}

func query(keys []string, vars map[string]string) string {
	q := url.Values{}
	for _, k := range keys {
		if v := vars[k]; v != "" {
			q.Set(k, v)
		}
	}
	return q.Encode()
}
