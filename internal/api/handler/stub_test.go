package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/myduka/web-frontend/internal/core/domain"
)

type stubStore struct {
	state       domain.SessionState
	loginFn     func(domain.Credentials) error
	registerFn  func(domain.Registration) error
	logoutErr   error
	logouts     int
	invalidated []string
}

func (s *stubStore) Initialize(context.Context) {}

func (s *stubStore) Login(_ context.Context, creds domain.Credentials) error {
	return s.loginFn(creds)
}

func (s *stubStore) Register(_ context.Context, reg domain.Registration) error {
	return s.registerFn(reg)
}

func (s *stubStore) Logout(context.Context) error {
	s.logouts++
	if s.logoutErr != nil {
		return s.logoutErr
	}
	s.state = domain.SessionState{}
	return nil
}

func (s *stubStore) InvalidateToken(_ context.Context, token string) error {
	s.invalidated = append(s.invalidated, token)
	if s.state.Identity != nil && s.state.Identity.Token == token {
		s.state.Identity = nil
	}
	return nil
}

func (s *stubStore) CurrentRole() (domain.Role, bool) { return s.state.Role() }
func (s *stubStore) State() domain.SessionState       { return s.state }

func identity(role domain.Role) *domain.Identity {
	return &domain.Identity{ID: "7", Username: "alice", Role: role, Token: "tkn1"}
}

type stubDashboard struct {
	loadFn   func(id *domain.Identity, key string, vars map[string]string) (json.RawMessage, error)
	submitFn func(id *domain.Identity, key string, vars map[string]string, body json.RawMessage) (json.RawMessage, error)
}

func (d *stubDashboard) Load(_ context.Context, id *domain.Identity, key string, vars map[string]string) (json.RawMessage, error) {
	return d.loadFn(id, key, vars)
}

func (d *stubDashboard) Submit(_ context.Context, id *domain.Identity, key string, vars map[string]string, body json.RawMessage) (json.RawMessage, error) {
	return d.submitFn(id, key, vars, body)
}

// newContext builds an echo context carrying store the way the Session
// middleware would.
func newContext(method, target, body string, store *stubStore) (echo.Context, *httptest.ResponseRecorder, *echo.Echo) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if store != nil {
		c.Set("session", store)
	}
	return c, rec, e
}

func decode(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return out
}
