package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/myduka/web-frontend/internal/core/domain"
	"github.com/myduka/web-frontend/internal/core/ports"
)

// stubAPI counts calls and delegates to the configured functions.
type stubAPI struct {
	mu            sync.Mutex
	loginCalls    int
	registerCalls int
	loginFn       func(ctx context.Context, creds domain.Credentials) (*ports.AuthPayload, error)
	registerFn    func(ctx context.Context, reg domain.Registration) (*ports.AuthPayload, error)
}

func (a *stubAPI) Login(ctx context.Context, creds domain.Credentials) (*ports.AuthPayload, error) {
	a.mu.Lock()
	a.loginCalls++
	a.mu.Unlock()
	return a.loginFn(ctx, creds)
}

func (a *stubAPI) Register(ctx context.Context, reg domain.Registration) (*ports.AuthPayload, error) {
	a.mu.Lock()
	a.registerCalls++
	a.mu.Unlock()
	return a.registerFn(ctx, reg)
}

func (a *stubAPI) calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loginCalls + a.registerCalls
}

func answer(p *ports.AuthPayload, err error) func(context.Context, domain.Credentials) (*ports.AuthPayload, error) {
	return func(context.Context, domain.Credentials) (*ports.AuthPayload, error) { return p, err }
}

// stubSlot is one durable storage slot with mutation counters.
type stubSlot struct {
	mu       sync.Mutex
	record   *domain.Identity
	loadErr  error
	saveErr  error
	clearErr error
	saves    int
	clears   int

	// When set, Load signals loading and then waits for release.
	loading chan struct{}
	release chan struct{}
}

func (s *stubSlot) Load(context.Context) (*domain.Identity, error) {
	if s.release != nil {
		s.loading <- struct{}{}
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.record.Clone(), nil
}

func (s *stubSlot) Save(_ context.Context, id *domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.record = id.Clone()
	return nil
}

func (s *stubSlot) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	if s.clearErr != nil {
		return s.clearErr
	}
	s.record = nil
	return nil
}

func (s *stubSlot) stored() *domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone()
}

func (s *stubSlot) mutations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves + s.clears
}

// stubProvider hands out one stubSlot per session id.
type stubProvider struct {
	mu    sync.Mutex
	slots map[string]*stubSlot
}

func newStubProvider() *stubProvider {
	return &stubProvider{slots: make(map[string]*stubSlot)}
}

func (p *stubProvider) Slot(sessionID string) ports.IdentityStorage {
	return p.slot(sessionID)
}

func (p *stubProvider) slot(sessionID string) *stubSlot {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.slots[sessionID]
	if !ok {
		s = &stubSlot{}
		p.slots[sessionID] = s
	}
	return s
}

func (p *stubProvider) Ping(context.Context) error { return nil }
func (p *stubProvider) Name() string               { return "stub" }

// stubResources records dashboard calls.
type stubResources struct {
	calls []resourceCall
	resp  json.RawMessage
	err   error
}

type resourceCall struct {
	method, path, token string
	body                json.RawMessage
}

func (r *stubResources) Do(_ context.Context, method, path, token string, body json.RawMessage) (json.RawMessage, error) {
	r.calls = append(r.calls, resourceCall{method: method, path: path, token: token, body: body})
	return r.resp, r.err
}
