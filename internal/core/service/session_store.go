package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/myduka/web-frontend/internal/core/domain"
	"github.com/myduka/web-frontend/internal/core/ports"
	"github.com/myduka/web-frontend/internal/pkg/metrics"
)

type authOp string

const (
	opLogin    authOp = "login"
	opRegister authOp = "register"
)

func (op authOp) failText() string {
	if op == opRegister {
		return "registration failed"
	}
	return "login failed"
}

const (
	msgPleaseWait  = "please wait, a sign-in is already in progress"
	msgUnreachable = "unable to reach the server, please try again"
	msgStorage     = "unable to save your session, please try again"
)

// attempt marks one in-flight login/register call.
type attempt struct {
	op authOp
}

// SessionStore owns the SessionState of one browser session and is the only
// writer of its durable storage slot.
type SessionStore struct {
	api     ports.APIClient
	storage ports.IdentityStorage
	log     zerolog.Logger
	now     func() time.Time

	mu      sync.Mutex
	state   domain.SessionState
	pending *attempt
}

func NewSessionStore(api ports.APIClient, storage ports.IdentityStorage, log zerolog.Logger) *SessionStore {
	return &SessionStore{
		api:     api,
		storage: storage,
		log:     log,
		now:     time.Now,
	}
}

// Initialize restores a persisted identity. Anything that does not satisfy
// the identity invariant, or carries an expired JWT, counts as no session.
func (s *SessionStore) Initialize(ctx context.Context) {
	id, err := s.storage.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("ignoring persisted identity")
		return
	}
	if id == nil {
		return
	}
	if err := id.Validate(); err != nil {
		s.log.Warn().Err(err).Msg("ignoring persisted identity")
		return
	}
	if tokenExpired(id.Token, s.now()) {
		s.log.Info().Str("username", id.Username).Msg("persisted token expired")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Identity == nil && s.pending == nil {
		s.state.Identity = id
	}
}

// Login authenticates against the backend. Failures end up in LastError and
// are also returned; a failed re-login keeps the current identity.
func (s *SessionStore) Login(ctx context.Context, creds domain.Credentials) error {
	a, err := s.begin(opLogin, func() error {
		if creds.UsernameOrEmail == "" {
			return &domain.FieldError{Field: "username_or_email", Message: "username or email is required"}
		}
		if creds.Password == "" {
			return &domain.FieldError{Field: "password", Message: "password is required"}
		}
		return nil
	})
	if err != nil {
		return err
	}

	payload, err := s.api.Login(ctx, creds)
	return s.finish(ctx, a, creds.UsernameOrEmail, payload, err)
}

// Register signs a new user up and, on success, logs them in.
func (s *SessionStore) Register(ctx context.Context, reg domain.Registration) error {
	a, err := s.begin(opRegister, func() error { return validateRegistration(reg) })
	if err != nil {
		return err
	}

	payload, err := s.api.Register(ctx, reg)
	return s.finish(ctx, a, reg.Username, payload, err)
}

func validateRegistration(reg domain.Registration) error {
	switch {
	case reg.Username == "":
		return &domain.FieldError{Field: "username", Message: "username is required"}
	case reg.Email == "":
		return &domain.FieldError{Field: "email", Message: "email is required"}
	case reg.Password == "":
		return &domain.FieldError{Field: "password", Message: "password is required"}
	case !reg.Role.Valid():
		return &domain.FieldError{Field: "role", Message: fmt.Sprintf("unknown role %q", reg.Role)}
	case reg.Role == domain.RoleAdmin && reg.InviteToken == "":
		return &domain.FieldError{Field: "invite_token", Message: "an invite token is required to register as admin"}
	}
	return nil
}

// begin serialises auth calls: one attempt at a time per store.
func (s *SessionStore) begin(op authOp, validate func() error) (*attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		metrics.AuthAttemptsTotal.WithLabelValues(string(op), "concurrent").Inc()
		return nil, domain.ErrConcurrentAuthAttempt
	}
	if err := validate(); err != nil {
		s.state.LastError = describeAuthError(op, err)
		metrics.AuthAttemptsTotal.WithLabelValues(string(op), "validation").Inc()
		return nil, err
	}

	a := &attempt{op: op}
	s.pending = a
	s.state.IsLoading = true
	s.state.LastError = ""
	return a, nil
}

// finish applies the outcome of attempt a, unless a logout superseded it.
func (s *SessionStore) finish(ctx context.Context, a *attempt, fallbackName string, payload *ports.AuthPayload, callErr error) error {
	err := callErr
	var id *domain.Identity
	if err == nil {
		id, err = identityFromPayload(payload, fallbackName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != a {
		metrics.AuthAttemptsTotal.WithLabelValues(string(a.op), "stale").Inc()
		s.log.Info().Str("operation", string(a.op)).Str("reason", "stale").Msg("discarding auth response")
		return domain.ErrStaleResponse
	}
	s.pending = nil
	s.state.IsLoading = false

	if err == nil {
		if saveErr := s.storage.Save(ctx, id); saveErr != nil {
			err = fmt.Errorf("persist identity: %w", saveErr)
		}
	}

	if err != nil {
		reason := authFailureReason(err)
		s.state.LastError = describeAuthError(a.op, err)
		metrics.AuthAttemptsTotal.WithLabelValues(string(a.op), reason).Inc()
		s.log.Warn().Err(err).Str("operation", string(a.op)).Str("reason", reason).Msg("authentication failed")
		return err
	}

	s.state.Identity = id
	s.state.LastError = ""
	metrics.AuthAttemptsTotal.WithLabelValues(string(a.op), "success").Inc()
	s.log.Info().
		Str("operation", string(a.op)).
		Str("username", id.Username).
		Str("role", id.Role.String()).
		Msg("session established")
	return nil
}

// Logout tears the session down. When nothing is logged in it only resets the
// transient status and never touches storage.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teardown(ctx, "user")
}

// InvalidateToken logs out only if token is still the active credential, so
// a late 401 for an older identity cannot end a newer session.
func (s *SessionStore) InvalidateToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Identity == nil || s.state.Identity.Token != token {
		return nil
	}
	return s.teardown(ctx, "token_rejected")
}

// teardown must be called with s.mu held.
func (s *SessionStore) teardown(ctx context.Context, cause string) error {
	s.pending = nil
	s.state.IsLoading = false
	s.state.LastError = ""

	if s.state.Identity == nil {
		return nil
	}
	if err := s.storage.Clear(ctx); err != nil {
		s.log.Error().Err(err).Str("cause", cause).Msg("failed to clear persisted identity")
		return fmt.Errorf("clear persisted identity: %w", err)
	}

	s.log.Info().Str("username", s.state.Identity.Username).Str("cause", cause).Msg("session ended")
	s.state.Identity = nil
	metrics.LogoutsTotal.WithLabelValues(cause).Inc()
	return nil
}

// CurrentRole reports the role of the logged-in identity.
func (s *SessionStore) CurrentRole() (domain.Role, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Role()
}

// State returns a copy of the session state.
func (s *SessionStore) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Identity = s.state.Identity.Clone()
	return st
}

// identityFromPayload enforces the identity invariant on a backend answer.
func identityFromPayload(p *ports.AuthPayload, fallbackName string) (*domain.Identity, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: empty payload", domain.ErrAuthResponseInvalid)
	}
	role, err := domain.ParseRole(p.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: role %q", domain.ErrAuthResponseInvalid, p.Role)
	}
	if p.Token == "" {
		return nil, fmt.Errorf("%w: missing token", domain.ErrAuthResponseInvalid)
	}

	id := &domain.Identity{
		ID:       p.ID,
		Username: p.Username,
		Role:     role,
		Token:    p.Token,
	}
	if id.ID == "" {
		id.ID = tokenSubject(p.Token)
	}
	if id.Username == "" {
		id.Username = fallbackName
	}
	return id, id.Validate()
}

func authFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuthResponseInvalid):
		return "invalid_response"
	case errors.Is(err, domain.ErrAuthRejected):
		return "rejected"
	case errors.Is(err, domain.ErrTransportFailure):
		return "transport"
	default:
		return "storage"
	}
}

// describeAuthError turns an auth failure into the message shown next to the
// form. Invalid responses read like rejections on purpose.
func describeAuthError(op authOp, err error) string {
	var fe *domain.FieldError
	if errors.As(err, &fe) {
		return fe.Message
	}
	var be *domain.BackendError
	switch {
	case errors.Is(err, domain.ErrConcurrentAuthAttempt):
		return msgPleaseWait
	case errors.Is(err, domain.ErrAuthRejected) && errors.As(err, &be) && be.Message != "":
		return be.Message
	case errors.Is(err, domain.ErrAuthRejected), errors.Is(err, domain.ErrAuthResponseInvalid):
		return op.failText()
	case errors.Is(err, domain.ErrTransportFailure):
		return msgUnreachable
	default:
		return msgStorage
	}
}

// tokenExpired peeks at a JWT-shaped token's exp claim. Opaque tokens never
// expire locally; the backend decides.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}

// tokenSubject extracts the sub claim of a JWT-shaped token, used when the
// login response omits the user id. Flask-JWT style integer subjects are
// accepted too.
func tokenSubject(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	switch sub := claims["sub"].(type) {
	case string:
		return sub
	case float64:
		return strconv.FormatInt(int64(sub), 10)
	}
	return ""
}
