// Package backend is the HTTP client for the MyDuka backend API. It is the
// only place that knows the backend's URLs and response shapes.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/myduka/web-frontend/internal/core/domain"
	"github.com/myduka/web-frontend/internal/core/ports"
	"github.com/myduka/web-frontend/internal/pkg/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// Config captures the backend location and per-request timeout.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks JSON over HTTP(S) to the backend. A single attempt is made
// per call; there is no retry.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

var (
	_ ports.APIClient      = (*Client)(nil)
	_ ports.ResourceClient = (*Client)(nil)
)

func New(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type loginRequest struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	InviteToken string `json:"invite_token,omitempty"`
}

// Login posts credentials to /login. Backends key users either by email or
// by username, so the identifier goes in whichever field its shape suggests.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*ports.AuthPayload, error) {
	req := loginRequest{Password: creds.Password}
	if strings.Contains(creds.UsernameOrEmail, "@") {
		req.Email = creds.UsernameOrEmail
	} else {
		req.Username = creds.UsernameOrEmail
	}
	return c.authenticate(ctx, "/login", req)
}

// Register posts a sign-up to /register.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (*ports.AuthPayload, error) {
	return c.authenticate(ctx, "/register", registerRequest{
		Username:    reg.Username,
		Email:       reg.Email,
		Password:    reg.Password,
		Role:        reg.Role.String(),
		InviteToken: reg.InviteToken,
	})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*ports.AuthPayload, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", path, err)
	}

	status, resp, err := c.do(ctx, http.MethodPost, path, "", raw)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthRejected, backendError(status, resp))
	}

	var ar authResponse
	if err := json.Unmarshal(resp, &ar); err != nil {
		return nil, fmt.Errorf("%w: decode %s response: %w", domain.ErrAuthResponseInvalid, path, err)
	}
	return ar.payload(), nil
}

// Do performs an authenticated call for a dashboard screen and returns the
// raw JSON answer. A 401 is reported as domain.ErrTokenRejected.
func (c *Client) Do(ctx context.Context, method, path, token string, body json.RawMessage) (json.RawMessage, error) {
	status, resp, err := c.do(ctx, method, path, token, body)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenRejected, backendError(status, resp))
	}
	if status < 200 || status >= 300 {
		return nil, backendError(status, resp)
	}
	if len(bytes.TrimSpace(resp)) == 0 {
		return nil, nil
	}
	if !json.Valid(resp) {
		return nil, fmt.Errorf("%s %s: backend returned non-JSON body", method, path)
	}
	return json.RawMessage(resp), nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body []byte) (int, []byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.BackendRequestDuration.WithLabelValues(method, "error").Observe(time.Since(start).Seconds())
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("backend request failed")
		return 0, nil, fmt.Errorf("%w: %s %s: %w", domain.ErrTransportFailure, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	metrics.BackendRequestDuration.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read %s %s: %w", domain.ErrTransportFailure, method, path, err)
	}

	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("backend request")
	return resp.StatusCode, data, nil
}

// backendError extracts the human-readable message backends put in either
// "message" or "error".
func backendError(status int, body []byte) *domain.BackendError {
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &env)
	msg := env.Message
	if msg == "" {
		msg = env.Error
	}
	return &domain.BackendError{StatusCode: status, Message: msg}
}

// Ping reports whether the backend answers HTTP at all. Any status counts.
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.do(ctx, http.MethodGet, "/", "", nil)
	return err
}
