package middleware

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/myduka/web-frontend/internal/core/ports"
)

// CookieName is the browser session cookie. It carries a signed token whose
// jti is the session id; it never carries the backend credential.
const CookieName = "myduka_sid"

const (
	ctxSessionID = "session_id"
	ctxSession   = "session"
)

// SessionConfig configures the session cookie.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

// Session resolves the browser session from its cookie, minting a new one
// when the cookie is missing, expired or forged, and attaches the session's
// store to the context for the duration of the request.
func Session(cfg SessionConfig, registry ports.SessionRegistry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, ok := sessionIDFromCookie(c.Request(), cfg.Secret)
			if !ok {
				var err error
				sid, err = issueSession(c, cfg)
				if err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "could not start session").SetInternal(err)
				}
			}

			store := registry.Acquire(c.Request().Context(), sid)
			defer registry.Release(sid)

			c.Set(ctxSessionID, sid)
			c.Set(ctxSession, store)
			return next(c)
		}
	}
}

// SessionFrom returns the store attached by Session, or nil.
func SessionFrom(c echo.Context) ports.SessionStore {
	s, _ := c.Get(ctxSession).(ports.SessionStore)
	return s
}

// SessionIDFrom returns the session id attached by Session.
func SessionIDFrom(c echo.Context) string {
	sid, _ := c.Get(ctxSessionID).(string)
	return sid
}

func sessionIDFromCookie(r *http.Request, secret string) (string, bool) {
	ck, err := r.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return "", false
	}

	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(ck.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !tkn.Valid {
		return "", false
	}

	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func issueSession(c echo.Context, cfg SessionConfig) (string, error) {
	sid := uuid.NewString()
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
	})
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", err
	}

	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sid, nil
}
