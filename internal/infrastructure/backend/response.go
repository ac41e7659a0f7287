package backend

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/myduka/web-frontend/internal/core/ports"
)

// flexID accepts both numeric and string identifiers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*f = flexID(strconv.FormatInt(i, 10))
		return nil
	}
	*f = flexID(n.String())
	return nil
}

type authUser struct {
	ID       flexID `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// authResponse covers the shapes seen from the backends: a flat user with
// "token", a nested "user" object, or only "access_token" and "role".
type authResponse struct {
	authUser
	Token       string    `json:"token"`
	AccessToken string    `json:"access_token"`
	User        *authUser `json:"user"`
}

func (r authResponse) payload() *ports.AuthPayload {
	p := &ports.AuthPayload{
		ID:       string(r.ID),
		Username: r.Username,
		Role:     r.Role,
		Token:    r.Token,
	}
	if p.Token == "" {
		p.Token = r.AccessToken
	}
	if u := r.User; u != nil {
		if u.ID != "" {
			p.ID = string(u.ID)
		}
		if u.Username != "" {
			p.Username = u.Username
		}
		if u.Role != "" {
			p.Role = u.Role
		}
	}
	return p
}
