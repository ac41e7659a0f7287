package domain

import "fmt"

// Identity is the authenticated principal of one browser session.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Token    string `json:"token"`
}

// Validate enforces the identity invariant: a known role and a non-empty
// credential token.
func (i *Identity) Validate() error {
	if i == nil {
		return fmt.Errorf("%w: identity is nil", ErrAuthResponseInvalid)
	}
	if !i.Role.Valid() {
		return fmt.Errorf("%w: role %q", ErrAuthResponseInvalid, i.Role)
	}
	if i.Token == "" {
		return fmt.Errorf("%w: empty credential token", ErrAuthResponseInvalid)
	}
	return nil
}

// Clone returns a detached copy so readers never share the owner's pointer.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}
