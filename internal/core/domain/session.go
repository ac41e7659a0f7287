package domain

// SessionState is a snapshot of what one SessionStore holds. The store is
// its only writer; everyone else gets copies.
type SessionState struct {
	Identity  *Identity `json:"identity,omitempty"`
	IsLoading bool      `json:"is_loading"`
	LastError string    `json:"last_error,omitempty"`
}

// Role returns the role of the logged-in identity, if any.
func (s SessionState) Role() (Role, bool) {
	if s.Identity == nil {
		return "", false
	}
	return s.Identity.Role, true
}

// Credentials carries a login attempt.
type Credentials struct {
	UsernameOrEmail string
	Password        string
}

// Registration carries a sign-up attempt. InviteToken is mandatory for admins.
type Registration struct {
	Username    string
	Email       string
	Password    string
	Role        Role
	InviteToken string
}
