package handler

import (
	"encoding/json"

	"github.com/myduka/web-frontend/internal/core/domain"
)

// --- Request types ---

type loginRequest struct {
	UsernameOrEmail string `json:"username_or_email" validate:"max=254"`
	Password        string `json:"password" validate:"max=128"`
}

type registerRequest struct {
	Username    string `json:"username" validate:"max=64"`
	Email       string `json:"email" validate:"omitempty,email,max=254"`
	Password    string `json:"password" validate:"max=128"`
	Role        string `json:"role" validate:"max=16"`
	InviteToken string `json:"invite_token,omitempty" validate:"max=512"`
}

// --- Response types ---

// userView is the identity as the browser sees it. The backend token stays
// on the server.
type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type sessionResponse struct {
	Authenticated bool      `json:"authenticated"`
	User          *userView `json:"user,omitempty"`
	IsLoading     bool      `json:"is_loading"`
	LastError     string    `json:"last_error,omitempty"`
	Home          string    `json:"home,omitempty"`
}

type viewResponse struct {
	View    string            `json:"view"`
	Vars    map[string]string `json:"vars,omitempty"`
	Session sessionResponse   `json:"session"`
	Data    json.RawMessage   `json:"data"`
}

type errorBody struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

func toSessionResponse(st domain.SessionState) sessionResponse {
	resp := sessionResponse{IsLoading: st.IsLoading, LastError: st.LastError}
	if st.Identity != nil {
		resp.Authenticated = true
		resp.User = &userView{
			ID:       st.Identity.ID,
			Username: st.Identity.Username,
			Role:     st.Identity.Role.String(),
		}
		resp.Home = st.Identity.Role.DashboardRoot()
	}
	return resp
}
