package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/myduka/web-frontend/internal/core/domain"
)

// AuthHandler drives the session store of the calling browser.
type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Login signs the browser session in.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorBody
// @Failure      401   {object}  errorBody
// @Failure      409   {object}  errorBody
// @Failure      502   {object}  errorBody
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	store, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err = store.Login(c.Request().Context(), domain.Credentials{
		UsernameOrEmail: req.UsernameOrEmail,
		Password:        req.Password,
	})
	if err != nil {
		return authFailure(err, store.State())
	}
	return c.JSON(http.StatusOK, toSessionResponse(store.State()))
}

// Register creates an account and signs the browser session in with it.
// On /auth/register_with_token/:token the path token is the invitation.
//
// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body   body      registerRequest  true   "Registration details"
// @Param        token  path      string           false  "Admin invitation token"
// @Success      201    {object}  sessionResponse
// @Failure      400    {object}  errorBody
// @Failure      401    {object}  errorBody
// @Failure      409    {object}  errorBody
// @Failure      502    {object}  errorBody
// @Router       /auth/register [post]
// @Router       /auth/register_with_token/{token} [post]
func (h *AuthHandler) Register(c echo.Context) error {
	store, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if token := c.Param("token"); token != "" {
		req.InviteToken = token
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err = store.Register(c.Request().Context(), domain.Registration{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Role:        domain.Role(req.Role),
		InviteToken: req.InviteToken,
	})
	if err != nil {
		return authFailure(err, store.State())
	}
	return c.JSON(http.StatusCreated, toSessionResponse(store.State()))
}

// Logout ends the browser session. Logging out twice is not an error.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Failure      500  {object}  errorBody
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	store, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := store.Logout(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Session reports the current session state.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	store, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(store.State()))
}

// authFailure prefers the message the store recorded for the form.
func authFailure(err error, st domain.SessionState) error {
	status, msg, _ := StatusFor(err)
	if st.LastError != "" {
		msg = st.LastError
	}
	return echo.NewHTTPError(status, msg).SetInternal(err)
}
