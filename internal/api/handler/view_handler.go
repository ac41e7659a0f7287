package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/myduka/web-frontend/internal/core/domain"
	"github.com/myduka/web-frontend/internal/core/ports"
)

const maxSubmitBody = 1 << 20

// ViewHandler renders the view models of gated navigations and forwards
// dashboard actions to the backend.
type ViewHandler struct {
	gate      ports.Gate
	dashboard ports.DashboardService
	log       zerolog.Logger
}

func NewViewHandler(gate ports.Gate, dashboard ports.DashboardService, log zerolog.Logger) *ViewHandler {
	return &ViewHandler{gate: gate, dashboard: dashboard, log: log}
}

// Public renders a public page: home, login, registration, invitation.
//
// @Summary      Public view
// @Tags         views
// @Produce      json
// @Success      200  {object}  viewResponse
// @Router       /login [get]
func (h *ViewHandler) Public(c echo.Context) error {
	store, err := ctxSession(c)
	if err != nil {
		return err
	}
	d, err := ctxRoute(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, viewResponse{
		View:    d.ViewKey,
		Vars:    d.Vars,
		Session: toSessionResponse(store.State()),
		Data:    nil,
	})
}

// Dashboard renders a dashboard view with the data its screen reads.
//
// @Summary      Dashboard view
// @Tags         views
// @Produce      json
// @Param        role  path      string  true  "admin, merchant or clerk"
// @Success      200   {object}  viewResponse
// @Success      302
// @Failure      502   {object}  errorBody
// @Router       /dashboard/{role} [get]
func (h *ViewHandler) Dashboard(c echo.Context) error {
	store, err := ctxSession(c)
	if err != nil {
		return err
	}
	d, err := ctxRoute(c)
	if err != nil {
		return err
	}

	st := store.State()
	vars := withQuery(d.Vars, c)
	data, err := h.dashboard.Load(c.Request().Context(), st.Identity, d.ViewKey, vars)
	if err != nil {
		if errors.Is(err, domain.ErrTokenRejected) {
			h.invalidate(c, store, st)
			return c.Redirect(http.StatusFound, domain.LoginPath)
		}
		return err
	}

	return c.JSON(http.StatusOK, viewResponse{
		View:    d.ViewKey,
		Vars:    d.Vars,
		Session: toSessionResponse(st),
		Data:    data,
	})
}

// Submit forwards a dashboard form to the backend resource behind the view.
//
// @Summary      Dashboard action
// @Tags         views
// @Accept       json
// @Produce      json
// @Param        role  path      string  true  "admin, merchant or clerk"
// @Success      200   {object}  viewResponse
// @Failure      400   {object}  errorBody
// @Failure      401   {object}  errorBody
// @Failure      403   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Router       /dashboard/{role}/{view} [post]
func (h *ViewHandler) Submit(c echo.Context) error {
	store, err := ctxSession(c)
	if err != nil {
		return err
	}

	st := store.State()
	d := h.gate.Evaluate(c.Request().URL.Path, st)
	if !d.Allowed() {
		return domain.ErrUnknownView
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxSubmitBody))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(body) > 0 && !json.Valid(body) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	data, err := h.dashboard.Submit(c.Request().Context(), st.Identity, d.ViewKey, withQuery(d.Vars, c), body)
	if err != nil {
		if errors.Is(err, domain.ErrTokenRejected) {
			h.invalidate(c, store, st)
			return c.JSON(http.StatusUnauthorized, errorBody{Error: "your session has expired, please sign in again", Redirect: domain.LoginPath})
		}
		return err
	}

	return c.JSON(http.StatusOK, viewResponse{
		View:    d.ViewKey,
		Vars:    d.Vars,
		Session: toSessionResponse(store.State()),
		Data:    data,
	})
}

func (h *ViewHandler) invalidate(c echo.Context, store ports.SessionStore, st domain.SessionState) {
	if st.Identity == nil {
		return
	}
	if err := store.InvalidateToken(c.Request().Context(), st.Identity.Token); err != nil {
		h.log.Error().Err(err).Msg("could not end session after token rejection")
	}
}

// withQuery adds single-valued query parameters to the path variables.
// Path variables win.
func withQuery(vars map[string]string, c echo.Context) map[string]string {
	q := c.QueryParams()
	if len(q) == 0 {
		return vars
	}
	out := make(map[string]string, len(vars)+len(q))
	for k, v := range q {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	for k, v := range vars {
		out[k] = v
	}
	return out
}

// Fallback answers paths no route claims. GET navigations never reach it
// because the gate redirects them first.
func (h *ViewHandler) Fallback(c echo.Context) error {
	return echo.ErrNotFound
}
