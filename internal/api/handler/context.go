package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/myduka/web-frontend/internal/api/middleware"
	"github.com/myduka/web-frontend/internal/core/domain"
	"github.com/myduka/web-frontend/internal/core/ports"
)

// ctxSession extracts the store attached by the Session middleware. A nil
// store means the route was wired without it, which is a server bug.
func ctxSession(c echo.Context) (ports.SessionStore, error) {
	store := middleware.SessionFrom(c)
	if store == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}
	return store, nil
}

// ctxRoute extracts the decision attached by the Gate middleware.
func ctxRoute(c echo.Context) (domain.RouteDecision, error) {
	d, ok := middleware.RouteFrom(c)
	if !ok {
		return domain.RouteDecision{}, echo.NewHTTPError(http.StatusInternalServerError, "route decision unavailable")
	}
	return d, nil
}
