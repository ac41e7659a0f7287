package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/myduka/web-frontend/internal/core/domain"
	"github.com/myduka/web-frontend/internal/core/ports"
	"github.com/myduka/web-frontend/internal/pkg/metrics"
)

const ctxRoute = "route"

// Gate evaluates every GET navigation against the session snapshot taken for
// this request. Denials become 302 redirects; allowed decisions are attached
// to the context for the view handler. Must run after Session.
func Gate(g ports.Gate, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}

			store := SessionFrom(c)
			if store == nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "session middleware missing")
			}
			state := store.State()

			d := g.Evaluate(c.Request().URL.Path, state)
			metrics.RouteDecisionsTotal.WithLabelValues(d.Outcome.String()).Inc()

			if !d.Allowed() {
				log.Debug().
					Str("path", c.Request().URL.Path).
					Str("state", g.StateOf(state).String()).
					Str("outcome", d.Outcome.String()).
					Str("location", d.Location).
					Msg("navigation redirected")
				return c.Redirect(http.StatusFound, d.Location)
			}

			c.Set(ctxRoute, d)
			return next(c)
		}
	}
}

// RouteFrom returns the decision attached by Gate.
func RouteFrom(c echo.Context) (domain.RouteDecision, bool) {
	d, ok := c.Get(ctxRoute).(domain.RouteDecision)
	return d, ok
}
