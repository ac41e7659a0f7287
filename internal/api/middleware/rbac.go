package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/myduka/web-frontend/internal/core/domain"
)

// RBAC guards dashboard actions: the caller must be signed in and the
// ":role" path segment must equal the session role. Must run after Session.
func RBAC() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			store := SessionFrom(c)
			if store == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not signed in"})
			}
			role, ok := store.CurrentRole()
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not signed in"})
			}

			scope, err := domain.ParseRole(c.Param("role"))
			if err != nil || scope != role {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
