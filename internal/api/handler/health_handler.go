package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/myduka/web-frontend/internal/core/ports"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	storage ports.StorageProvider
	backend Pinger
}

// Pinger is anything the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

func NewHealthHandler(storage ports.StorageProvider, backend Pinger) *HealthHandler {
	return &HealthHandler{storage: storage, backend: backend}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Liveness confirms the process is alive.
//
// @Summary  Liveness probe
// @Tags     health
// @Success  200
// @Router   /health [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Readiness checks session storage and the backend API. Storage is required;
// an unreachable backend only degrades the answer since sessions still load.
//
// @Summary  Readiness probe
// @Tags     health
// @Success  200  {object}  readinessResponse
// @Failure  503  {object}  readinessResponse
// @Router   /health/ready [get]
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus)
	status := "ok"
	httpStatus := http.StatusOK

	if err := h.storage.Ping(ctx); err != nil {
		deps[h.storage.Name()] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
		status = "unavailable"
		httpStatus = http.StatusServiceUnavailable
	} else {
		deps[h.storage.Name()] = dependencyStatus{Status: "ok"}
	}

	if h.backend != nil {
		if err := h.backend.Ping(ctx); err != nil {
			deps["backend"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			if httpStatus == http.StatusOK {
				status = "degraded"
			}
		} else {
			deps["backend"] = dependencyStatus{Status: "ok"}
		}
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
