package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/myduka/web-frontend/docs"
	"github.com/myduka/web-frontend/internal/api/handler"
	"github.com/myduka/web-frontend/internal/api/middleware"
	"github.com/myduka/web-frontend/internal/core/ports"
)

// Deps is everything the HTTP layer needs, built by cmd/server.
type Deps struct {
	Session   middleware.SessionConfig
	Registry  ports.SessionRegistry
	Gate      ports.Gate
	Dashboard ports.DashboardService
	Storage   ports.StorageProvider
	Backend   handler.Pinger

	AuthRateLimit float64
	AuthRateBurst int

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.Metrics())

	// --- Dependencies ---
	session := middleware.Session(d.Session, d.Registry)
	gate := middleware.Gate(d.Gate, d.Log)
	rbac := middleware.RBAC()
	throttle := middleware.RateLimit(d.AuthRateLimit, d.AuthRateBurst)

	authHandler := handler.NewAuthHandler()
	viewHandler := handler.NewViewHandler(d.Gate, d.Dashboard, d.Log)
	healthHandler := handler.NewHealthHandler(d.Storage, d.Backend)

	// --- Public views ---
	e.GET("/", viewHandler.Public, session, gate)
	e.GET("/login", viewHandler.Public, session, gate)
	e.GET("/register", viewHandler.Public, session, gate)
	e.GET("/register_with_token/:token", viewHandler.Public, session, gate)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login, session, throttle)
	e.POST("/auth/register", authHandler.Register, session, throttle)
	e.POST("/auth/register_with_token/:token", authHandler.Register, session, throttle)
	e.POST("/auth/logout", authHandler.Logout, session)
	e.GET("/auth/session", authHandler.Session, session)

	// --- Dashboards ---
	e.GET("/dashboard", viewHandler.Dashboard, session, gate)
	e.GET("/dashboard/:role", viewHandler.Dashboard, session, gate)
	e.GET("/dashboard/:role/*", viewHandler.Dashboard, session, gate)
	e.POST("/dashboard/:role/*", viewHandler.Submit, session, rbac)

	// --- Health probes, metrics, docs (no session) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – is session storage up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Unknown navigations still go through the gate so they redirect.
	e.RouteNotFound("/*", viewHandler.Fallback, session, gate)

	return e
}
