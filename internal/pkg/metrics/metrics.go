// Package metrics defines and registers the Prometheus metrics of the MyDuka
// web front-end. Metric names, labels and help strings live here only.
//
// All collectors use promauto and therefore register with the default
// registry on package init; /metrics serves that registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "myduka_web"

// ── Session metrics ──────────────────────────────────────────────────────────

// AuthAttemptsTotal counts login/register attempts by outcome.
// Labels:
//   - operation: "login" or "register"
//   - outcome: "success", "validation", "concurrent", "rejected",
//     "invalid_response", "transport", "storage", "stale"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of login/register attempts, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// LogoutsTotal counts session teardowns.
// Label:
//   - cause: "user" (explicit logout) or "token_rejected" (backend 401)
var LogoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of sessions torn down, by cause.",
	},
	[]string{"cause"},
)

// ActiveSessions tracks the session stores currently held by the registry.
var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Number of browser sessions with a live session store.",
	},
)

// ── Routing metrics ──────────────────────────────────────────────────────────

// RouteDecisionsTotal counts gate evaluations.
// Label:
//   - outcome: "allow", "redirect_login", "redirect_default"
var RouteDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "route_decisions_total",
		Help:      "Total number of navigation decisions made by the gate.",
	},
	[]string{"outcome"},
)

// ── Backend / HTTP metrics ───────────────────────────────────────────────────

// BackendRequestDuration measures calls to the backend API.
// Labels:
//   - method: HTTP method
//   - status: HTTP status code, or "error" on transport failure
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of requests made to the backend API.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "status"},
)

// HTTPRequestsTotal counts inbound requests by route template.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests served, by method, route and status.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures inbound request latency by route template.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests served, by method and route.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)
