// Package metrics defines and registers all custom Prometheus metrics for
// the portal gateway. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at import time via
// promauto; the scrape endpoint is mounted by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal_gateway"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionVerificationsTotal counts completed session verifications.
// Labels:
//   - role: customer, vendor, client, admin
//   - result: "authenticated", "unauthenticated"
var SessionVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_verifications_total",
		Help:      "Total number of session verifications, by role and result.",
	},
	[]string{"role", "result"},
)

// SessionClearsTotal counts stored sessions removed by the gateway.
// Labels:
//   - role: customer, vendor, client, admin
//   - reason: "logout", "rejected", "expired", "network_error", "impersonation_return"
var SessionClearsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_clears_total",
		Help:      "Total number of stored sessions cleared, by role and reason.",
	},
	[]string{"role", "reason"},
)

// ── Tenant metrics ────────────────────────────────────────────────────────────

// TenantResolutionsTotal counts tenant resolutions by winning source.
// Label:
//   - source: "path-slug", "query-client-param", "invite-code", "host-subdomain", "unresolved"
var TenantResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tenant_resolutions_total",
		Help:      "Total number of tenant resolutions, by winning source.",
	},
	[]string{"source"},
)

// ── Impersonation metrics ─────────────────────────────────────────────────────

// ImpersonationsTotal counts admin impersonation exchanges.
// Label:
//   - result: "success", "denied", "error"
var ImpersonationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "impersonations_total",
		Help:      "Total number of admin impersonation exchanges, by result.",
	},
	[]string{"result"},
)

// ── Backend dispatch metrics ──────────────────────────────────────────────────

// BackendRequestDuration measures outbound backend call latency.
// Labels:
//   - role: the role whose token authorized the call
//   - status: HTTP status class ("2xx", "4xx", "5xx") or "error"
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of outbound requests to the marketplace backend.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"role", "status"},
)
