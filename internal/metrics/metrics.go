// Package metrics registers the web front's Prometheus metrics with the
// default registry. They are served by promhttp at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "elite_decor_web"

// BackendRequestsTotal counts calls to the remote REST backend.
// Labels: endpoint (route template, e.g. "GET /services/:id"), outcome
// ("ok", "not_found", "client_error", "server_error", "timeout", "network").
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of calls to the REST backend.",
	},
	[]string{"endpoint", "outcome"},
)

var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Latency of calls to the REST backend.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint"},
)

// GuardDecisionsTotal counts route guard outcomes by state.
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Route guard decisions, labelled by resulting state.",
	},
	[]string{"state"},
)

// PaymentVerificationsTotal counts verify-payment lookups against the
// idempotency ledger. result is "hit" (outcome reused), "miss" (backend
// called) or "shared" (joined an in-flight call).
var PaymentVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_verifications_total",
		Help:      "Payment verification requests, labelled by ledger result.",
	},
	[]string{"result"},
)

// SearchDispatchesTotal counts live search dispatches; result is "applied"
// or "discarded" (a newer generation superseded it).
var SearchDispatchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_dispatches_total",
		Help:      "Live catalog search dispatches, labelled by result.",
	},
	[]string{"result"},
)

var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Session contexts currently held in memory.",
	},
)

var RealtimeConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "realtime_connections",
		Help:      "Open websocket connections.",
	},
)
