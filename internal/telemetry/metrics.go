// Package telemetry provides application-level observability for the
// component registry: structured logging setup and Prometheus metrics.
//
// All metrics register against the default Prometheus registry and are served
// on a side-channel HTTP port (default 9090, configurable via
// OONKOO_TELEMETRY_METRICS_PROMETHEUS_PORT) started by cmd/server. The scrape
// path stays off the public ingress that way.
//
// HTTP metrics use c.FullPath() (route template such as /registry/:slug)
// rather than the raw URL to keep label cardinality bounded; component
// download metrics are labelled by type and tier for the same reason — never
// by slug.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics — labelled by method, route template, and status code.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Registry metrics — recorded by the component index and download handlers.
var (
	ComponentFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "component_fetches_total",
			Help: "Total number of full component descriptor fetches, by component type and tier.",
		},
		[]string{"type", "tier"},
	)

	IndexQueriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "index_queries_total",
			Help: "Total number of component index queries served.",
		},
	)
)

// CLI auth handshake metrics — recorded by the /auth/cli handlers.
//
// A sustained gap between started and completed sessions indicates users are
// abandoning the browser sign-in, or that the storefront's completion call is
// failing. expired counts sessions whose token was never collected.
var (
	CLISessionsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cli_sessions_started_total",
			Help: "Total number of CLI login sessions created.",
		},
	)

	CLISessionsCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cli_sessions_completed_total",
			Help: "Total number of CLI login sessions completed by a browser sign-in.",
		},
	)

	TokenVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_verifications_total",
			Help: "Total number of bearer token verifications, by result (ok, bad_format, unknown, expired).",
		},
		[]string{"result"},
	)
)

// DBOpenConnections tracks the number of open connections currently held by
// the sql.DB pool. Sampled every 30 seconds by StartDBStatsCollector rather
// than per-request to avoid the overhead of sql.DB.Stats().
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector launches a background goroutine that samples sql.DB
// connection pool statistics every 30 seconds and updates DBOpenConnections.
// The goroutine exits when the database becomes unreachable, which happens
// automatically when the application shuts down and defers db.Close().
//
// Call this once, immediately after db.Connect() succeeds in cmd/server.
func StartDBStatsCollector(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.Ping(); err != nil {
				slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
				return
			}
			DBOpenConnections.Set(float64(db.Stats().OpenConnections))
		}
	}()
}
