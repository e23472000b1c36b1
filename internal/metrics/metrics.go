// Package metrics provides Prometheus instrumentation for the hedging engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RebalancesTotal counts rebalance evaluations by outcome.
	RebalancesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dn_rebalances_total",
		Help: "Total rebalance evaluations by action (increase, decrease, skip)",
	}, []string{"action"})

	// RebalanceFailures counts aborted rebalance operations by reason.
	RebalanceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dn_rebalance_failures_total",
		Help: "Rebalance operations aborted by a failed precondition",
	}, []string{"reason"})

	// RebalanceLatency observes end-to-end rebalance duration.
	RebalanceLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dn_rebalance_latency_seconds",
		Help:    "Rebalance operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// PoolExposure tracks the current base-asset exposure per pool.
	PoolExposure = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dn_pool_exposure_units",
		Help: "Tracked base-asset exposure per pool (native units)",
	}, []string{"pool_id"})

	// OrdersSubmitted counts corrective orders accepted by the venue.
	OrdersSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dn_orders_submitted_total",
		Help: "Corrective orders accepted by the position venue",
	}, []string{"direction"})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dn_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dn_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dn_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Use the raw path for the label; the API surface is small enough
		// that cardinality stays bounded.
		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
