// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Node Metrics
	NodeRunning = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodekeeper_node_running",
			Help: "Whether the node process is currently running (1) or not (0)",
		},
		[]string{"node"},
	)

	NodeStarts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodekeeper_node_starts_total",
			Help: "Total number of node start attempts",
		},
		[]string{"node", "result"}, // result: "started", "already_running", "failed"
	)

	NodeStops = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodekeeper_node_stops_total",
			Help: "Total number of node stop attempts",
		},
		[]string{"node", "result"}, // result: "stopped", "not_running", "failed"
	)

	NodeExits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodekeeper_node_exits_total",
			Help: "Total number of observed node process exits by exit code",
		},
		[]string{"node", "code"},
	)

	NodeLogLines = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodekeeper_node_log_lines_total",
			Help: "Total number of output lines captured from node processes",
		},
		[]string{"node"},
	)

	NodeStartedAt = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodekeeper_node_started_timestamp_seconds",
			Help: "Unix time the node's current process was started (0 when not running)",
		},
		[]string{"node"},
	)

	// Wire Server Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodekeeper_http_requests_total",
			Help: "Total number of requests answered by the control API",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nodekeeper_http_request_duration_seconds",
			Help:    "Control API request handling duration in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "route"},
	)

	HTTPActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nodekeeper_http_connections_active",
			Help: "Number of control API connections currently being served",
		},
	)

	HTTPParseErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nodekeeper_http_parse_errors_total",
			Help: "Total number of requests rejected as malformed",
		},
	)

	HTTPAcceptThrottled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nodekeeper_http_accept_throttled_total",
			Help: "Total number of accepted connections delayed by the admission limiter",
		},
	)

	// Proxy Metrics
	ProxyRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodekeeper_proxy_requests_total",
			Help: "Total number of owner/foreign API calls forwarded to a node",
		},
		[]string{"kind", "result"}, // result: "relayed", "no_node", "upstream_error"
	)

	ProxyUpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nodekeeper_proxy_upstream_duration_seconds",
			Help:    "Round trip time of forwarded node API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Eraser Metrics
	DataDirDeletes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodekeeper_data_dir_deletes_total",
			Help: "Total number of node data directory deletions",
		},
		[]string{"node", "result"}, // result: "removed", "emptied", "failed", "refused"
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordNodeStart records the outcome of a start call.
func RecordNodeStart(node, result string) {
	NodeStarts.WithLabelValues(node, result).Inc()
}

// RecordNodeStop records the outcome of a stop call.
func RecordNodeStop(node, result string) {
	NodeStops.WithLabelValues(node, result).Inc()
}

// RecordNodeExit records a process exit and clears the running gauge.
func RecordNodeExit(node string, code int) {
	NodeExits.WithLabelValues(node, strconv.Itoa(code)).Inc()
	NodeRunning.WithLabelValues(node).Set(0)
	NodeStartedAt.WithLabelValues(node).Set(0)
}

// SetNodeRunning marks a node as running since startedAt.
func SetNodeRunning(node string, startedAt time.Time) {
	NodeRunning.WithLabelValues(node).Set(1)
	NodeStartedAt.WithLabelValues(node).Set(float64(startedAt.Unix()))
}

// RecordLogLines adds n captured output lines for node.
func RecordLogLines(node string, n int) {
	if n > 0 {
		NodeLogLines.WithLabelValues(node).Add(float64(n))
	}
}

// RecordAPIRequest records a control API request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveConnection tracks connections being served.
func TrackActiveConnection(inc bool) {
	if inc {
		HTTPActiveConnections.Inc()
	} else {
		HTTPActiveConnections.Dec()
	}
}

// RecordProxyRequest records a forwarded call. duration is zero when no
// upstream call was made.
func RecordProxyRequest(kind, result string, duration time.Duration) {
	ProxyRequests.WithLabelValues(kind, result).Inc()
	if duration > 0 {
		ProxyUpstreamDuration.WithLabelValues(kind).Observe(duration.Seconds())
	}
}

// RecordDataDirDelete records a data directory deletion outcome.
func RecordDataDirDelete(node, result string) {
	DataDirDeletes.WithLabelValues(node, result).Inc()
}
