// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

/*
Package metrics provides Prometheus instrumentation for Nodekeeper.

Collectors are registered on the default registry through promauto and are
served by the admin listener at /metrics:

	curl http://127.0.0.1:9090/metrics

# Available Metrics

Node Metrics:
  - nodekeeper_node_running: 1 while the node's process is alive (gauge)
    Labels: node
  - nodekeeper_node_starts_total: Process spawns (counter)
    Labels: node, result
  - nodekeeper_node_stops_total: Stop requests (counter)
    Labels: node, result
  - nodekeeper_node_exits_total: Observed process exits (counter)
    Labels: node, code
  - nodekeeper_node_log_lines_total: Captured output lines (counter)
    Labels: node

Wire Server Metrics:
  - nodekeeper_http_requests_total: Requests answered (counter)
    Labels: method, route, status
  - nodekeeper_http_request_duration_seconds: Handling latency (histogram)
    Labels: method, route
  - nodekeeper_http_connections_active: Connections being served (gauge)
  - nodekeeper_http_parse_errors_total: Requests rejected as malformed (counter)

Proxy Metrics:
  - nodekeeper_proxy_requests_total: Forwarded owner/foreign calls (counter)
    Labels: kind, result
  - nodekeeper_proxy_upstream_duration_seconds: Upstream round trip (histogram)
    Labels: kind

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_requests_total, circuit_breaker_state_transitions_total

Eraser Metrics:
  - nodekeeper_data_dir_deletes_total: Data directory deletions (counter)
    Labels: node, result
*/
package metrics
