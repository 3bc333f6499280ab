// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/nodekeeper/internal/logging"
)

// AdminDeps are the collaborators of the admin listener.
type AdminDeps struct {
	Nodes NodeSet
	// Ready reports whether the control API is accepting connections.
	Ready func() bool
	// BreakerState reports the proxy circuit breaker state. Optional.
	BreakerState func() string
}

type adminHandler struct {
	deps      AdminDeps
	startTime time.Time
}

// NewAdminRouter builds the admin HTTP handler: Prometheus metrics plus
// liveness and readiness probes. It is meant for a loopback listener and
// carries no authentication.
func NewAdminRouter(deps AdminDeps) http.Handler {
	h := &adminHandler{deps: deps, startTime: time.Now()}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", h.healthLive)
	r.Get("/readyz", h.healthReady)
	return r
}

func (h *adminHandler) healthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// healthReady returns 503 until the control API is serving.
func (h *adminHandler) healthReady(w http.ResponseWriter, _ *http.Request) {
	ready := h.deps.Ready == nil || h.deps.Ready()

	running := make(map[string]bool)
	if h.deps.Nodes != nil {
		for _, n := range h.deps.Nodes.All() {
			running[n.ID()] = n.IsRunning()
		}
	}

	data := map[string]any{
		"ready":  ready,
		"nodes":  running,
		"uptime": time.Since(h.startTime).Seconds(),
	}
	if h.deps.BreakerState != nil {
		data["proxy_breaker"] = h.deps.BreakerState()
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, data)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("Failed to encode admin response")
	}
}
