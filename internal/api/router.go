// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package api

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"github.com/tomtom215/nodekeeper/internal/httpwire"
	"github.com/tomtom215/nodekeeper/internal/logging"
	"github.com/tomtom215/nodekeeper/internal/metrics"
	"github.com/tomtom215/nodekeeper/internal/node"
	"github.com/tomtom215/nodekeeper/internal/proxy"
)

// Deps are the collaborators of the control API.
type Deps struct {
	Nodes  NodeSet
	Eraser Eraser
	Proxy  Forwarder
	// Grace is the graceful stop wait for stop, restart and delete.
	// Zero means node.DefaultGrace.
	Grace time.Duration
}

// Router dispatches control API requests.
type Router struct {
	h *Handler
}

// NewRouter creates a Router.
func NewRouter(deps Deps) *Router {
	if deps.Grace <= 0 {
		deps.Grace = node.DefaultGrace
	}
	return &Router{h: &Handler{deps: deps}}
}

// parametric routes: method, prefix, handler.
type prefixRoute struct {
	method string
	prefix string
	route  string
	handle func(h *Handler, ctx context.Context, n NodeController, req *httpwire.Request) *httpwire.Response
}

var prefixRoutes = []prefixRoute{
	{"POST", "/start/", "/start/{id}", (*Handler).Start},
	{"POST", "/stop/", "/stop/{id}", (*Handler).Stop},
	{"POST", "/restart/", "/restart/{id}", (*Handler).Restart},
	{"GET", "/logs/", "/logs/{id}", (*Handler).Logs},
	{"POST", "/delete/", "/delete/{id}", (*Handler).Delete},
}

// Serve handles one request. It never returns nil and never panics.
func (rt *Router) Serve(ctx context.Context, req *httpwire.Request) (resp *httpwire.Response) {
	begin := time.Now()
	route := "unmatched"

	defer func() {
		if rec := recover(); rec != nil {
			logging.Ctx(ctx).Error().
				Interface("panic", rec).
				Str("method", req.Method).
				Str("path", req.Path).
				Bytes("stack", debug.Stack()).
				Msg("Handler panicked")
			resp = httpwire.Error(500, "server error")
		}
		metrics.RecordAPIRequest(req.Method, route, resp.Status, time.Since(begin))
		if ev := logging.Ctx(ctx).Debug(); ev.Enabled() {
			ev.Str("method", req.Method).
				Str("path", req.Path).
				Interface("headers", logging.SanitizeHeaders(req.Headers)).
				Int("status", resp.Status).
				Dur("elapsed", time.Since(begin)).
				Msg("Request handled")
		}
	}()

	if req.Method == "OPTIONS" {
		route = "preflight"
		return rt.h.Preflight(req)
	}

	path := normalizePath(req.Path)

	switch {
	case req.Method == "GET" && path == "/status":
		route = "/status"
		return rt.h.Status()
	case req.Method == "POST" && path == proxy.Owner.Path():
		route = path
		return rt.h.Proxy(ctx, proxy.Owner, req)
	case req.Method == "POST" && path == proxy.Foreign.Path():
		route = path
		return rt.h.Proxy(ctx, proxy.Foreign, req)
	}

	for _, pr := range prefixRoutes {
		if req.Method != pr.method || !strings.HasPrefix(path, pr.prefix) {
			continue
		}
		route = pr.route
		id := strings.TrimPrefix(path, pr.prefix)
		n, ok := rt.h.deps.Nodes.Get(id)
		if !ok {
			return httpwire.Error(404, "unknown id")
		}
		return pr.handle(rt.h, logging.ContextWithNodeID(ctx, id), n, req)
	}

	return httpwire.Error(404, "not found")
}

// normalizePath strips a single trailing slash, leaving "/" alone.
func normalizePath(p string) string {
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		return p[:len(p)-1]
	}
	return p
}
