// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

/*
Package api implements the node control API and the admin endpoints.

# Control API

Router.Serve dispatches one parsed httpwire.Request to its handler and
always returns a response; a panicking handler becomes a 500. Paths lose
one trailing slash before matching.

	OPTIONS *               CORS preflight, 204
	GET     /status         {"nodes":{"<id>":<status>}}
	POST    /start/{id}     body {"args":[...]} or {"args":"a,b"}
	POST    /stop/{id}
	POST    /restart/{id}   body as for start
	GET     /logs/{id}?n=N  last N lines (default 200)
	POST    /v2/owner       forwarded to the running node, owner secret
	POST    /v2/foreign     forwarded to the running node, foreign secret
	POST    /delete/{id}    stop, then erase the node's data directory

Unknown ids answer 404 {"error":"unknown id"} and unmatched routes 404
{"error":"not found"}.

# Admin API

NewAdminRouter serves /metrics (Prometheus), /healthz and /readyz on a
separate net/http listener using chi.
*/
package api
