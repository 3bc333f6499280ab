// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

/*
Package server runs the control API on a raw TCP listener.

Each accepted connection gets its own goroutine which reads exactly one
request with httpwire.ReadRequest, hands it to the Handler, writes the
response and closes the connection. A request that cannot be parsed is
answered with 400 {"error":"bad request"}.

Server mirrors the net/http lifecycle (ListenAndServe, Shutdown and
http.ErrServerClosed) so it can run under supervisor.HTTPServerService.
An optional token bucket limits how fast connections are admitted.
*/
package server
