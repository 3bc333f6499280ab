// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

/*
Package services provides suture.Service wrappers for Nodekeeper components.

Each wrapper translates a component lifecycle into suture's context-aware
Serve pattern:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTPServerService:
  - Wraps anything with ListenAndServe and Shutdown: the raw control API
    server (internal/server) and the admin *http.Server
  - Treats http.ErrServerClosed as a clean stop
  - Configurable shutdown timeout for draining in-flight requests

NodeService:
  - One per managed node, in the node layer
  - Idles until the tree shuts down, then stops the node with its stop
    strategy so the child process does not outlive the daemon

# Usage

	tree.AddNodeService(services.NewNodeService(n, node.DefaultGrace))
	tree.AddAPIService(services.NewHTTPServerService("control-api", srv, 15*time.Second))

# Testing

Services are tested with hand-written doubles (mockHTTPServer, mockNode)
that satisfy the small interfaces declared here.
*/
package services
