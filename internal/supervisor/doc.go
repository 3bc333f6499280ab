// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

/*
Package supervisor provides process supervision for Nodekeeper using suture v4.

# Overview

The supervisor tree organizes services into two layers:

	RootSupervisor ("nodekeeper")
	├── NodeSupervisor ("node-layer")
	│   ├── NodeService ("node-grin-rust")
	│   └── NodeService ("node-grinpp")
	└── APISupervisor ("api-layer")
	    ├── HTTPServerService ("control-api")
	    └── HTTPServerService ("admin-api", if ADMIN_ENABLED)

Node services do nothing until shutdown; their job is to stop the child
processes when the tree is canceled. Listener failures restart inside the
api layer and never affect running nodes.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	for _, n := range registry.Nodes() {
	    tree.AddNodeService(services.NewNodeService(n, node.DefaultGrace))
	}
	tree.AddAPIService(services.NewHTTPServerService("control-api", srv, 15*time.Second))

	errCh := tree.ServeBackground(ctx)

# Configuration

TreeConfig controls restart behavior. Defaults follow suture's own, except
ShutdownTimeout, which is 15 seconds so a full stop escalation (grace,
terminate, kill) fits inside it.

# Debugging Shutdown Issues

	report, err := tree.UnstoppedServiceReport()

lists services that did not return within ShutdownTimeout.
*/
package supervisor
