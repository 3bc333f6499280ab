// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

// Package main is the entry point for the Nodekeeper daemon.
//
// Nodekeeper supervises a Grin Rust node and a Grin++ node as child
// processes and exposes a small JSON control API over HTTP: start, stop,
// restart, status, log tailing, data directory deletion, and forwarding of
// owner and foreign API calls to whichever node is running.
//
// # Application Architecture
//
// The daemon initializes components in the following order:
//
//  1. Configuration: defaults, YAML file, environment, flags (koanf + pflag)
//  2. Logging: zerolog, JSON or console
//  3. Nodes: one node.Node per managed implementation, in a node.Registry
//  4. Proxy: upstream client behind a circuit breaker
//  5. Control API: raw TCP listener, bound before anything is supervised
//  6. Admin API (optional): /metrics, /healthz, /readyz via net/http + chi
//  7. Supervisor tree: node layer and api layer (suture)
//
// # Signal Handling
//
// On SIGINT or SIGTERM the tree is canceled: listeners stop accepting and
// drain, and every running node is stopped with its stop strategy and a
// 4 second grace period before escalation.
//
// # Example Usage
//
//	nodekeeper --port 8080 \
//	  --rust-bin /usr/local/bin/grin --rust-args=--no-tui \
//	  --grinpp-bin /opt/grinpp/GrinNode
//
//	curl -X POST localhost:8080/start/rust -d '{"args":["--testnet"]}'
//	curl localhost:8080/logs/rust?n=50
//
// Exit status is 1 when configuration is invalid or the port cannot be
// bound, 2 for flag errors.
package main
