// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

// Package logging provides the process-wide zerolog logger for Nodekeeper.
//
// Every package logs through the global facade (Info, Warn, Error, ...) or,
// inside a request, through Ctx(ctx) so the request_id assigned by the wire
// server is attached to every line.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("node", "rust").Msg("Node started")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Proxy call failed")
//
// # Configuration
//
// Environment Variables (read by internal/config):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
//
// # Suture Integration
//
// NewSlogLogger returns a log/slog logger backed by zerolog, which the
// supervisor tree hands to sutureslog for its lifecycle events.
//
// # Secrets
//
// Node API secrets and Authorization header values must never reach a log
// line verbatim. Use SanitizeToken or SanitizeValue before logging them.
package logging
