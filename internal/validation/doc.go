// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide. Field names in error
// messages come from the koanf tag, so a failure reads the way the setting
// is spelled in the config file:
//
//	server.port must be at least 1
//	nodes.rust.stop_strategy must be one of: terminate, quit-input, interrupt
//
// # Custom Tags
//
//   - stopstrategy: a node stop strategy name accepted by node.ParseStopStrategy
//   - loglevel: a level accepted by logging.ValidLevel
//
// Cross-field rules (for example, an accept burst that is only required
// when a rate is set) are left to the caller.
package validation
