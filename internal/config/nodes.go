// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package config

import (
	"fmt"

	"github.com/tomtom215/nodekeeper/internal/node"
)

// NodeOptions returns construction options for the managed nodes, Rust
// first. Each node gets its kind's built-in variant, with the configured
// stop strategy overriding the default when set.
func (c *Config) NodeOptions() ([]node.Options, error) {
	launch := node.Launch{
		ForceTerminal: c.Nodes.ForceTerminal,
		ShowConsole:   c.Nodes.ShowConsole,
	}

	blocks := []struct {
		id  string
		cfg NodeConfig
	}{
		{RustNodeID, c.Nodes.Rust},
		{GrinPPNodeID, c.Nodes.GrinPP},
	}

	opts := make([]node.Options, 0, len(blocks))
	for _, b := range blocks {
		variant, ok := node.VariantFor(b.id)
		if !ok {
			return nil, fmt.Errorf("no built-in variant for node %q", b.id)
		}
		if b.cfg.StopStrategy != "" {
			strategy, err := node.ParseStopStrategy(b.cfg.StopStrategy)
			if err != nil {
				return nil, fmt.Errorf("nodes.%s.stop_strategy: %w", b.id, err)
			}
			variant.Strategy = strategy
		}

		opts = append(opts, node.Options{
			ID:                b.id,
			Program:           b.cfg.Program,
			DefaultArgs:       append([]string(nil), b.cfg.Args...),
			DataDir:           b.cfg.DataDir,
			LogCapacity:       b.cfg.EffectiveLogCapacity(c.Nodes.LogCapacity),
			Variant:           variant,
			Launch:            launch,
			OwnerSecretFile:   b.cfg.OwnerSecretFile,
			ForeignSecretFile: b.cfg.ForeignSecretFile,
		})
	}
	return opts, nil
}
