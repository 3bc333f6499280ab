// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package config

import (
	"github.com/spf13/pflag"
)

// FlagSet is the daemon's command-line surface.
type FlagSet struct {
	*pflag.FlagSet
}

// flagMappings maps flag names to koanf paths. Only flags the user set
// override lower layers.
var flagMappings = map[string]string{
	"port":        "server.port",
	"rust-bin":    "nodes.rust.program",
	"rust-args":   "nodes.rust.args",
	"grinpp-bin":  "nodes.grinpp.program",
	"grinpp-args": "nodes.grinpp.args",
	"log-cap":     "nodes.log_capacity",
}

// NewFlagSet declares the daemon flags on a fresh pflag.FlagSet.
func NewFlagSet(name string) *FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.IntP("port", "p", 8080, "HTTP port")
	fs.String("rust-bin", "", "path to the Grin Rust node")
	fs.String("rust-args", "", "default arguments for the Rust node, comma separated")
	fs.String("grinpp-bin", "", "path to Grin++")
	fs.String("grinpp-args", "", "default arguments for Grin++, comma separated")
	fs.Int("log-cap", 5000, "log ring capacity per node, in lines")
	fs.String("config", "", "path to a YAML config file")
	fs.Bool("version", false, "print version and exit")
	return &FlagSet{FlagSet: fs}
}

// ConfigPath returns --config, or "" when unset.
func (fs *FlagSet) ConfigPath() string {
	if fs == nil {
		return ""
	}
	path, err := fs.GetString("config")
	if err != nil {
		return ""
	}
	return path
}

// overrides returns koanf path -> value for every changed flag.
func (fs *FlagSet) overrides() map[string]any {
	out := make(map[string]any)
	if fs == nil {
		return out
	}
	fs.Visit(func(f *pflag.Flag) {
		path, ok := flagMappings[f.Name]
		if !ok {
			return
		}
		switch f.Value.Type() {
		case "int":
			if v, err := fs.GetInt(f.Name); err == nil {
				out[path] = v
			}
		default:
			out[path] = f.Value.String()
		}
	})
	return out
}
