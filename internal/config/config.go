// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package config

import (
	"net"
	"strconv"
	"time"
)

// Node ids served by the control API.
const (
	RustNodeID   = "rust"
	GrinPPNodeID = "grinpp"
)

// Config holds the complete daemon configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Nodes   NodesConfig   `koanf:"nodes"`
	Proxy   ProxyConfig   `koanf:"proxy"`
	Admin   AdminConfig   `koanf:"admin"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig configures the raw control API listener.
type ServerConfig struct {
	// Host is the bind address. Default: 0.0.0.0
	Host string `koanf:"host"`

	// Port is the listen port. Default: 8080
	Port int `koanf:"port" validate:"min=1,max=65535"`

	// AcceptRate limits admitted connections per second; 0 disables it.
	AcceptRate float64 `koanf:"accept_rate" validate:"gte=0"`

	// AcceptBurst is the admission token bucket size.
	AcceptBurst int `koanf:"accept_burst" validate:"gte=0"`

	// ShutdownTimeout bounds draining in-flight requests on shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// Addr returns host:port for net.Listen.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// NodesConfig holds settings shared by all nodes plus one block per node.
type NodesConfig struct {
	// LogCapacity is the ring log size in lines for nodes that do not set
	// their own. Default: 5000
	LogCapacity int `koanf:"log_capacity" validate:"gt=0"`

	// ForceTerminal runs nodes inside a terminal emulator (Unix).
	ForceTerminal bool `koanf:"force_terminal"`

	// ShowConsole gives each node its own console window (Windows).
	ShowConsole bool `koanf:"show_console"`

	Rust   NodeConfig `koanf:"rust"`
	GrinPP NodeConfig `koanf:"grinpp"`
}

// NodeConfig configures one managed node.
type NodeConfig struct {
	// Program is the node executable. Empty means start requests fail
	// until it is configured.
	Program string `koanf:"program"`

	// Args are the default arguments, placed before per-request extras.
	Args []string `koanf:"args"`

	// DataDir holds the node's chain data and API secrets. A leading ~ is
	// expanded to the user's home directory.
	DataDir string `koanf:"data_dir"`

	// StopStrategy overrides the built-in strategy for the node kind:
	// terminate, quit-input or interrupt.
	StopStrategy string `koanf:"stop_strategy" validate:"omitempty,stopstrategy"`

	// LogCapacity overrides NodesConfig.LogCapacity when positive.
	LogCapacity int `koanf:"log_capacity" validate:"gte=0"`

	// OwnerSecretFile and ForeignSecretFile name the secret files inside
	// DataDir.
	OwnerSecretFile   string `koanf:"owner_secret_file"`
	ForeignSecretFile string `koanf:"foreign_secret_file"`
}

// EffectiveLogCapacity returns the node's own capacity or the shared one.
func (n NodeConfig) EffectiveLogCapacity(shared int) int {
	if n.LogCapacity > 0 {
		return n.LogCapacity
	}
	return shared
}

// ProxyConfig configures forwarding of /v2/owner and /v2/foreign.
type ProxyConfig struct {
	// Upstream is the local node API base URL. Default: http://127.0.0.1:3413
	Upstream string `koanf:"upstream" validate:"required,http_url"`

	// Timeout bounds one forwarded call. Default: 60s
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// BasicUser is the user name paired with the node's API secret.
	// Default: grin
	BasicUser string `koanf:"basic_user"`

	// BreakerFailures consecutive upstream failures open the circuit.
	// Default: 5
	BreakerFailures uint32 `koanf:"breaker_failures"`

	// BreakerTimeout is how long the circuit stays open. Default: 30s
	BreakerTimeout time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
}

// AdminConfig configures the metrics and health listener.
type AdminConfig struct {
	Enabled bool `koanf:"enabled"`

	// Addr should stay on loopback; the admin API is unauthenticated.
	// Default: 127.0.0.1:9090
	Addr string `koanf:"addr" validate:"required_if=Enabled true"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level" validate:"loglevel"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Load reads configuration in priority order (later wins):
//
//  1. Built-in defaults
//  2. Config file (--config, CONFIG_PATH, or a default path)
//  3. Environment variables
//  4. Command-line flags that were explicitly set
//
// fs may be nil when no flags are in play.
func Load(fs *FlagSet) (*Config, error) {
	return LoadWithKoanf(fs)
}
