// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

/*
Package config loads and validates the daemon configuration.

# Sources

Configuration is layered with koanf; later layers win:

 1. Built-in defaults (defaultConfig)
 2. YAML file: --config, else CONFIG_PATH, else config.yaml, config.yml,
    /etc/nodekeeper/config.yaml or /etc/nodekeeper/config.yml
 3. Environment variables (explicit mapping, unknown names ignored)
 4. Command-line flags the user set explicitly

# Environment Variables

Control API:
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 8080)
  - ACCEPT_RATE: Admitted connections per second, 0 = unlimited (default: 0)
  - ACCEPT_BURST: Admission burst size (default: 32)

Nodes:
  - GRIN_RUST_BIN, GRINPP_BIN: Node executables
  - GRIN_RUST_ARGS, GRINPP_ARGS: Default arguments, comma separated
  - GRIN_RUST_DATADIR: Rust node data directory (default: ~/.grin/main)
  - GRINPP_DATADIR: Grin++ data directory (default: ~/.GrinPP)
  - GRIN_RUST_STOP_STRATEGY, GRINPP_STOP_STRATEGY: terminate, quit-input
    or interrupt (defaults: interrupt for Rust, quit-input for Grin++)
  - LOG_CAPACITY: Ring log lines per node (default: 5000, minimum 100)
  - GRIN_FORCE_TERMINAL: Run nodes in a terminal emulator (Unix)
  - GRIN_SHOW_CONSOLE: Give nodes their own console window (Windows)

Proxy:
  - PROXY_UPSTREAM: Node API base URL (default: http://127.0.0.1:3413)
  - PROXY_TIMEOUT: Per-call timeout (default: 60s)
  - PROXY_BASIC_USER: Basic auth user for injected secrets (default: grin)

Admin:
  - ADMIN_ENABLED: Serve /metrics, /healthz and /readyz (default: false)
  - ADMIN_ADDR: Admin listen address (default: 127.0.0.1:9090)

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: Include caller file:line (default: false)

# Flags

	-p, --port          HTTP port
	    --rust-bin      Rust node executable
	    --rust-args     Rust node default arguments, comma separated
	    --grinpp-bin    Grin++ executable
	    --grinpp-args   Grin++ default arguments, comma separated
	    --log-cap       Ring log capacity
	    --config        YAML config file

# Example File

	server:
	  port: 8080
	nodes:
	  log_capacity: 5000
	  rust:
	    program: /usr/local/bin/grin
	    args: ["--testnet"]
	    data_dir: ~/.grin/test
	  grinpp:
	    program: /opt/grinpp/GrinNode
	    stop_strategy: terminate
	admin:
	  enabled: true
*/
package config
