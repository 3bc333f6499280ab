// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/nodekeeper/config.yaml",
	"/etc/nodekeeper/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file, env vars and flags.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			AcceptRate:      0, // Unlimited
			AcceptBurst:     32,
			ShutdownTimeout: 15 * time.Second,
		},
		Nodes: NodesConfig{
			LogCapacity: 5000,
			Rust: NodeConfig{
				DataDir:           "~/.grin/main",
				OwnerSecretFile:   ".api_secret",
				ForeignSecretFile: ".foreign_api_secret",
			},
			GrinPP: NodeConfig{
				DataDir:           "~/.GrinPP",
				OwnerSecretFile:   ".api_secret",
				ForeignSecretFile: ".foreign_api_secret",
			},
		},
		Proxy: ProxyConfig{
			Upstream:        "http://127.0.0.1:3413",
			Timeout:         60 * time.Second,
			BasicUser:       "grin",
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Admin: AdminConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9090",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf with layered sources.
func LoadWithKoanf(fs *FlagSet) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional unless named explicitly)
	configPath, err := findConfigFile(fs.ConfigPath())
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables
	// GRIN_RUST_BIN -> nodes.rust.program
	// HTTP_PORT -> server.port
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Layer 4: Flags the user actually passed
	for path, value := range fs.overrides() {
		if err := k.Set(path, value); err != nil {
			return nil, fmt.Errorf("failed to apply flag for %s: %w", path, err)
		}
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the config file to load. An explicit path must
// exist; otherwise CONFIG_PATH and then DefaultConfigPaths are tried and
// a missing file just means no file layer.
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", nil
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"nodes.rust.args",
	"nodes.grinpp.args",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars and flags come in as strings; YAML lists are
// left alone. Empty parts are dropped but the rest are kept verbatim, since
// node arguments may legitimately carry spaces.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := splitArgs(strVal)
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

func splitArgs(s string) []string {
	parts := make([]string, 0, strings.Count(s, ",")+1)
	for _, p := range strings.Split(s, ",") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// expandPaths resolves a leading ~ in node data directories.
func (c *Config) expandPaths() error {
	for _, dir := range []*string{&c.Nodes.Rust.DataDir, &c.Nodes.GrinPP.DataDir} {
		expanded, err := expandHome(*dir)
		if err != nil {
			return err
		}
		*dir = expanded
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return filepath.Join(home, path[1:]), nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Control API listener
	"http_host":    "server.host",
	"http_port":    "server.port",
	"accept_rate":  "server.accept_rate",
	"accept_burst": "server.accept_burst",

	// Nodes
	"log_capacity":            "nodes.log_capacity",
	"grin_force_terminal":     "nodes.force_terminal",
	"grin_show_console":       "nodes.show_console",
	"grin_rust_bin":           "nodes.rust.program",
	"grin_rust_args":          "nodes.rust.args",
	"grin_rust_datadir":       "nodes.rust.data_dir",
	"grin_rust_stop_strategy": "nodes.rust.stop_strategy",
	"grinpp_bin":              "nodes.grinpp.program",
	"grinpp_args":             "nodes.grinpp.args",
	"grinpp_datadir":          "nodes.grinpp.data_dir",
	"grinpp_stop_strategy":    "nodes.grinpp.stop_strategy",

	// Proxy
	"proxy_upstream":   "proxy.upstream",
	"proxy_timeout":    "proxy.timeout",
	"proxy_basic_user": "proxy.basic_user",

	// Admin listener
	"admin_enabled": "admin.enabled",
	"admin_addr":    "admin.addr",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped, so unrelated environment
// does not leak into the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
