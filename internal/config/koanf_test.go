// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// isolate points HOME and CONFIG_PATH at a temp dir so the host's files
// and environment do not leak into the test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv(ConfigPathEnvVar, filepath.Join(home, "absent.yaml"))
	for env := range envMappings {
		t.Setenv(strings.ToUpper(env), "")
		_ = os.Unsetenv(strings.ToUpper(env))
	}
	return home
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Nodes.LogCapacity != 5000 {
		t.Errorf("Nodes.LogCapacity = %d, want 5000", cfg.Nodes.LogCapacity)
	}
	if cfg.Nodes.Rust.DataDir != "~/.grin/main" {
		t.Errorf("Nodes.Rust.DataDir = %q", cfg.Nodes.Rust.DataDir)
	}
	if cfg.Nodes.GrinPP.DataDir != "~/.GrinPP" {
		t.Errorf("Nodes.GrinPP.DataDir = %q", cfg.Nodes.GrinPP.DataDir)
	}
	if cfg.Proxy.Upstream != "http://127.0.0.1:3413" || cfg.Proxy.BasicUser != "grin" {
		t.Errorf("Proxy = %+v", cfg.Proxy)
	}
	if cfg.Proxy.Timeout != 60*time.Second {
		t.Errorf("Proxy.Timeout = %v, want 60s", cfg.Proxy.Timeout)
	}
	if cfg.Admin.Enabled || cfg.Admin.Addr != "127.0.0.1:9090" {
		t.Errorf("Admin = %+v", cfg.Admin)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadWithKoanf_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := LoadWithKoanf(nil)
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if got, want := cfg.Nodes.Rust.DataDir, filepath.Join(home, ".grin", "main"); got != want {
		t.Errorf("Rust.DataDir = %q, want %q", got, want)
	}
	if got, want := cfg.Nodes.GrinPP.DataDir, filepath.Join(home, ".GrinPP"); got != want {
		t.Errorf("GrinPP.DataDir = %q, want %q", got, want)
	}
	if cfg.Nodes.Rust.Program != "" || len(cfg.Nodes.Rust.Args) != 0 {
		t.Errorf("Rust = %+v, want no program or args", cfg.Nodes.Rust)
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Server.Addr() = %q", cfg.Server.Addr())
	}
}

func TestLoadWithKoanf_Environment(t *testing.T) {
	isolate(t)

	t.Setenv("HTTP_PORT", "9001")
	t.Setenv("GRIN_RUST_BIN", "/usr/bin/grin")
	t.Setenv("GRIN_RUST_ARGS", "--testnet,,--no-tui")
	t.Setenv("GRINPP_DATADIR", "/srv/grinpp")
	t.Setenv("GRINPP_STOP_STRATEGY", "terminate")
	t.Setenv("LOG_CAPACITY", "250")
	t.Setenv("PROXY_TIMEOUT", "5s")
	t.Setenv("ADMIN_ENABLED", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := LoadWithKoanf(nil)
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9001 {
		t.Errorf("Server.Port = %d, want 9001", cfg.Server.Port)
	}
	if cfg.Nodes.Rust.Program != "/usr/bin/grin" {
		t.Errorf("Rust.Program = %q", cfg.Nodes.Rust.Program)
	}
	if want := []string{"--testnet", "--no-tui"}; !reflect.DeepEqual(cfg.Nodes.Rust.Args, want) {
		t.Errorf("Rust.Args = %q, want %q", cfg.Nodes.Rust.Args, want)
	}
	if cfg.Nodes.GrinPP.DataDir != "/srv/grinpp" {
		t.Errorf("GrinPP.DataDir = %q", cfg.Nodes.GrinPP.DataDir)
	}
	if cfg.Nodes.GrinPP.StopStrategy != "terminate" {
		t.Errorf("GrinPP.StopStrategy = %q", cfg.Nodes.GrinPP.StopStrategy)
	}
	if cfg.Nodes.LogCapacity != 250 {
		t.Errorf("LogCapacity = %d, want 250", cfg.Nodes.LogCapacity)
	}
	if cfg.Proxy.Timeout != 5*time.Second {
		t.Errorf("Proxy.Timeout = %v, want 5s", cfg.Proxy.Timeout)
	}
	if !cfg.Admin.Enabled {
		t.Error("Admin.Enabled = false, want true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoadWithKoanf_FileThenEnvThenFlags(t *testing.T) {
	home := isolate(t)

	path := filepath.Join(home, "nodekeeper.yaml")
	yamlContent := `
server:
  port: 7000
  host: 127.0.0.1
nodes:
  log_capacity: 300
  rust:
    program: /from/file/grin
    args: ["--a", "--b"]
    data_dir: ~/chain
  grinpp:
    program: /from/file/grinpp
    log_capacity: 1000
proxy:
  basic_user: owner
`
	if err := os.WriteFile(path, []byte(yamlContent), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GRINPP_BIN", "/from/env/grinpp")
	t.Setenv("HTTP_PORT", "7001")

	fs := NewFlagSet("nodekeeper")
	if err := fs.Parse([]string{"--config", path, "-p", "7002", "--rust-args=--x,--y"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := LoadWithKoanf(fs)
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 7002 {
		t.Errorf("Server.Port = %d, want flag value 7002", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want file value", cfg.Server.Host)
	}
	if cfg.Nodes.Rust.Program != "/from/file/grin" {
		t.Errorf("Rust.Program = %q, want file value", cfg.Nodes.Rust.Program)
	}
	if want := []string{"--x", "--y"}; !reflect.DeepEqual(cfg.Nodes.Rust.Args, want) {
		t.Errorf("Rust.Args = %q, want flag value %q", cfg.Nodes.Rust.Args, want)
	}
	if cfg.Nodes.GrinPP.Program != "/from/env/grinpp" {
		t.Errorf("GrinPP.Program = %q, want env value", cfg.Nodes.GrinPP.Program)
	}
	if got, want := cfg.Nodes.Rust.DataDir, filepath.Join(home, "chain"); got != want {
		t.Errorf("Rust.DataDir = %q, want %q", got, want)
	}
	if cfg.Nodes.LogCapacity != 300 {
		t.Errorf("LogCapacity = %d, want 300 (flag default must not override)", cfg.Nodes.LogCapacity)
	}
	if cfg.Nodes.GrinPP.EffectiveLogCapacity(cfg.Nodes.LogCapacity) != 1000 {
		t.Errorf("GrinPP effective capacity = %d, want 1000", cfg.Nodes.GrinPP.EffectiveLogCapacity(cfg.Nodes.LogCapacity))
	}
	if cfg.Proxy.BasicUser != "owner" {
		t.Errorf("Proxy.BasicUser = %q", cfg.Proxy.BasicUser)
	}
}

func TestLoadWithKoanf_YAMLArgsKeptVerbatim(t *testing.T) {
	home := isolate(t)

	path := filepath.Join(home, "c.yaml")
	if err := os.WriteFile(path, []byte("nodes:\n  rust:\n    args: [\"--name=a,b\"]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadWithKoanf(nil)
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if want := []string{"--name=a,b"}; !reflect.DeepEqual(cfg.Nodes.Rust.Args, want) {
		t.Errorf("Rust.Args = %q, want %q", cfg.Nodes.Rust.Args, want)
	}
}

func TestLoadWithKoanf_Errors(t *testing.T) {
	t.Run("explicit config file missing", func(t *testing.T) {
		home := isolate(t)
		fs := NewFlagSet("nodekeeper")
		if err := fs.Parse([]string{"--config", filepath.Join(home, "nope.yaml")}); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadWithKoanf(fs); err == nil {
			t.Error("expected error for missing --config file")
		}
	})

	t.Run("invalid port", func(t *testing.T) {
		isolate(t)
		t.Setenv("HTTP_PORT", "70000")
		if _, err := LoadWithKoanf(nil); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("invalid stop strategy", func(t *testing.T) {
		isolate(t)
		t.Setenv("GRIN_RUST_STOP_STRATEGY", "nuke")
		if _, err := LoadWithKoanf(nil); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("unparsable capacity", func(t *testing.T) {
		isolate(t)
		t.Setenv("LOG_CAPACITY", "lots")
		if _, err := LoadWithKoanf(nil); err == nil {
			t.Error("expected unmarshal error")
		}
	})
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{",,", []string{}},
		{"--a", []string{"--a"}},
		{"--a,--b", []string{"--a", "--b"}},
		{"--a,,--b,", []string{"--a", "--b"}},
		{" --a , --b", []string{" --a ", " --b"}},
	}
	for _, tt := range tests {
		if got := splitArgs(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitArgs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	tests := map[string]string{
		"~":          home,
		"~/.grin":    filepath.Join(home, ".grin"),
		"/abs/path":  "/abs/path",
		"relative":   "relative",
		"~other/dir": "~other/dir",
	}
	for in, want := range tests {
		got, err := expandHome(in)
		if err != nil {
			t.Fatalf("expandHome(%q) error = %v", in, err)
		}
		if got != want {
			t.Errorf("expandHome(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"HTTP_PORT":         "server.port",
		"GRIN_RUST_DATADIR": "nodes.rust.data_dir",
		"grinpp_bin":        "nodes.grinpp.program",
		"LOG_FORMAT":        "logging.format",
		"PATH":              "",
		"HOME":              "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}
