// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/tomtom215/nodekeeper/internal/api"
	"github.com/tomtom215/nodekeeper/internal/config"
	"github.com/tomtom215/nodekeeper/internal/eraser"
	"github.com/tomtom215/nodekeeper/internal/logging"
	"github.com/tomtom215/nodekeeper/internal/metrics"
	"github.com/tomtom215/nodekeeper/internal/node"
	"github.com/tomtom215/nodekeeper/internal/proxy"
	"github.com/tomtom215/nodekeeper/internal/server"
	"github.com/tomtom215/nodekeeper/internal/supervisor"
	"github.com/tomtom215/nodekeeper/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "0.0.1"

func main() {
	os.Exit(run(os.Args[1:]))
}

//nolint:gocyclo // sequential setup steps
func run(args []string) int {
	fs := config.NewFlagSet("nodekeeper")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if v, _ := fs.GetBool("version"); v {
		fmt.Println("nodekeeper", version)
		return 0
	}

	cfg, err := config.Load(fs)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().Str("version", version).Msg("Starting Nodekeeper")

	registry, err := buildRegistry(cfg)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to configure nodes")
		return 1
	}
	logNodes(registry)

	forwarder, err := proxy.New(proxy.Config{
		Upstream:        cfg.Proxy.Upstream,
		BasicUser:       cfg.Proxy.BasicUser,
		Timeout:         cfg.Proxy.Timeout,
		BreakerFailures: cfg.Proxy.BreakerFailures,
		BreakerTimeout:  cfg.Proxy.BreakerTimeout,
	}, proxy.RegistryResolver(registry))
	if err != nil {
		logging.Error().Err(err).Msg("Failed to configure proxy")
		return 1
	}

	nodes := api.RegistryNodes(registry)
	router := api.NewRouter(api.Deps{
		Nodes:  nodes,
		Eraser: newEraser(),
		Proxy:  forwarder,
		Grace:  node.DefaultGrace,
	})

	srv := server.New(server.Config{
		Addr:        cfg.Server.Addr(),
		AcceptRate:  cfg.Server.AcceptRate,
		AcceptBurst: cfg.Server.AcceptBurst,
	}, router)
	if err := srv.Listen(); err != nil {
		logging.Error().Err(err).Int("port", cfg.Server.Port).Msg("HTTP server could not bind")
		return 1
	}
	logging.Info().
		Str("addr", srv.Addr().String()).
		Int("log_capacity", cfg.Nodes.LogCapacity).
		Msg("HTTP server listening")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	treeConfig := supervisor.DefaultTreeConfig()
	if cfg.Server.ShutdownTimeout > treeConfig.ShutdownTimeout {
		treeConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
	}
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), treeConfig)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create supervisor tree")
		return 1
	}

	// Node layer
	for _, n := range registry.Nodes() {
		tree.AddNodeService(services.NewNodeService(n, node.DefaultGrace))
	}

	// API layer
	tree.AddAPIService(services.NewHTTPServerService("control-api", srv, cfg.Server.ShutdownTimeout))
	if cfg.Admin.Enabled {
		adminServer := &http.Server{
			Addr: cfg.Admin.Addr,
			Handler: api.NewAdminRouter(api.AdminDeps{
				Nodes:        nodes,
				Ready:        srv.Ready,
				BreakerState: forwarder.State,
			}),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
		}
		tree.AddAPIService(services.NewHTTPServerService("admin-api", adminServer, 5*time.Second))
		logging.Info().Str("addr", cfg.Admin.Addr).Msg("Admin server service added")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Nodekeeper stopped")
	return 0
}

// buildRegistry creates the managed nodes from configuration.
func buildRegistry(cfg *config.Config) (*node.Registry, error) {
	opts, err := cfg.NodeOptions()
	if err != nil {
		return nil, err
	}
	nodes := make([]*node.Node, 0, len(opts))
	for _, o := range opts {
		nodes = append(nodes, node.New(o))
	}
	return node.NewRegistry(nodes...)
}

// newEraser protects the user's home directory on top of filesystem roots,
// so a data dir misconfigured as ~ cannot be wiped.
func newEraser() *eraser.Eraser {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return eraser.New()
	}
	return eraser.New(home)
}

func logNodes(registry *node.Registry) {
	for _, n := range registry.Nodes() {
		event := logging.Info().
			Str("node", n.ID()).
			Str("stop_strategy", string(n.Variant().Strategy)).
			Str("data_dir", n.DataDir())
		if n.Program() == "" {
			event.Msg("Node has no program configured; start requests will fail")
			continue
		}
		event.Str("program", n.Program()).Msg("Node configured")
	}
}
