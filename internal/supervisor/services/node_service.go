// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package services

import (
	"context"
	"time"

	"github.com/tomtom215/nodekeeper/internal/logging"
)

// Node is the part of a managed node the service needs at shutdown.
type Node interface {
	ID() string
	IsRunning() bool
	Stop(graceful time.Duration) error
}

// NodeService ties a node's lifetime to the supervisor tree. It does not
// start the node; the control API does that on request. When the tree
// shuts down it stops the node with its configured strategy so no child
// process outlives the daemon.
type NodeService struct {
	node  Node
	grace time.Duration
	name  string
}

// NewNodeService creates the shutdown guard for n.
func NewNodeService(n Node, grace time.Duration) *NodeService {
	return &NodeService{
		node:  n,
		grace: grace,
		name:  "node-" + n.ID(),
	}
}

// Serve implements suture.Service. It blocks until ctx is canceled.
func (s *NodeService) Serve(ctx context.Context) error {
	<-ctx.Done()

	if !s.node.IsRunning() {
		return ctx.Err()
	}

	log := logging.With().Str("node", s.node.ID()).Logger()
	log.Info().Dur("grace", s.grace).Msg("Stopping node for shutdown")
	if err := s.node.Stop(s.grace); err != nil {
		log.Error().Err(err).Msg("Node did not stop cleanly")
	}
	return ctx.Err()
}

// String implements fmt.Stringer for logging.
func (s *NodeService) String() string {
	return s.name
}
