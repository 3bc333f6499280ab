// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package api

import (
	"context"
	"time"

	"github.com/tomtom215/nodekeeper/internal/node"
	"github.com/tomtom215/nodekeeper/internal/proxy"
)

// NodeController is the part of a node the handlers drive.
type NodeController interface {
	ID() string
	Start(extraArgs []string) error
	Stop(graceful time.Duration) error
	Restart(graceful time.Duration, extraArgs []string) error
	Status() node.Status
	LastLogLines(n int) []string
	DataDir() string
	IsRunning() bool
}

// NodeSet looks up nodes by id.
type NodeSet interface {
	Get(id string) (NodeController, bool)
	// All returns every node in id order.
	All() []NodeController
}

// Eraser deletes a data directory tree.
type Eraser interface {
	RemoveRecursive(path string) error
	// Resolve names the directory RemoveRecursive clears for path.
	Resolve(path string) string
}

// Forwarder relays owner and foreign API calls.
type Forwarder interface {
	Forward(ctx context.Context, kind proxy.Kind, req proxy.Request) (proxy.Reply, error)
}

// RegistryNodes adapts a node.Registry to NodeSet.
func RegistryNodes(r *node.Registry) NodeSet {
	return registryNodes{registry: r}
}

type registryNodes struct {
	registry *node.Registry
}

func (rn registryNodes) Get(id string) (NodeController, bool) {
	n, ok := rn.registry.Get(id)
	if !ok {
		return nil, false
	}
	return n, true
}

func (rn registryNodes) All() []NodeController {
	nodes := rn.registry.Nodes()
	out := make([]NodeController, len(nodes))
	for i, n := range nodes {
		out[i] = n
	}
	return out
}
