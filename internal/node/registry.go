// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package node

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownNode is returned by Lookup for ids that are not registered.
var ErrUnknownNode = errors.New("unknown id")

// Registry maps node ids to nodes. It is populated once by NewRegistry and
// is read-only afterwards.
type Registry struct {
	byID  map[string]*Node
	order []*Node
}

// NewRegistry builds a registry from nodes. Ids must be non-empty and unique.
func NewRegistry(nodes ...*Node) (*Registry, error) {
	r := &Registry{byID: make(map[string]*Node, len(nodes))}
	for _, n := range nodes {
		if n.ID() == "" {
			return nil, errors.New("node id must not be empty")
		}
		if _, dup := r.byID[n.ID()]; dup {
			return nil, fmt.Errorf("duplicate node id %q", n.ID())
		}
		r.byID[n.ID()] = n
		r.order = append(r.order, n)
	}
	sort.Slice(r.order, func(i, j int) bool { return r.order[i].ID() < r.order[j].ID() })
	return r, nil
}

// Get returns the node registered under id.
func (r *Registry) Get(id string) (*Node, bool) {
	n, ok := r.byID[id]
	return n, ok
}

// Lookup is Get with an error suitable for wrapping.
func (r *Registry) Lookup(id string) (*Node, error) {
	if n, ok := r.byID[id]; ok {
		return n, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownNode, id)
}

// Nodes returns all nodes in id order.
func (r *Registry) Nodes() []*Node {
	out := make([]*Node, len(r.order))
	copy(out, r.order)
	return out
}

// IDs returns all node ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	for i, n := range r.order {
		ids[i] = n.ID()
	}
	return ids
}

// FirstRunning returns the first node, in id order, with a live process.
func (r *Registry) FirstRunning() (*Node, bool) {
	for _, n := range r.order {
		if n.IsRunning() {
			return n, true
		}
	}
	return nil, false
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int { return len(r.order) }
