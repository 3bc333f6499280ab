// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package api

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/nodekeeper/internal/node"
	"github.com/tomtom215/nodekeeper/internal/proxy"
)

type fakeNode struct {
	mu sync.Mutex

	id       string
	running  bool
	dataDir  string
	logs     []string
	startErr error
	stopErr  error
	panics   bool

	startArgs [][]string
	stopGrace []time.Duration
	logsAsked []int
}

func (f *fakeNode) ID() string { return f.id }

func (f *fakeNode) Start(extraArgs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startArgs = append(f.startArgs, extraArgs)
	if f.startErr != nil {
		return f.startErr
	}
	f.running = true
	return nil
}

func (f *fakeNode) Stop(graceful time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopGrace = append(f.stopGrace, graceful)
	if f.stopErr != nil {
		return f.stopErr
	}
	f.running = false
	return nil
}

func (f *fakeNode) Restart(graceful time.Duration, extraArgs []string) error {
	if err := f.Stop(graceful); err != nil {
		return err
	}
	return f.Start(extraArgs)
}

func (f *fakeNode) Status() node.Status {
	if f.panics {
		panic("status exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return node.Status{ID: f.id, Running: f.running, Args: []string{}}
}

func (f *fakeNode) LastLogLines(n int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logsAsked = append(f.logsAsked, n)
	if n > len(f.logs) {
		n = len(f.logs)
	}
	return append([]string{}, f.logs[len(f.logs)-n:]...)
}

func (f *fakeNode) DataDir() string { return f.dataDir }

func (f *fakeNode) IsRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

type fakeNodes map[string]*fakeNode

func (fn fakeNodes) Get(id string) (NodeController, bool) {
	n, ok := fn[id]
	if !ok {
		return nil, false
	}
	return n, true
}

func (fn fakeNodes) All() []NodeController {
	ids := make([]string, 0, len(fn))
	for id := range fn {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]NodeController, 0, len(ids))
	for _, id := range ids {
		out = append(out, fn[id])
	}
	return out
}

type fakeEraser struct {
	fn      func(path string) error
	resolve func(path string) string
	paths   []string
}

func (e *fakeEraser) Resolve(path string) string {
	if e.resolve == nil {
		return path
	}
	return e.resolve(path)
}

func (e *fakeEraser) RemoveRecursive(path string) error {
	e.paths = append(e.paths, path)
	if e.fn == nil {
		return nil
	}
	return e.fn(path)
}

type fakeForwarder struct {
	reply proxy.Reply
	err   error

	kinds []proxy.Kind
	reqs  []proxy.Request
}

func (f *fakeForwarder) Forward(_ context.Context, kind proxy.Kind, req proxy.Request) (proxy.Reply, error) {
	f.kinds = append(f.kinds, kind)
	f.reqs = append(f.reqs, req)
	return f.reply, f.err
}
