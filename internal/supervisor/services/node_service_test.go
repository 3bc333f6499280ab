// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

type mockNode struct {
	mu      sync.Mutex
	running bool
	stopErr error
	stops   []time.Duration
}

func (m *mockNode) ID() string { return "rust" }

func (m *mockNode) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *mockNode) Stop(graceful time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops = append(m.stops, graceful)
	if m.stopErr == nil {
		m.running = false
	}
	return m.stopErr
}

func (m *mockNode) stopCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.stops...)
}

func TestNodeService_Interface(t *testing.T) {
	var _ suture.Service = (*NodeService)(nil)
}

func TestNodeService_Serve(t *testing.T) {
	tests := []struct {
		name      string
		running   bool
		stopErr   error
		wantStops int
	}{
		{"stops running node", true, nil, 1},
		{"leaves idle node alone", false, nil, 0},
		{"stop failure still returns", true, errors.New("stuck"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &mockNode{running: tt.running, stopErr: tt.stopErr}
			svc := NewNodeService(n, 4*time.Second)

			ctx, cancel := context.WithCancel(context.Background())
			errCh := make(chan error, 1)
			go func() { errCh <- svc.Serve(ctx) }()

			select {
			case <-errCh:
				t.Fatal("Serve returned before cancellation")
			case <-time.After(20 * time.Millisecond):
			}
			cancel()

			select {
			case err := <-errCh:
				if !errors.Is(err, context.Canceled) {
					t.Errorf("expected context.Canceled, got %v", err)
				}
			case <-time.After(time.Second):
				t.Fatal("Serve did not return after cancellation")
			}

			stops := n.stopCalls()
			if len(stops) != tt.wantStops {
				t.Fatalf("Stop called %d times, want %d", len(stops), tt.wantStops)
			}
			if tt.wantStops > 0 && stops[0] != 4*time.Second {
				t.Errorf("Stop grace = %v, want 4s", stops[0])
			}
		})
	}
}

func TestNodeService_String(t *testing.T) {
	svc := NewNodeService(&mockNode{}, time.Second)
	if svc.String() != "node-rust" {
		t.Errorf("expected 'node-rust', got %q", svc.String())
	}
}
