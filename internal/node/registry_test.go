// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package node

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(
		New(Options{ID: "rust"}),
		New(Options{ID: "grinpp"}),
	)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	if got := r.IDs(); !reflect.DeepEqual(got, []string{"grinpp", "rust"}) {
		t.Errorf("IDs() = %v, want sorted ids", got)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
	if n, ok := r.Get("rust"); !ok || n.ID() != "rust" {
		t.Errorf("Get(rust) = (%v, %v)", n, ok)
	}
	if _, ok := r.Get("btc"); ok {
		t.Error("Get(btc) ok = true, want false")
	}
}

func TestNewRegistry_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := NewRegistry(New(Options{ID: "rust"}), New(Options{ID: "rust"})); err == nil {
		t.Error("expected error for duplicate ids")
	}
	if _, err := NewRegistry(New(Options{})); err == nil {
		t.Error("expected error for empty id")
	}
}

func TestRegistry_Lookup(t *testing.T) {
	t.Parallel()

	r, _ := NewRegistry(New(Options{ID: "rust"}))

	if _, err := r.Lookup("rust"); err != nil {
		t.Errorf("Lookup(rust) error = %v", err)
	}
	_, err := r.Lookup("nope")
	if !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Lookup(nope) error = %v, want ErrUnknownNode", err)
	}
}

func TestRegistry_FirstRunning_None(t *testing.T) {
	t.Parallel()

	r, _ := NewRegistry(New(Options{ID: "rust"}), New(Options{ID: "grinpp"}))
	if n, ok := r.FirstRunning(); ok {
		t.Errorf("FirstRunning() = %s, want none", n.ID())
	}
}
