// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

//go:build !windows

package eraser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"
)

func TestRemoveRecursive_UnsupportedType(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "node")
	writeFile(t, filepath.Join(dir, "a_file"), "x")
	if err := unix.Mkfifo(filepath.Join(dir, "b_fifo"), 0o600); err != nil {
		t.Skipf("mkfifo unavailable: %v", err)
	}
	writeFile(t, filepath.Join(dir, "c_file"), "y")

	err := New().RemoveRecursive(dir)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("RemoveRecursive() error = %v, want ErrUnsupportedType", err)
	}

	// Entries before the failure are gone, the rest of the branch remains.
	if _, err := os.Lstat(filepath.Join(dir, "a_file")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("a_file should have been removed, stat err = %v", err)
	}
	if _, err := os.Lstat(filepath.Join(dir, "c_file")); err != nil {
		t.Errorf("c_file should remain after abort, stat err = %v", err)
	}
}

func TestRemoveRecursive_PermissionFailure(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "node")
	locked := filepath.Join(dir, "locked")
	writeFile(t, filepath.Join(locked, "f"), "x")
	if err := os.Chmod(locked, 0o500); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o750) })

	if err := New().RemoveRecursive(dir); err == nil {
		t.Error("RemoveRecursive() error = nil, want permission failure")
	}
	empty, err := IsEmpty(dir)
	if err != nil || empty {
		t.Errorf("IsEmpty() = (%v, %v), want non-empty after failed branch", empty, err)
	}
}
