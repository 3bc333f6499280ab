// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

// Package eraser removes node data directories with guard rails against
// wiping filesystem roots or other protected locations.
package eraser

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

var (
	// ErrProtectedPath is returned when the target is a root or on the deny list.
	ErrProtectedPath = errors.New("refusing to delete protected path")

	// ErrUnsupportedType is returned for entries that are neither regular
	// files, directories nor symlinks.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// Eraser deletes directory trees bottom-up.
type Eraser struct {
	deny map[string]bool
}

// New creates an Eraser that, in addition to filesystem and drive roots,
// refuses every path in deny.
func New(deny ...string) *Eraser {
	e := &Eraser{deny: make(map[string]bool, len(deny))}
	for _, p := range deny {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			e.deny[filepath.Clean(abs)] = true
		}
		if resolved, err := filepath.EvalSymlinks(p); err == nil {
			if abs, err := filepath.Abs(resolved); err == nil {
				e.deny[filepath.Clean(abs)] = true
			}
		}
	}
	return e
}

// Protected reports whether path may not be deleted.
func (e *Eraser) Protected(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return true
	}
	abs = filepath.Clean(abs)
	if isRoot(abs) {
		return true
	}
	return e.deny[abs]
}

// isRoot matches "/" on Unix and drive or UNC volume roots on Windows.
func isRoot(abs string) bool {
	return filepath.Dir(abs) == abs
}

// Resolve returns the directory whose contents RemoveRecursive clears for
// path: the fully resolved target when path or one of its parents is a
// symlink, otherwise path itself. Callers checking the outcome should
// inspect this path rather than the link.
func (e *Eraser) Resolve(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return resolved
}

// RemoveRecursive deletes path and everything below it. When path itself
// is a symlink to a directory, the target's contents are removed and the
// link and target directory are left in place. Symlinks below the root are
// removed, never followed. Both path and its resolved target must pass
// Protected. The first failure inside a directory aborts that directory
// and is returned; entries already removed stay removed. A path that does
// not exist is not an error.
func (e *Eraser) RemoveRecursive(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrProtectedPath)
	}
	if e.Protected(path) {
		return fmt.Errorf("%w: %s", ErrProtectedPath, path)
	}

	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	isLink := info.Mode()&fs.ModeSymlink != 0

	resolved, err := filepath.EvalSymlinks(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && isLink:
		// dangling link
		return remove(path)
	case err != nil:
		return err
	}
	if e.Protected(resolved) {
		return fmt.Errorf("%w: %s resolves to %s", ErrProtectedPath, path, resolved)
	}

	if !isLink {
		return removeEntry(path, info.Mode())
	}

	target, err := os.Stat(resolved)
	if err != nil {
		return err
	}
	if !target.IsDir() {
		return remove(path)
	}
	return clearDir(resolved)
}

func removeEntry(path string, mode fs.FileMode) error {
	switch {
	case mode&fs.ModeSymlink != 0, mode.IsRegular():
		return remove(path)
	case mode.IsDir():
		if err := clearDir(path); err != nil {
			return err
		}
		return remove(path)
	default:
		return fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, path, mode.Type())
	}
}

// clearDir removes every entry of dir, leaving dir itself.
func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		child := filepath.Join(dir, entry.Name())
		if err := removeEntry(child, entry.Type()); err != nil {
			return err
		}
	}
	return nil
}

func remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// IsEmpty reports whether dir has no entries. A missing directory counts as
// empty.
func IsEmpty(dir string) (bool, error) {
	f, err := os.Open(dir) //nolint:gosec // caller supplied data directory
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()

	_, err = f.ReadDir(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}
