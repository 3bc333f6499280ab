// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package node

import (
	"os"
	"path/filepath"
	"strings"
)

// Default secret file names inside a node's data directory.
const (
	DefaultOwnerSecretFile   = ".api_secret"
	DefaultForeignSecretFile = ".foreign_api_secret"
)

// ReadSecret returns the whitespace-trimmed contents of dataDir/name, or ""
// if either is unset or the file cannot be read. It is never cached so
// that secrets rotated by the node take effect on the next request.
func ReadSecret(dataDir, name string) string {
	if dataDir == "" || name == "" {
		return ""
	}
	b, err := os.ReadFile(filepath.Join(dataDir, name)) //nolint:gosec // path is operator configured
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
