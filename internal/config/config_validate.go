// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package config

import (
	"fmt"
	"net"
	"net/url"

	"github.com/tomtom215/nodekeeper/internal/validation"
)

// Validate checks that the configuration is usable. Per-field rules live in
// the validate struct tags; the checks here span fields or need more than
// a tag can express.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if c.Server.AcceptRate > 0 && c.Server.AcceptBurst < 1 {
		return fmt.Errorf("server.accept_burst must be at least 1 when server.accept_rate is set, got %d", c.Server.AcceptBurst)
	}

	if err := validateHTTPURL(c.Proxy.Upstream, "proxy.upstream"); err != nil {
		return err
	}

	if c.Admin.Enabled {
		if _, _, err := net.SplitHostPort(c.Admin.Addr); err != nil {
			return fmt.Errorf("admin.addr %q is not host:port: %w", c.Admin.Addr, err)
		}
	}
	return nil
}

// validateHTTPURL validates that a URL is a base http or https URL.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}

	// Allow trailing slash but no other paths
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		return fmt.Errorf("%s should be base URL only, remove path: %s", fieldName, parsedURL.Path)
	}

	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}

	return nil
}
