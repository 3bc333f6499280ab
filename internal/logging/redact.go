// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package logging

import "strings"

// sensitiveKeys are header or field names whose values are credentials.
var sensitiveKeys = map[string]bool{
	"authorization":   true,
	"secret":          true,
	"api_secret":      true,
	"owner_api_key":   true,
	"foreign_api_key": true,
	"ownerapikey":     true,
	"foreignapikey":   true,
	"password":        true,
	"token":           true,
}

// SanitizeToken masks a credential, keeping only enough to tell two apart.
// Short values are fully masked.
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeAuthorization masks the credential part of an Authorization header
// value while keeping the scheme visible ("Basic ***").
func SanitizeAuthorization(value string) string {
	scheme, cred, found := strings.Cut(strings.TrimSpace(value), " ")
	if !found {
		return SanitizeToken(value)
	}
	return scheme + " " + SanitizeToken(cred)
}

// SanitizeValue masks value when key names a credential.
func SanitizeValue(key, value string) string {
	lower := strings.ToLower(key)
	if lower == "authorization" {
		return SanitizeAuthorization(value)
	}
	if sensitiveKeys[lower] {
		return SanitizeToken(value)
	}
	return value
}

// SanitizeHeaders returns a copy of headers with credential values masked.
func SanitizeHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = SanitizeValue(k, v)
	}
	return out
}
