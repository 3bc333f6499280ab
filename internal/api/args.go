// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package api

import (
	"strings"

	"github.com/goccy/go-json"
)

// startBody is the optional JSON body of start and restart.
type startBody struct {
	Args json.RawMessage `json:"args"`
}

// parseExtraArgs reads extra arguments from a start or restart body. The
// args field may be an array of strings or one comma separated string.
// Anything unparsable means no extra arguments.
func parseExtraArgs(body []byte) []string {
	if len(body) == 0 {
		return nil
	}
	var sb startBody
	if err := json.Unmarshal(body, &sb); err != nil || len(sb.Args) == 0 {
		return nil
	}

	var list []any
	if err := json.Unmarshal(sb.Args, &list); err == nil {
		args := make([]string, 0, len(list))
		for _, v := range list {
			if s, ok := v.(string); ok {
				args = append(args, s)
			}
		}
		return args
	}

	var csv string
	if err := json.Unmarshal(sb.Args, &csv); err == nil {
		var args []string
		for _, part := range strings.Split(csv, ",") {
			if part != "" {
				args = append(args, part)
			}
		}
		return args
	}
	return nil
}
