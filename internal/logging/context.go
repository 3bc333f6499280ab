// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	// requestIDKey is the context key for per-connection request IDs.
	requestIDKey contextKey = "request_id"

	// nodeIDKey is the context key for the node a request targets.
	nodeIDKey contextKey = "node"
)

// GenerateRequestID creates a new unique request ID.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithRequestID returns a new context with the given request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// ContextWithNewRequestID returns a context with a newly generated request ID.
func ContextWithNewRequestID(ctx context.Context) context.Context {
	return ContextWithRequestID(ctx, GenerateRequestID())
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if not present.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithNodeID tags ctx with the node a handler is operating on.
func ContextWithNodeID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, nodeIDKey, id)
}

// NodeIDFromContext retrieves the node ID from context.
func NodeIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(nodeIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns the global logger with request_id and node fields from ctx added.
//
//	logging.Ctx(ctx).Info().Msg("Node stopped")
//	// {"level":"info","request_id":"...","node":"rust","message":"Node stopped"}
func Ctx(ctx context.Context) *zerolog.Logger {
	l := CtxWith(ctx).Logger()
	return &l
}

// CtxWith returns a logger context builder with the context fields pre-populated.
func CtxWith(ctx context.Context) zerolog.Context {
	logCtx := Logger().With()
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		logCtx = logCtx.Str("request_id", requestID)
	}
	if nodeID := NodeIDFromContext(ctx); nodeID != "" {
		logCtx = logCtx.Str("node", nodeID)
	}
	return logCtx
}

// WithComponent creates a child logger with a component field.
//
//	proxyLog := logging.WithComponent("proxy")
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}
