// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package api

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"

	"github.com/tomtom215/nodekeeper/internal/eraser"
	"github.com/tomtom215/nodekeeper/internal/httpwire"
	"github.com/tomtom215/nodekeeper/internal/logging"
	"github.com/tomtom215/nodekeeper/internal/metrics"
	"github.com/tomtom215/nodekeeper/internal/node"
	"github.com/tomtom215/nodekeeper/internal/proxy"
)

// defaultLogLines is returned by /logs when n is absent or not positive.
const defaultLogLines = 200

// Handler holds the route implementations.
type Handler struct {
	deps Deps
}

type statusResponse struct {
	Nodes map[string]node.Status `json:"nodes"`
}

type actionResponse struct {
	OK     bool        `json:"ok"`
	Status node.Status `json:"status"`
}

type logsResponse struct {
	ID    string   `json:"id"`
	Lines []string `json:"lines"`
}

type deleteResponse struct {
	ID      string `json:"id"`
	DataDir string `json:"dataDir"`
	OK      bool   `json:"ok"`
}

// Preflight answers a CORS OPTIONS request.
func (h *Handler) Preflight(req *httpwire.Request) *httpwire.Response {
	return httpwire.NoContent(httpwire.PreflightAllowHeaders(req.Header("access-control-request-headers")))
}

// Status reports every node.
func (h *Handler) Status() *httpwire.Response {
	out := statusResponse{Nodes: make(map[string]node.Status)}
	for _, n := range h.deps.Nodes.All() {
		out.Nodes[n.ID()] = n.Status()
	}
	return httpwire.JSON(200, out)
}

// Start starts a node with the extra arguments from the body.
func (h *Handler) Start(ctx context.Context, n NodeController, req *httpwire.Request) *httpwire.Response {
	err := n.Start(parseExtraArgs(req.Body))
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Start failed")
	}
	return actionResult(n, err)
}

// Stop stops a node.
func (h *Handler) Stop(ctx context.Context, n NodeController, _ *httpwire.Request) *httpwire.Response {
	err := n.Stop(h.deps.Grace)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Stop failed")
	}
	return actionResult(n, err)
}

// Restart stops and starts a node with the extra arguments from the body.
func (h *Handler) Restart(ctx context.Context, n NodeController, req *httpwire.Request) *httpwire.Response {
	err := n.Restart(h.deps.Grace, parseExtraArgs(req.Body))
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Restart failed")
	}
	return actionResult(n, err)
}

func actionResult(n NodeController, err error) *httpwire.Response {
	status := 200
	if err != nil {
		status = 500
	}
	return httpwire.JSON(status, actionResponse{OK: err == nil, Status: n.Status()})
}

// Logs returns the most recent output lines of a node.
func (h *Handler) Logs(_ context.Context, n NodeController, req *httpwire.Request) *httpwire.Response {
	count := defaultLogLines
	if v, err := strconv.Atoi(req.Query.Get("n")); err == nil && v > 0 {
		count = v
	}
	return httpwire.JSON(200, logsResponse{ID: n.ID(), Lines: n.LastLogLines(count)})
}

// Delete stops a node (best effort) and erases its data directory. The
// call succeeds when the directory ends up with no entries, even if the
// recursive removal reported an error, so a mount point whose contents
// were cleared counts as deleted. A symlinked data dir is judged by its
// target.
func (h *Handler) Delete(ctx context.Context, n NodeController, _ *httpwire.Request) *httpwire.Response {
	log := logging.Ctx(ctx)

	if n.IsRunning() {
		if err := n.Stop(h.deps.Grace); err != nil {
			log.Warn().Err(err).Msg("Stop before delete failed, deleting anyway")
		}
	}

	dir := n.DataDir()
	if dir == "" {
		return httpwire.Error(500, "dataDir is empty")
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	target := h.deps.Eraser.Resolve(dir)
	removeErr := h.deps.Eraser.RemoveRecursive(dir)
	refused := errors.Is(removeErr, eraser.ErrProtectedPath)
	empty, checkErr := eraser.IsEmpty(target)
	ok := !refused && checkErr == nil && empty

	switch {
	case refused:
		metrics.RecordDataDirDelete(n.ID(), "refused")
		log.Error().Err(removeErr).Str("data_dir", dir).Msg("Refused to delete protected data directory")
	case removeErr != nil && ok:
		metrics.RecordDataDirDelete(n.ID(), "emptied")
		log.Warn().Err(removeErr).Str("data_dir", dir).Msg("Data directory removal reported an error but no entries remain")
	case ok:
		metrics.RecordDataDirDelete(n.ID(), "removed")
		log.Info().Str("data_dir", dir).Msg("Data directory deleted")
	default:
		metrics.RecordDataDirDelete(n.ID(), "failed")
		log.Error().Err(removeErr).AnErr("check_error", checkErr).Str("data_dir", dir).Str("target", target).Msg("Data directory deletion failed")
	}

	status := 200
	if !ok {
		status = 500
	}
	return httpwire.JSON(status, deleteResponse{ID: n.ID(), DataDir: dir, OK: ok})
}

// Proxy forwards an owner or foreign API call to the running node.
func (h *Handler) Proxy(ctx context.Context, kind proxy.Kind, req *httpwire.Request) *httpwire.Response {
	reply, err := h.deps.Proxy.Forward(ctx, kind, proxy.Request{
		ContentType:   req.Header("content-type"),
		Authorization: req.Header("authorization"),
		Body:          req.Body,
	})
	switch {
	case errors.Is(err, proxy.ErrNoActiveNode):
		return httpwire.Error(500, proxy.NoActiveNodeMessage(kind))
	case err != nil:
		return httpwire.Error(500, "upstream unavailable")
	}
	return httpwire.RawJSON(reply.Status, reply.Body)
}
