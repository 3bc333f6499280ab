// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

// Package proxy forwards the node owner and foreign API calls to the
// running node, authenticating them with the secret found in that node's
// data directory.
package proxy

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/nodekeeper/internal/logging"
	"github.com/tomtom215/nodekeeper/internal/metrics"
	"github.com/tomtom215/nodekeeper/internal/node"
)

var (
	// ErrNoActiveNode is returned when no registered node is running.
	ErrNoActiveNode = errors.New("no active node")

	// ErrUpstream wraps network failures and open-circuit rejections.
	ErrUpstream = errors.New("upstream unavailable")
)

// maxReplyBytes caps how much of an upstream reply is relayed.
const maxReplyBytes = 32 << 20

// Kind selects one of the two forwarded APIs.
type Kind string

const (
	Owner   Kind = "owner"
	Foreign Kind = "foreign"
)

// Path returns the route and upstream path for the kind, e.g. "/v2/owner".
func (k Kind) Path() string { return "/v2/" + string(k) }

// Target is the node a call is forwarded for.
type Target struct {
	NodeID     string
	OwnerKey   string
	ForeignKey string
}

func (t Target) key(kind Kind) string {
	if kind == Foreign {
		return t.ForeignKey
	}
	return t.OwnerKey
}

// Resolver picks the node that should receive forwarded calls.
type Resolver interface {
	Active() (Target, bool)
}

type registryResolver struct {
	registry *node.Registry
}

// RegistryResolver resolves to the first running node of r, in id order,
// reading its secrets fresh on every call.
func RegistryResolver(r *node.Registry) Resolver {
	return registryResolver{registry: r}
}

func (rr registryResolver) Active() (Target, bool) {
	n, ok := rr.registry.FirstRunning()
	if !ok {
		return Target{}, false
	}
	st := n.Status()
	return Target{NodeID: n.ID(), OwnerKey: st.OwnerAPIKey, ForeignKey: st.ForeignAPIKey}, true
}

// Config configures a Forwarder.
type Config struct {
	// Upstream is the node API base URL, e.g. http://127.0.0.1:3413.
	Upstream string
	// BasicUser is the user half of the injected Basic credential.
	BasicUser string
	Timeout   time.Duration
	// BreakerFailures consecutive network failures open the circuit for
	// BreakerTimeout.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// DefaultConfig returns the stock Grin node API settings.
func DefaultConfig() Config {
	return Config{
		Upstream:        "http://127.0.0.1:3413",
		BasicUser:       "grin",
		Timeout:         60 * time.Second,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// Request is the inbound call being forwarded.
type Request struct {
	ContentType   string
	Authorization string
	Body          []byte
}

// Reply is the upstream answer, relayed verbatim.
type Reply struct {
	Status int
	Body   []byte
}

// Forwarder relays calls to the node API.
type Forwarder struct {
	upstream *url.URL
	user     string
	client   *http.Client
	resolver Resolver
	cb       *gobreaker.CircuitBreaker[Reply]
	name     string
}

// New creates a Forwarder.
func New(cfg Config, resolver Resolver) (*Forwarder, error) {
	u, err := url.Parse(cfg.Upstream)
	if err != nil {
		return nil, fmt.Errorf("parse upstream %q: %w", cfg.Upstream, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("upstream %q: scheme must be http or https", cfg.Upstream)
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = DefaultConfig().BreakerFailures
	}

	f := &Forwarder{
		upstream: u,
		user:     cfg.BasicUser,
		resolver: resolver,
		name:     "node-api",
		client: &http.Client{
			Timeout: cfg.Timeout,
			// Redirects are relayed to the caller, not followed.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}

	metrics.CircuitBreakerState.WithLabelValues(f.name).Set(0)

	failures := cfg.BreakerFailures
	f.cb = gobreaker.NewCircuitBreaker[Reply](gobreaker.Settings{
		Name:        f.name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})
	return f, nil
}

// Forward sends req to the running node's API of the given kind.
// It returns ErrNoActiveNode without any network activity when no node is
// running, and an error wrapping ErrUpstream when the node cannot be reached.
// Any HTTP answer, whatever its status, is a successful Reply.
func (f *Forwarder) Forward(ctx context.Context, kind Kind, req Request) (Reply, error) {
	target, ok := f.resolver.Active()
	if !ok {
		metrics.RecordProxyRequest(string(kind), "no_node", 0)
		return Reply{}, ErrNoActiveNode
	}

	authorization := req.Authorization
	if key := target.key(kind); key != "" {
		authorization = BasicAuth(f.user, key)
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/json"
	}

	log := logging.CtxWith(ctx).Str("kind", string(kind)).Str("target_node", target.NodeID).Logger()
	log.Debug().
		Str("authorization", logging.SanitizeAuthorization(authorization)).
		Int("bytes", len(req.Body)).
		Msg("Forwarding node API call")

	begin := time.Now()
	reply, err := f.cb.Execute(func() (Reply, error) {
		return f.post(ctx, kind, contentType, authorization, req.Body)
	})
	elapsed := time.Since(begin)

	if err != nil {
		result := "failure"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = "rejected"
		}
		metrics.CircuitBreakerRequests.WithLabelValues(f.name, result).Inc()
		metrics.RecordProxyRequest(string(kind), "upstream_error", elapsed)
		log.Warn().Err(err).Dur("elapsed", elapsed).Msg("Node API call failed")
		return Reply{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	metrics.CircuitBreakerRequests.WithLabelValues(f.name, "success").Inc()
	metrics.RecordProxyRequest(string(kind), "relayed", elapsed)
	log.Debug().Int("status", reply.Status).Dur("elapsed", elapsed).Msg("Node API call relayed")
	return reply, nil
}

func (f *Forwarder) post(ctx context.Context, kind Kind, contentType, authorization string, body []byte) (Reply, error) {
	endpoint := f.upstream.JoinPath(kind.Path())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return Reply{}, err
	}
	httpReq.Header.Set("Content-Type", contentType)
	if authorization != "" {
		httpReq.Header.Set("Authorization", authorization)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return Reply{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return Reply{}, fmt.Errorf("read reply: %w", err)
	}
	return Reply{Status: resp.StatusCode, Body: payload}, nil
}

// BasicAuth builds a Basic Authorization header value.
func BasicAuth(user, secret string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+secret))
}

// State returns the circuit breaker state name.
func (f *Forwarder) State() string {
	return stateToString(f.cb.State())
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// NoActiveNodeMessage is the client-facing error for ErrNoActiveNode.
func NoActiveNodeMessage(kind Kind) string {
	return "No active node to handle " + kind.Path()
}
