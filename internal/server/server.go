// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/nodekeeper/internal/httpwire"
	"github.com/tomtom215/nodekeeper/internal/logging"
	"github.com/tomtom215/nodekeeper/internal/metrics"
)

// Handler answers one parsed request. It must always return a response.
type Handler interface {
	Serve(ctx context.Context, req *httpwire.Request) *httpwire.Response
}

// Config holds the listener configuration.
type Config struct {
	// Addr is the listen address (host:port).
	Addr string

	// Read bounds request reading. Zero values use httpwire defaults.
	Read httpwire.ReadOptions

	// WriteTimeout bounds writing one response. Default: 10s
	WriteTimeout time.Duration

	// AcceptRate is the number of connections admitted per second.
	// Zero disables admission limiting.
	AcceptRate float64

	// AcceptBurst is the token bucket size. Default: 1 when AcceptRate > 0
	AcceptBurst int
}

// Server is the raw TCP control API server.
type Server struct {
	config  Config
	handler Handler
	limiter *rate.Limiter

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup

	serving    atomic.Bool
	inShutdown atomic.Bool

	baseCtx    context.Context
	baseCancel context.CancelFunc
}

// New creates a Server. It does not bind until Listen or ListenAndServe.
func New(cfg Config, h Handler) *Server {
	if cfg.Read == (httpwire.ReadOptions{}) {
		cfg.Read = httpwire.DefaultReadOptions()
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	s := &Server{
		config:  cfg,
		handler: h,
		conns:   make(map[net.Conn]struct{}),
	}
	if cfg.AcceptRate > 0 {
		burst := cfg.AcceptBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.AcceptRate), burst)
	}
	s.baseCtx, s.baseCancel = context.WithCancel(context.Background())
	return s
}

// Listen binds the listen address without serving, so that bind errors
// surface before the supervisor starts.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inShutdown.Load() {
		return http.ErrServerClosed
	}
	if s.listener != nil {
		return nil
	}
	l, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	s.listener = l
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Ready reports whether the accept loop is running.
func (s *Server) Ready() bool {
	return s.serving.Load()
}

// ListenAndServe binds (unless Listen already did) and serves until
// Shutdown. It always returns a non-nil error; after Shutdown that error
// is http.ErrServerClosed.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	return s.serve(l)
}

func (s *Server) serve(l net.Listener) error {
	log := logging.WithComponent("server")
	log.Info().Str("address", l.Addr().String()).Msg("Control API listening")

	s.serving.Store(true)
	defer s.serving.Store(false)

	var backoff time.Duration
	for {
		conn, err := l.Accept()
		if err != nil {
			if s.inShutdown.Load() {
				return http.ErrServerClosed
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				backoff = nextBackoff(backoff)
				log.Warn().Err(err).Dur("retry_in", backoff).Msg("Accept failed")
				time.Sleep(backoff)
				continue
			}
			s.dropListener(l)
			return fmt.Errorf("accept: %w", err)
		}
		backoff = 0

		if s.limiter != nil && !s.limiter.Allow() {
			metrics.HTTPAcceptThrottled.Inc()
			if err := s.limiter.Wait(s.baseCtx); err != nil {
				_ = conn.Close()
				continue
			}
		}

		if !s.track(conn) {
			_ = conn.Close()
			return http.ErrServerClosed
		}
		go s.handleConn(conn)
	}
}

// dropListener forgets a broken listener so the next ListenAndServe binds
// again.
func (s *Server) dropListener(l net.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = l.Close()
	if s.listener == l {
		s.listener = nil
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	d *= 2
	if d > time.Second {
		d = time.Second
	}
	return d
}

// track registers conn; it refuses once shutdown has begun.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inShutdown.Load() {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	s.wg.Done()
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.untrack(conn)
	defer func() { _ = conn.Close() }()

	metrics.TrackActiveConnection(true)
	defer metrics.TrackActiveConnection(false)

	ctx := logging.ContextWithNewRequestID(s.baseCtx)
	log := logging.Ctx(ctx)

	var resp *httpwire.Response
	req, err := httpwire.ReadRequest(conn, s.config.Read)
	if err != nil {
		metrics.HTTPParseErrors.Inc()
		log.Debug().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("Rejected unreadable request")
		resp = httpwire.Error(400, "bad request")
	} else {
		resp = s.handler.Serve(ctx, req)
	}

	if err := conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout)); err != nil {
		log.Debug().Err(err).Msg("Failed to set write deadline")
	}
	if err := httpwire.WriteResponse(conn, resp); err != nil {
		log.Debug().Err(err).Int("status", resp.Status).Msg("Failed to write response")
	}
}

// Shutdown stops accepting connections and waits for in-flight requests.
// When ctx expires first, remaining connections are closed and ctx's
// error is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.inShutdown.Store(true)
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.baseCancel()
		if errors.Is(err, net.ErrClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.baseCancel()
		s.mu.Lock()
		for conn := range s.conns {
			_ = conn.Close()
		}
		s.mu.Unlock()
		<-done
		return ctx.Err()
	}
}
