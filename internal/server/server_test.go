// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/nodekeeper/internal/httpwire"
	"github.com/tomtom215/nodekeeper/internal/logging"
)

type recordingHandler struct {
	mu       sync.Mutex
	requests []*httpwire.Request
	ids      []string
	block    chan struct{}
}

func (h *recordingHandler) Serve(ctx context.Context, req *httpwire.Request) *httpwire.Response {
	h.mu.Lock()
	h.requests = append(h.requests, req)
	h.ids = append(h.ids, logging.RequestIDFromContext(ctx))
	block := h.block
	h.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
		}
	}
	return httpwire.JSON(200, map[string]string{"path": req.Path})
}

func startServer(t *testing.T, cfg Config, h Handler) (*Server, string, chan error) {
	t.Helper()
	cfg.Addr = "127.0.0.1:0"
	s := New(cfg, h)
	if err := s.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	errCh := make(chan error, 1)
	go func() { errCh <- s.ListenAndServe() }()

	deadline := time.Now().Add(2 * time.Second)
	for !s.Ready() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s, s.Addr().String(), errCh
}

func roundTrip(t *testing.T, addr, raw string) string {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = conn.Close() }()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	if _, err := io.WriteString(conn, raw); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(out)
}

func TestServer_ServesOneRequestPerConnection(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{}
	_, addr, _ := startServer(t, Config{}, h)

	out := roundTrip(t, addr, "GET /status?x=1 HTTP/1.1\r\nHost: localhost\r\n\r\n")

	if !strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("response = %q, want 200 status line", out)
	}
	if !strings.Contains(out, "Connection: close\r\n") {
		t.Errorf("response missing Connection: close: %q", out)
	}
	if !strings.HasSuffix(out, `{"path":"/status"}`) {
		t.Errorf("response body wrong: %q", out)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.requests) != 1 || h.requests[0].Query.Get("x") != "1" {
		t.Fatalf("requests = %+v", h.requests)
	}
	if h.ids[0] == "" {
		t.Error("handler context has no request id")
	}
}

func TestServer_BadRequest(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{}
	_, addr, _ := startServer(t, Config{}, h)

	out := roundTrip(t, addr, "garbage\r\n\r\n")
	if !strings.HasPrefix(out, "HTTP/1.1 400 Bad Request\r\n") {
		t.Fatalf("response = %q, want 400", out)
	}
	if !strings.HasSuffix(out, `{"error":"bad request"}`) {
		t.Errorf("body = %q", out)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.requests) != 0 {
		t.Errorf("handler called for malformed request")
	}
}

func TestServer_ConcurrentConnections(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{}
	_, addr, _ := startServer(t, Config{}, h)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, err := net.Dial("tcp", addr)
			if err != nil {
				t.Errorf("dial: %v", err)
				return
			}
			defer func() { _ = conn.Close() }()
			_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
			_, _ = io.WriteString(conn, "GET /status HTTP/1.1\r\n\r\n")
			line, err := bufio.NewReader(conn).ReadString('\n')
			if err != nil || line != "HTTP/1.1 200 OK\r\n" {
				t.Errorf("status line = %q, err = %v", line, err)
			}
		}()
	}
	wg.Wait()
}

func TestServer_Shutdown(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{}
	s, addr, errCh := startServer(t, Config{}, h)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("ListenAndServe() = %v, want http.ErrServerClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ListenAndServe did not return after Shutdown")
	}

	if _, err := net.DialTimeout("tcp", addr, 200*time.Millisecond); err == nil {
		t.Error("listener still accepting after Shutdown")
	}
	if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		t.Errorf("ListenAndServe after Shutdown = %v, want http.ErrServerClosed", err)
	}
}

func TestServer_ShutdownTimeoutClosesConnections(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{block: make(chan struct{})}
	s, addr, _ := startServer(t, Config{}, h)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = conn.Close() }()
	_, _ = io.WriteString(conn, "POST /stop/rust HTTP/1.1\r\n\r\n")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h.mu.Lock()
		n := len(h.requests)
		h.mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := s.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() = %v, want context.DeadlineExceeded", err)
	}
}

func TestServer_AcceptRateLimit(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{}
	_, addr, _ := startServer(t, Config{AcceptRate: 20, AcceptBurst: 1}, h)

	start := time.Now()
	for i := 0; i < 3; i++ {
		out := roundTrip(t, addr, "GET /status HTTP/1.1\r\n\r\n")
		if !strings.HasPrefix(out, "HTTP/1.1 200 OK") {
			t.Fatalf("request %d: %q", i, out)
		}
	}
	// Burst 1 at 20/s admits the second and third connections 50ms apart.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("three connections took %v, want throttling", elapsed)
	}
}

func TestNextBackoff(t *testing.T) {
	t.Parallel()

	d := nextBackoff(0)
	if d != 5*time.Millisecond {
		t.Fatalf("first backoff = %v", d)
	}
	for i := 0; i < 20; i++ {
		d = nextBackoff(d)
	}
	if d != time.Second {
		t.Errorf("backoff cap = %v, want 1s", d)
	}
}

func TestListen_BindError(t *testing.T) {
	t.Parallel()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = l.Close() }()

	s := New(Config{Addr: l.Addr().String()}, &recordingHandler{})
	if err := s.Listen(); err == nil {
		t.Error("Listen() on a bound port succeeded")
	}
}
