// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package httpwire

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedRequest is returned when no valid request could be read.
var ErrMalformedRequest = errors.New("malformed request")

const (
	readChunk      = 8192
	defaultVersion = "HTTP/1.1"
	crlfTerminator = "\r\n\r\n"
	lfTerminator   = "\n\n"
)

// Conn is the part of net.Conn ReadRequest needs.
type Conn interface {
	io.Reader
	SetReadDeadline(t time.Time) error
}

// ReadOptions bounds how long and how much ReadRequest reads.
type ReadOptions struct {
	FirstByteTimeout time.Duration
	HeaderTimeout    time.Duration
	BodyTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodyBytes     int64
}

// DefaultReadOptions returns the standard limits: 5 s for the first bytes,
// 2 s per header read, 3 s per body chunk.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		FirstByteTimeout: 5 * time.Second,
		HeaderTimeout:    2 * time.Second,
		BodyTimeout:      3 * time.Second,
		MaxHeaderBytes:   64 * 1024,
		MaxBodyBytes:     16 * 1024 * 1024,
	}
}

// Request is a parsed request.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Version  string
	// Headers holds lower-cased names and trimmed values. Repeated headers
	// keep the last value.
	Headers map[string]string
	Query   url.Values
	Body    []byte
}

// Header returns the value of the named header, matched case-insensitively.
func (r *Request) Header(name string) string {
	return r.Headers[strings.ToLower(name)]
}

// reader accumulates bytes from a Conn under per-read deadlines.
type reader struct {
	conn  Conn
	buf   []byte
	chunk []byte
}

func (rd *reader) read(wait time.Duration, limit int) (int, error) {
	if err := rd.conn.SetReadDeadline(time.Now().Add(wait)); err != nil {
		return 0, err
	}
	p := rd.chunk
	if limit > 0 && limit < len(p) {
		p = p[:limit]
	}
	n, err := rd.conn.Read(p)
	rd.buf = append(rd.buf, p[:n]...)
	return n, err
}

// ReadRequest reads and parses one request from conn.
func ReadRequest(conn Conn, opts ReadOptions) (*Request, error) {
	rd := &reader{conn: conn, chunk: make([]byte, readChunk)}

	n, err := rd.read(opts.FirstByteTimeout, 0)
	if n == 0 && err != nil {
		return nil, fmt.Errorf("%w: no data: %w", ErrMalformedRequest, err)
	}

	var headEnd, sepLen int
	for {
		if headEnd, sepLen = findHeaderEnd(rd.buf); headEnd >= 0 {
			break
		}
		if opts.MaxHeaderBytes > 0 && len(rd.buf) > opts.MaxHeaderBytes {
			return nil, fmt.Errorf("%w: header block exceeds %d bytes", ErrMalformedRequest, opts.MaxHeaderBytes)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: header not terminated: %w", ErrMalformedRequest, err)
		}
		_, err = rd.read(opts.HeaderTimeout, 0)
	}

	req, perr := parseHead(string(rd.buf[:headEnd]))
	if perr != nil {
		return nil, perr
	}

	body := rd.buf[headEnd+sepLen:]
	want, ok := contentLength(req.Headers)
	if !ok {
		req.Body = body
		return req, nil
	}
	if opts.MaxBodyBytes > 0 && want > opts.MaxBodyBytes {
		return nil, fmt.Errorf("%w: content length %d exceeds %d", ErrMalformedRequest, want, opts.MaxBodyBytes)
	}

	bodyStart := headEnd + sepLen
	for int64(len(rd.buf)-bodyStart) < want && err == nil {
		remaining := want - int64(len(rd.buf)-bodyStart)
		limit := readChunk
		if remaining < int64(limit) {
			limit = int(remaining)
		}
		_, err = rd.read(opts.BodyTimeout, limit)
	}

	body = rd.buf[bodyStart:]
	if int64(len(body)) > want {
		body = body[:want]
	}
	req.Body = body
	return req, nil
}

// findHeaderEnd returns the index of the header terminator and its length,
// preferring CRLF CRLF over LF LF.
func findHeaderEnd(buf []byte) (int, int) {
	if i := bytes.Index(buf, []byte(crlfTerminator)); i >= 0 {
		return i, len(crlfTerminator)
	}
	if i := bytes.Index(buf, []byte(lfTerminator)); i >= 0 {
		return i, len(lfTerminator)
	}
	return -1, 0
}

func parseHead(head string) (*Request, error) {
	lines := strings.Split(head, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}

	fields := strings.Fields(lines[0])
	if len(fields) < 2 {
		return nil, fmt.Errorf("%w: request line %q", ErrMalformedRequest, lines[0])
	}

	req := &Request{
		Method:  fields[0],
		Version: defaultVersion,
		Headers: make(map[string]string, len(lines)-1),
	}
	if len(fields) > 2 {
		req.Version = fields[2]
	}

	req.Path, req.RawQuery, _ = strings.Cut(fields[1], "?")
	// ParseQuery keeps every pair it could decode even when it reports an error.
	req.Query, _ = url.ParseQuery(req.RawQuery)

	for _, line := range lines[1:] {
		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		req.Headers[name] = strings.TrimSpace(value)
	}
	return req, nil
}

func contentLength(headers map[string]string) (int64, bool) {
	v, ok := headers["content-length"]
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
