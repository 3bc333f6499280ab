// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package httpwire

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

const (
	// DefaultAllowHeaders is sent when no preflight header list applies.
	DefaultAllowHeaders = "Content-Type, Authorization"

	allowMethods    = "GET, POST, OPTIONS"
	jsonContentType = "application/json"
)

// serverErrorBody is used when a response body cannot be encoded.
var serverErrorBody = []byte(`{"error":"server error"}`)

// Response is a response ready to be written.
type Response struct {
	Status int
	Body   []byte
	// AllowHeaders overrides Access-Control-Allow-Headers when set.
	AllowHeaders string
}

// JSON encodes v as the response body. Encoding failures produce a 500.
func JSON(status int, v any) *Response {
	body, err := json.Marshal(v)
	if err != nil {
		return &Response{Status: 500, Body: serverErrorBody}
	}
	return &Response{Status: status, Body: body}
}

// RawJSON wraps an already encoded JSON payload.
func RawJSON(status int, body []byte) *Response {
	return &Response{Status: status, Body: body}
}

// Error returns {"error": msg} with the given status.
func Error(status int, msg string) *Response {
	return JSON(status, map[string]string{"error": msg})
}

// NoContent returns a 204 carrying the given allowed headers list.
func NoContent(allowHeaders string) *Response {
	return &Response{Status: 204, AllowHeaders: allowHeaders}
}

// StatusLine returns the status line for code, including CRLF. Codes
// outside the small known set get the reason "OK".
func StatusLine(code int) string {
	reason := "OK"
	switch code {
	case 200:
		reason = "OK"
	case 204:
		reason = "No Content"
	case 400:
		reason = "Bad Request"
	case 404:
		reason = "Not Found"
	case 500:
		reason = "Internal Server Error"
	}
	return "HTTP/1.1 " + strconv.Itoa(code) + " " + reason + "\r\n"
}

// WriteResponse serializes resp to w.
func WriteResponse(w io.Writer, resp *Response) error {
	bw := bufio.NewWriter(w)

	allow := resp.AllowHeaders
	if allow == "" {
		allow = DefaultAllowHeaders
	}

	_, _ = bw.WriteString(StatusLine(resp.Status))
	if resp.Status != 204 {
		_, _ = bw.WriteString("Content-Type: " + jsonContentType + "\r\n")
		_, _ = bw.WriteString("Content-Length: " + strconv.Itoa(len(resp.Body)) + "\r\n")
	}
	_, _ = bw.WriteString("Access-Control-Allow-Origin: *\r\n")
	_, _ = bw.WriteString("Access-Control-Allow-Methods: " + allowMethods + "\r\n")
	_, _ = bw.WriteString("Access-Control-Allow-Headers: " + allow + "\r\n")
	_, _ = bw.WriteString("Connection: close\r\n\r\n")
	if resp.Status != 204 {
		_, _ = bw.Write(resp.Body)
	}
	return bw.Flush()
}

// PreflightAllowHeaders computes Access-Control-Allow-Headers for an
// OPTIONS request from its Access-Control-Request-Headers value. The
// requested list is echoed with Authorization appended if it does not
// already mention it.
func PreflightAllowHeaders(requested string) string {
	if requested == "" {
		return DefaultAllowHeaders
	}
	if strings.Contains(strings.ToLower(requested), "authorization") {
		return requested
	}
	return requested + ", Authorization"
}
