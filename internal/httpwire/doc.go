// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

/*
Package httpwire reads a single HTTP/1.1 request off a raw connection and
writes a single response back.

It is deliberately small: one request per connection, Connection: close on
every response, no chunked transfer encoding, no keep-alive and no TLS. The
control API answers browsers directly, so every response carries permissive
CORS headers.

# Reading

ReadRequest waits up to ReadOptions.FirstByteTimeout for the first bytes,
then keeps reading with HeaderTimeout per attempt until the header block is
terminated by CRLF CRLF (or, leniently, LF LF). When a Content-Length is
present the body is read with BodyTimeout per chunk; if the peer stops
sending early, the bytes received so far become the body.

# Writing

WriteResponse emits the status line, Content-Type and Content-Length for
non-204 responses, the three Access-Control-Allow-* headers and
Connection: close.
*/
package httpwire
