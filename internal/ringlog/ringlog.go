// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

// Package ringlog implements the fixed-capacity line store that holds a
// node's captured stdout/stderr.
//
// A Buffer is not safe for concurrent use. The owning node guards it with
// its write lock.
package ringlog

import "strings"

// MinCapacity is the smallest capacity a Buffer will accept. Smaller
// requests are clamped up to it.
const MinCapacity = 100

// Buffer is a circular store of non-empty text lines. Once full, each new
// line overwrites the oldest one.
type Buffer struct {
	lines []string
	head  int // index of the oldest line
	size  int
}

// New creates a Buffer holding at most max(capacity, MinCapacity) lines.
func New(capacity int) *Buffer {
	b := &Buffer{}
	b.Reset(capacity)
	return b
}

// Reset discards all buffered lines and reconfigures the capacity.
func (b *Buffer) Reset(capacity int) {
	if capacity < MinCapacity {
		capacity = MinCapacity
	}
	b.lines = make([]string, capacity)
	b.head = 0
	b.size = 0
}

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int { return len(b.lines) }

// Len returns the number of buffered lines.
func (b *Buffer) Len() int { return b.size }

// Append splits text into lines and stores each non-empty one. CRLF and
// lone CR are treated as LF. It returns the number of lines stored.
func (b *Buffer) Append(text string) int {
	if text == "" {
		return 0
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	stored := 0
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		b.push(line)
		stored++
	}
	return stored
}

func (b *Buffer) push(line string) {
	c := len(b.lines)
	if b.size < c {
		b.lines[(b.head+b.size)%c] = line
		b.size++
		return
	}
	b.lines[b.head] = line
	b.head = (b.head + 1) % c
}

// Tail returns the last min(n, Len()) lines, oldest first. n below 1 is
// treated as 1. The result is a fresh slice and never nil.
func (b *Buffer) Tail(n int) []string {
	if n < 1 {
		n = 1
	}
	if n > b.size {
		n = b.size
	}
	out := make([]string, n)
	c := len(b.lines)
	start := b.head + b.size - n
	for i := 0; i < n; i++ {
		out[i] = b.lines[(start+i)%c]
	}
	return out
}
