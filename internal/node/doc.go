// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

/*
Package node supervises the external Grin node processes.

A Node owns at most one live child process. Start spawns it with combined
stdout/stderr captured into a ringlog.Buffer, Stop walks the node variant's
escalation plan (stdin "q", interrupt, terminate, kill) with a bounded wait
after every step, and Status returns a snapshot suitable for the /status
route, including the owner and foreign API secrets read fresh from the
node's data directory.

# Concurrency

Lifecycle calls on one Node (Start, Stop, Restart) are serialized by a
dedicated mutex so that a slow stop never interleaves with a start. Field
reads take a read lock and mutations a write lock, held only long enough
to copy or assign fields; no lock is held while waiting for the child.

Each spawned process gets its own event channel. An output reader and an
exit watcher feed it, and a single pump goroutine per process applies the
events (log lines, exit code) under the node's write lock.

# Platform Control

The escalation plan is OS independent. It drives the child through the
handle interface, which the per-OS files implement:

  - Unix: the child is a session leader (Setsid) so signals reach its whole
    process group, unless it was launched inside a terminal emulator.
  - Windows: the child gets its own console process group so CTRL_BREAK
    can be delivered to it alone.

# Registry

The Registry is built once at startup and never changes shape, so lookups
need no locking. Iteration is in sorted id order.
*/
package node
