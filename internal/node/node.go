// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package node

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/nodekeeper/internal/logging"
	"github.com/tomtom215/nodekeeper/internal/metrics"
	"github.com/tomtom215/nodekeeper/internal/ringlog"
)

var (
	// ErrNoProgram is returned by Start when no executable is configured.
	ErrNoProgram = errors.New("no program configured")

	// ErrStillRunning is returned by Stop when the process survived every
	// escalation step.
	ErrStillRunning = errors.New("process still running after kill")
)

// DefaultGrace is the graceful wait used by the API for stop and restart.
const DefaultGrace = 4000 * time.Millisecond

// Options configures a Node.
type Options struct {
	ID          string
	Program     string
	DefaultArgs []string
	DataDir     string
	LogCapacity int
	Variant     Variant
	Launch      Launch

	// OwnerSecretFile and ForeignSecretFile name the credential files in
	// DataDir. Empty values fall back to the defaults.
	OwnerSecretFile   string
	ForeignSecretFile string
}

// Status is a point-in-time snapshot of a node.
type Status struct {
	ID            string   `json:"id"`
	Running       bool     `json:"running"`
	PID           int      `json:"pid"`
	ExitCode      int      `json:"exitCode"`
	Program       string   `json:"program"`
	Args          []string `json:"args"`
	StartedAt     *string  `json:"startedAt"`
	UptimeSec     int64    `json:"uptimeSec"`
	OwnerAPIKey   string   `json:"ownerApiKey"`
	ForeignAPIKey string   `json:"foreignApiKey"`
}

// Node supervises one external program.
type Node struct {
	id                string
	variant           Variant
	launch            Launch
	ownerSecretFile   string
	foreignSecretFile string
	log               zerolog.Logger
	now               func() time.Time

	// opMu serializes Start, Stop and Restart.
	opMu sync.Mutex

	mu          sync.RWMutex
	program     string
	defaultArgs []string
	dataDir     string
	logs        *ringlog.Buffer
	startedAt   time.Time
	proc        *process
	lastExit    int
}

// New creates a stopped Node.
func New(opts Options) *Node {
	if opts.Variant.Strategy == "" {
		opts.Variant.Strategy = StopTerminate
	}
	if opts.OwnerSecretFile == "" {
		opts.OwnerSecretFile = DefaultOwnerSecretFile
	}
	if opts.ForeignSecretFile == "" {
		opts.ForeignSecretFile = DefaultForeignSecretFile
	}
	return &Node{
		id:                opts.ID,
		variant:           opts.Variant,
		launch:            opts.Launch,
		ownerSecretFile:   opts.OwnerSecretFile,
		foreignSecretFile: opts.ForeignSecretFile,
		log:               logging.With().Str("node", opts.ID).Logger(),
		now:               time.Now,
		program:           opts.Program,
		defaultArgs:       cloneArgs(opts.DefaultArgs),
		dataDir:           opts.DataDir,
		logs:              ringlog.New(opts.LogCapacity),
	}
}

// ID returns the node's immutable identifier.
func (n *Node) ID() string { return n.id }

// Variant returns the node's variant.
func (n *Node) Variant() Variant { return n.variant }

// Program returns the configured executable path.
func (n *Node) Program() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.program
}

// DataDir returns the configured data directory.
func (n *Node) DataDir() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.dataDir
}

// SetProgram changes the executable used by the next Start.
func (n *Node) SetProgram(program string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.program = program
}

// SetDefaultArgs changes the arguments prepended to every Start.
func (n *Node) SetDefaultArgs(args []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.defaultArgs = cloneArgs(args)
}

// SetDataDir changes the directory holding the node's secrets and data.
func (n *Node) SetDataDir(dir string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dataDir = dir
}

// SetLogCapacity resets the log buffer to the given capacity, discarding
// buffered lines.
func (n *Node) SetLogCapacity(capacity int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.logs.Reset(capacity)
}

// IsRunning reports whether the node currently has a live process.
func (n *Node) IsRunning() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.runningLocked()
}

func (n *Node) runningLocked() bool {
	return n.proc != nil && !n.proc.exited()
}

// Start spawns the program with the default arguments followed by
// extraArgs. It is a no-op if the node is already running.
func (n *Node) Start(extraArgs []string) error {
	n.opMu.Lock()
	defer n.opMu.Unlock()
	return n.start(extraArgs)
}

func (n *Node) start(extraArgs []string) error {
	n.mu.RLock()
	running := n.runningLocked()
	program := n.program
	args := make([]string, 0, len(n.defaultArgs)+len(extraArgs))
	args = append(args, n.defaultArgs...)
	n.mu.RUnlock()

	if running {
		metrics.RecordNodeStart(n.id, "already_running")
		return nil
	}
	if program == "" {
		metrics.RecordNodeStart(n.id, "failed")
		return ErrNoProgram
	}

	args = append(args, extraArgs...)
	if n.variant.ArgHook != nil {
		args = n.variant.ArgHook(args)
	}

	p, err := spawn(program, args, n.launch)
	if err != nil {
		metrics.RecordNodeStart(n.id, "failed")
		n.log.Error().Err(err).Str("program", program).Msg("Failed to start node process")
		return fmt.Errorf("start %s: %w", n.id, err)
	}

	startedAt := n.now()
	n.mu.Lock()
	n.proc = p
	n.startedAt = startedAt
	n.mu.Unlock()

	go n.pump(p)

	metrics.RecordNodeStart(n.id, "started")
	metrics.SetNodeRunning(n.id, startedAt)
	n.log.Info().
		Int("pid", p.pid).
		Str("program", program).
		Strs("args", args).
		Bool("process_group", p.grouped).
		Msg("Node process started")
	return nil
}

// pump applies a process's events to the node until the channel closes.
func (n *Node) pump(p *process) {
	for ev := range p.events {
		if ev.exited {
			n.mu.Lock()
			current := n.proc == p
			if current {
				n.lastExit = ev.code
				n.proc = nil
			}
			n.mu.Unlock()

			if current {
				metrics.RecordNodeExit(n.id, ev.code)
			}
			n.log.Info().Int("pid", p.pid).Int("exit_code", ev.code).Msg("Node process exited")
			continue
		}

		n.mu.Lock()
		stored := n.logs.Append(ev.output)
		n.mu.Unlock()
		metrics.RecordLogLines(n.id, stored)
	}
}

// Stop ends the running process using the variant's escalation plan, with
// graceful as the wait after the first, gentlest step. It is a no-op if the
// node is not running.
func (n *Node) Stop(graceful time.Duration) error {
	n.opMu.Lock()
	defer n.opMu.Unlock()
	return n.stop(graceful)
}

func (n *Node) stop(graceful time.Duration) error {
	n.mu.RLock()
	p := n.proc
	running := n.runningLocked()
	n.mu.RUnlock()

	if !running {
		metrics.RecordNodeStop(n.id, "not_running")
		return nil
	}

	n.log.Info().
		Int("pid", p.pid).
		Str("strategy", string(n.variant.Strategy)).
		Dur("graceful", graceful).
		Msg("Stopping node process")

	via, ok := escalate(p, n.variant.Strategy, graceful, func(step string, err error) {
		n.log.Warn().Err(err).Str("step", step).Msg("Stop step failed")
	})
	if !ok {
		metrics.RecordNodeStop(n.id, "failed")
		n.log.Error().Int("pid", p.pid).Msg("Node process did not exit")
		return fmt.Errorf("stop %s: %w", n.id, ErrStillRunning)
	}

	metrics.RecordNodeStop(n.id, "stopped")
	n.log.Info().Int("pid", p.pid).Str("via", via).Msg("Node process stopped")
	return nil
}

// Restart stops the node and starts it again. The result is that of the
// start; a failed stop is logged and does not prevent the attempt.
func (n *Node) Restart(graceful time.Duration, extraArgs []string) error {
	n.opMu.Lock()
	defer n.opMu.Unlock()

	if err := n.stop(graceful); err != nil {
		n.log.Warn().Err(err).Msg("Stop before restart failed")
	}
	return n.start(extraArgs)
}

// Status returns a snapshot of the node. Secrets are read from disk on
// every call.
func (n *Node) Status() Status {
	n.mu.RLock()
	st := Status{
		ID:      n.id,
		Program: n.program,
		Args:    cloneArgs(n.defaultArgs),
	}
	dataDir := n.dataDir
	startedAt := n.startedAt
	switch {
	case n.runningLocked():
		st.Running = true
		st.PID = n.proc.pid
	case n.proc != nil:
		// Exited, but the pump has not applied the exit event yet.
		st.ExitCode = n.proc.exitCode
	default:
		st.ExitCode = n.lastExit
	}
	n.mu.RUnlock()

	if !startedAt.IsZero() {
		ts := startedAt.UTC().Format(time.RFC3339)
		st.StartedAt = &ts
		if st.Running {
			st.UptimeSec = int64(n.now().Sub(startedAt) / time.Second)
		}
	}

	st.OwnerAPIKey = ReadSecret(dataDir, n.ownerSecretFile)
	st.ForeignAPIKey = ReadSecret(dataDir, n.foreignSecretFile)
	return st
}

// LastLogLines returns up to count of the most recent output lines, oldest
// first. A count below 1 is treated as 1.
func (n *Node) LastLogLines(count int) []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.logs.Tail(count)
}

func cloneArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	return out
}
