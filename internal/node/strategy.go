// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package node

import (
	"fmt"
	"strings"
	"time"
)

// StopStrategy selects the escalation plan used by Stop.
type StopStrategy string

const (
	// StopTerminate sends a terminate signal, then kills.
	StopTerminate StopStrategy = "terminate"

	// StopQuitInput writes "q\n" to the child's stdin, then terminates, then kills.
	StopQuitInput StopStrategy = "quit-input"

	// StopInterrupt sends an interrupt (SIGINT or CTRL_BREAK), then terminates, then kills.
	StopInterrupt StopStrategy = "interrupt"
)

// Escalation timeouts that follow the caller supplied graceful wait.
const (
	TerminateWait = 1500 * time.Millisecond
	KillWait      = 3000 * time.Millisecond

	// settleWait covers the gap between the kernel reaping the child and
	// the watcher publishing the exit.
	settleWait = 100 * time.Millisecond
)

// quitInput is the line Grin++ reads on stdin as a shutdown request.
const quitInput = "q\n"

// ParseStopStrategy converts a configuration value into a StopStrategy.
func ParseStopStrategy(s string) (StopStrategy, error) {
	switch StopStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case StopTerminate:
		return StopTerminate, nil
	case StopQuitInput:
		return StopQuitInput, nil
	case StopInterrupt:
		return StopInterrupt, nil
	default:
		return "", fmt.Errorf("unknown stop strategy %q (expected terminate, quit-input or interrupt)", s)
	}
}

// Variant is the per-kind behavior of a node: how it is stopped and how its
// argument list is adjusted right before spawning.
type Variant struct {
	Kind     string
	Strategy StopStrategy
	// ArgHook, if set, receives the effective argument list and returns the
	// list actually passed to the program.
	ArgHook func(args []string) []string
}

// Built-in variants.
var (
	RustVariant    = Variant{Kind: "rust", Strategy: StopInterrupt}
	GrinPPVariant  = Variant{Kind: "grinpp", Strategy: StopQuitInput}
	GenericVariant = Variant{Kind: "generic", Strategy: StopTerminate}
)

// VariantFor returns the built-in variant for kind.
func VariantFor(kind string) (Variant, bool) {
	switch strings.ToLower(kind) {
	case RustVariant.Kind:
		return RustVariant, true
	case GrinPPVariant.Kind:
		return GrinPPVariant, true
	case GenericVariant.Kind:
		return GenericVariant, true
	}
	return Variant{}, false
}

// signalKind names the cooperative and forced signals of the control port.
type signalKind int

const (
	sigInterrupt signalKind = iota
	sigTerminate
	sigKill
)

func (s signalKind) String() string {
	switch s {
	case sigInterrupt:
		return "interrupt"
	case sigTerminate:
		return "terminate"
	case sigKill:
		return "kill"
	}
	return "unknown"
}

// handle is the control surface of one live child process.
type handle interface {
	Signal(sig signalKind) error
	WriteInput(s string) error
	// Wait reports whether the process has exited, waiting at most d.
	Wait(d time.Duration) bool
}

type step struct {
	name string
	send func(h handle) error
	wait time.Duration
}

func signalStep(sig signalKind, wait time.Duration) step {
	return step{
		name: sig.String(),
		send: func(h handle) error { return h.Signal(sig) },
		wait: wait,
	}
}

// plan returns the ordered escalation steps for a strategy.
func plan(strategy StopStrategy, graceful time.Duration) []step {
	switch strategy {
	case StopQuitInput:
		return []step{
			{name: "quit-input", send: func(h handle) error { return h.WriteInput(quitInput) }, wait: graceful},
			signalStep(sigTerminate, TerminateWait),
			signalStep(sigKill, KillWait),
		}
	case StopInterrupt:
		return []step{
			signalStep(sigInterrupt, graceful),
			signalStep(sigTerminate, TerminateWait),
			signalStep(sigKill, KillWait),
		}
	default:
		return []step{
			signalStep(sigTerminate, graceful),
			signalStep(sigKill, KillWait),
		}
	}
}

// escalate walks the plan until the process is gone. A step whose send
// fails is skipped without waiting. It returns the name of the step that
// ended the process, or ok=false if it is still alive after the last step.
func escalate(h handle, strategy StopStrategy, graceful time.Duration, onFail func(step string, err error)) (string, bool) {
	if h.Wait(0) {
		return "", true
	}
	for _, st := range plan(strategy, graceful) {
		if err := st.send(h); err != nil {
			if onFail != nil {
				onFail(st.name, err)
			}
			continue
		}
		if h.Wait(st.wait) {
			return st.name, true
		}
	}
	return "", h.Wait(settleWait)
}
