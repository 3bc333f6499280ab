// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

//go:build !windows

package node

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// terminals are tried in order when Launch.ForceTerminal is set. Each entry
// carries the arguments that precede the wrapped command line.
var terminals = []struct {
	name string
	args []string
}{
	{"xterm", []string{"-hold", "-e"}},
	{"gnome-terminal", []string{"--"}},
	{"konsole", []string{"--hold", "-e"}},
}

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// launchCommand returns the executable, its arguments, and whether the
// child will lead its own process group.
func launchCommand(program string, args []string, launch Launch) (string, []string, bool) {
	if launch.ForceTerminal {
		for _, t := range terminals {
			path, err := lookPath(t.name)
			if err != nil {
				continue
			}
			argv := make([]string, 0, len(t.args)+1+len(args))
			argv = append(argv, t.args...)
			argv = append(argv, program)
			argv = append(argv, args...)
			return path, argv, false
		}
		// No emulator found: run directly, still without a new session.
		return program, args, false
	}
	return program, args, true
}

func configureCommand(cmd *exec.Cmd, grouped bool, _ Launch) {
	if grouped {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	}
}

func unixSignal(sig signalKind) unix.Signal {
	switch sig {
	case sigInterrupt:
		return unix.SIGINT
	case sigKill:
		return unix.SIGKILL
	default:
		return unix.SIGTERM
	}
}

// sendSignal signals the child's process group when it leads one, falling
// back to the single pid if the group is already gone.
func sendSignal(proc *os.Process, grouped bool, sig signalKind) error {
	s := unixSignal(sig)
	if grouped {
		err := unix.Kill(-proc.Pid, s)
		if err == nil || !errors.Is(err, unix.ESRCH) {
			return err
		}
	}
	return unix.Kill(proc.Pid, s)
}
