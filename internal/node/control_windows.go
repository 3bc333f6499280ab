// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

//go:build windows

package node

import (
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// launchCommand always runs the program directly. The child gets its own
// console process group so CTRL_BREAK reaches it and nothing else.
func launchCommand(program string, args []string, _ Launch) (string, []string, bool) {
	return program, args, true
}

func configureCommand(cmd *exec.Cmd, _ bool, launch Launch) {
	flags := uint32(windows.CREATE_NEW_PROCESS_GROUP)
	if launch.ShowConsole {
		flags |= windows.CREATE_NEW_CONSOLE
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: flags}
}

// sendSignal maps interrupt and terminate to CTRL_BREAK for the child's
// process group. Console programs have no other cooperative stop signal.
func sendSignal(proc *os.Process, _ bool, sig signalKind) error {
	if sig == sigKill {
		return proc.Kill()
	}
	return windows.GenerateConsoleCtrlEvent(windows.CTRL_BREAK_EVENT, uint32(proc.Pid))
}
