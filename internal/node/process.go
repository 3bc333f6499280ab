// Nodekeeper - Grin Node Process Controller
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodekeeper

package node

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

const (
	// readChunk is the size of a single read from the child's output pipe.
	readChunk = 4096

	// maxPartialLine bounds how much unterminated output is held back
	// waiting for a line break before it is flushed as-is.
	maxPartialLine = 64 * 1024

	// eventBuffer is the depth of a process's event channel.
	eventBuffer = 64

	// inputWriteTimeout bounds a write to the child's stdin. A child that
	// never reads its input fills the pipe, and the write must not block
	// the stop sequence.
	inputWriteTimeout = 500 * time.Millisecond
)

// Launch holds the platform launch options.
type Launch struct {
	// ForceTerminal starts the program inside a visible terminal emulator
	// (Unix only). Process group signaling is unavailable in this mode.
	ForceTerminal bool

	// ShowConsole gives the program its own visible console window
	// (Windows only).
	ShowConsole bool
}

// event is a notification from a live process to its node.
type event struct {
	output string
	exited bool
	code   int
}

// process is one spawned child. It implements handle.
type process struct {
	cmd     *exec.Cmd
	pid     int
	grouped bool
	stdin   *os.File

	inputMu sync.Mutex

	done     chan struct{}
	exitCode int // written by the watcher before done is closed

	events chan event
}

// spawn starts program with args. Stdout and stderr share one pipe whose
// contents arrive on the returned process's event channel, followed by a
// single exit event. The channel is closed once both are delivered.
func spawn(program string, args []string, launch Launch) (*process, error) {
	name, argv, grouped := launchCommand(program, args, launch)

	cmd := exec.Command(name, argv...) //nolint:gosec // program path comes from operator configuration
	configureCommand(cmd, grouped, launch)

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create output pipe: %w", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	stdinR, stdin, err := os.Pipe()
	if err != nil {
		_ = pr.Close()
		_ = pw.Close()
		return nil, fmt.Errorf("create input pipe: %w", err)
	}
	cmd.Stdin = stdinR

	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		_ = stdinR.Close()
		_ = stdin.Close()
		return nil, err
	}
	// The child holds its own copies of the output write end and the
	// input read end.
	_ = pw.Close()
	_ = stdinR.Close()

	p := &process{
		cmd:     cmd,
		pid:     cmd.Process.Pid,
		grouped: grouped,
		stdin:   stdin,
		done:    make(chan struct{}),
		events:  make(chan event, eventBuffer),
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.readOutput(pr)
	}()
	go func() {
		defer wg.Done()
		p.watch()
	}()
	go func() {
		wg.Wait()
		close(p.events)
	}()

	return p, nil
}

// readOutput forwards complete lines from r until EOF. A trailing partial
// line is flushed at EOF.
func (p *process) readOutput(r io.ReadCloser) {
	defer func() { _ = r.Close() }()

	buf := make([]byte, readChunk)
	var pending []byte
	for {
		n, err := r.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			if cut := lastLineBreak(pending); cut >= 0 {
				p.events <- event{output: string(pending[:cut+1])}
				pending = append(pending[:0], pending[cut+1:]...)
			} else if len(pending) >= maxPartialLine {
				p.events <- event{output: string(pending)}
				pending = pending[:0]
			}
		}
		if err != nil {
			break
		}
	}
	if len(pending) > 0 {
		p.events <- event{output: string(pending)}
	}
}

func lastLineBreak(b []byte) int {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] == '\n' || b[i] == '\r' {
			return i
		}
	}
	return -1
}

// watch reaps the child and publishes its exit code.
func (p *process) watch() {
	err := p.cmd.Wait()
	code := 0
	if p.cmd.ProcessState != nil {
		code = p.cmd.ProcessState.ExitCode()
	} else if err != nil {
		code = -1
	}
	p.exitCode = code
	_ = p.stdin.Close()
	close(p.done)
	p.events <- event{exited: true, code: code}
}

func (p *process) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Signal delivers sig through the platform control port.
func (p *process) Signal(sig signalKind) error {
	if p.exited() {
		return errProcessDone
	}
	return sendSignal(p.cmd.Process, p.grouped, sig)
}

// WriteInput writes s to the child's stdin, giving up after
// inputWriteTimeout.
func (p *process) WriteInput(s string) error {
	if p.exited() {
		return errProcessDone
	}
	p.inputMu.Lock()
	defer p.inputMu.Unlock()

	if err := p.stdin.SetWriteDeadline(time.Now().Add(inputWriteTimeout)); err == nil {
		_, err = io.WriteString(p.stdin, s)
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return errInputTimeout
		}
		return err
	}

	// Pipes without deadline support (Windows).
	errCh := make(chan error, 1)
	go func() {
		_, err := io.WriteString(p.stdin, s)
		errCh <- err
	}()
	timer := time.NewTimer(inputWriteTimeout)
	defer timer.Stop()
	select {
	case err := <-errCh:
		return err
	case <-timer.C:
		return errInputTimeout
	}
}

// Wait reports whether the process exited within d.
func (p *process) Wait(d time.Duration) bool {
	if d <= 0 {
		return p.exited()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-p.done:
		return true
	case <-timer.C:
		return false
	}
}

var (
	errProcessDone  = errors.New("process already exited")
	errInputTimeout = errors.New("timed out writing to process input")
)
