// Package subprocess owns the engine child process and its byte streams.
package subprocess

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"

	"golang.org/x/sync/errgroup"
)

// maxScanTokenSize is the maximum buffer size for reading engine output
// lines. Long multi-PV lines at high depth stay well under this.
const maxScanTokenSize = 1024 * 1024 // 1MB

// Process runs a UCI engine as a child process and exposes its stdin and
// stdout as line-oriented streams. The write and read sides carry separate
// locks: the handshake interleaves both on one goroutine, while during a
// search the reader loop holds the read side and a cancelling consumer may
// need the write side for "stop".
type Process struct {
	log  *slog.Logger
	path string
	args []string

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	closed bool

	writeMu sync.Mutex

	readMu  sync.Mutex
	scanner *bufio.Scanner

	group *errgroup.Group
}

// NewProcess creates a process transport for the engine binary at path.
// The process is not spawned until Start.
func NewProcess(log *slog.Logger, path string, args []string) *Process {
	return &Process{
		log:  log.With("component", "subprocess"),
		path: path,
		args: args,
	}
}

// Start spawns the engine and wires up its pipes. Stderr is drained in the
// background into the logger; engines print version banners and warnings
// there and block if nobody reads it.
func (p *Process) Start(ctx context.Context) error {
	p.log.Info("Starting engine subprocess", "path", p.path)

	//nolint:gosec // G204: spawning a caller-chosen engine binary is the point
	cmd := exec.CommandContext(ctx, p.path, p.args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}

	p.cmd = cmd
	p.stdin = stdin

	scanner := bufio.NewScanner(stdout)
	buf := make([]byte, maxScanTokenSize)
	scanner.Buffer(buf, maxScanTokenSize)
	p.scanner = scanner

	p.group = &errgroup.Group{}
	p.group.Go(func() error {
		drain := bufio.NewScanner(stderr)
		for drain.Scan() {
			p.log.Debug("Engine stderr", "line", drain.Text())
		}

		// The pipe closing on process exit is the normal way out.
		return nil
	})

	p.log.Info("Engine subprocess started", "pid", cmd.Process.Pid)

	return nil
}

// WriteLine sends one command line to the engine. Safe for concurrent use.
func (p *Process) WriteLine(line string) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if p.stdin == nil || p.closed {
		return fmt.Errorf("write %q: engine not running", line)
	}

	p.log.Debug("Sending command", "line", line)

	if _, err := io.WriteString(p.stdin, line+"\n"); err != nil {
		return fmt.Errorf("write to engine: %w", err)
	}

	return nil
}

// ReadLine blocks until the engine emits the next output line. It returns
// io.EOF once the engine's stdout closes. Safe for concurrent use; exactly
// one caller at a time holds the read side.
func (p *Process) ReadLine() (string, error) {
	p.readMu.Lock()
	defer p.readMu.Unlock()

	if p.scanner == nil {
		return "", fmt.Errorf("read: engine not running")
	}

	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", fmt.Errorf("read from engine: %w", err)
		}

		return "", io.EOF
	}

	line := p.scanner.Text()
	p.log.Debug("Received line", "line", line)

	return line, nil
}

// Close terminates the engine process. Safe to call more than once.
func (p *Process) Close() error {
	p.writeMu.Lock()

	if p.closed {
		p.writeMu.Unlock()

		return nil
	}

	p.closed = true

	if p.stdin != nil {
		_ = p.stdin.Close()
		p.stdin = nil
	}

	p.writeMu.Unlock()

	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}

	p.log.Debug("Killing engine process", "pid", p.cmd.Process.Pid)

	if err := p.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("kill engine (pid %d): %w", p.cmd.Process.Pid, err)
	}

	_ = p.group.Wait()

	// Kill makes a nonzero exit status routine; only resource cleanup
	// failures matter here.
	_ = p.cmd.Wait()

	return nil
}
