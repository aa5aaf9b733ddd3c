package uci

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/castlebay/uci/internal/protocol"
	"github.com/castlebay/uci/internal/subprocess"
)

// Engine is a handle to a running UCI engine. It owns the subprocess for
// its entire lifetime; one handle is never shared across two processes.
//
// UCI is not pipelinable: at most one search may be in flight per handle.
// Callers must fully drain or cancel a session before starting the next
// one; nothing in the handle serializes that.
type Engine struct {
	log       *slog.Logger
	opts      *Options
	transport Transport

	mu     sync.Mutex
	closed bool
}

// New spawns the engine subprocess and drives the startup handshake to the
// ready state. Construction is synchronous and blocks until the engine has
// confirmed ingestion of the fixed option block.
//
// Failures are fatal and never retried: spawn failures surface as
// *StartError, unexpected handshake replies as *HandshakeError.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	log = log.With("component", "engine")

	transport := options.Transport
	if transport == nil {
		if options.EnginePath == "" {
			return nil, &StartError{Err: errors.New("no engine path configured")}
		}

		transport = subprocess.NewProcess(log, options.EnginePath, options.Args)
	}

	if err := transport.Start(ctx); err != nil {
		log.Error("Failed to start engine", "error", err)

		return nil, &StartError{Path: options.EnginePath, Err: err}
	}

	e := &Engine{
		log:       log,
		opts:      options,
		transport: transport,
	}

	if err := e.handshake(); err != nil {
		log.Error("Handshake failed", "error", err)
		_ = transport.Close()

		return nil, err
	}

	log.Info("Engine ready", "threads", options.Threads, "multipv", options.MultiPV)

	return e, nil
}

// handshake drives the fixed startup sequence. Option commands carry no
// individual acknowledgment, so a second isready/readyok round-trip is the
// only way to confirm ingestion before analysis starts.
func (e *Engine) handshake() error {
	if err := e.transport.WriteLine(protocol.CmdUCI()); err != nil {
		return err
	}

	// Engines may emit banner text before speaking UCI; discard lines
	// until the first identification line, then keep reading until uciok.
	for {
		line, err := e.transport.ReadLine()
		if err != nil {
			return err
		}

		if _, ok := protocol.Parse(line).(*protocol.ID); ok {
			e.log.Debug("Engine identified", "line", line)

			break
		}

		e.log.Debug("Discarding pre-identification line", "line", line)
	}

	for {
		line, err := e.transport.ReadLine()
		if err != nil {
			return err
		}

		if _, ok := protocol.Parse(line).(*protocol.UCIOk); ok {
			break
		}
	}

	if err := e.awaitReady(); err != nil {
		return err
	}

	if err := e.transport.WriteLine(protocol.CmdNewGame()); err != nil {
		return err
	}

	options := []struct{ name, value string }{
		{"Threads", strconv.Itoa(e.opts.Threads)},
		{"UCI_AnalyseMode", "true"},
		{"MultiPV", strconv.Itoa(e.opts.MultiPV)},
	}
	for _, opt := range options {
		if err := e.transport.WriteLine(protocol.CmdSetOption(opt.name, opt.value)); err != nil {
			return err
		}
	}

	return e.awaitReady()
}

// awaitReady sends isready and requires the very next message to be
// readyok.
func (e *Engine) awaitReady() error {
	if err := e.transport.WriteLine(protocol.CmdIsReady()); err != nil {
		return err
	}

	line, err := e.transport.ReadLine()
	if err != nil {
		return err
	}

	if _, ok := protocol.Parse(line).(*protocol.ReadyOk); !ok {
		return &HandshakeError{Expected: "readyok", Got: line}
	}

	return nil
}

// Close terminates the engine subprocess and releases both streams. The
// handle cannot be reused afterwards. Safe to call more than once.
func (e *Engine) Close() error {
	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()

		return nil
	}

	e.closed = true
	e.mu.Unlock()

	e.log.Info("Shutting down engine")

	// Best effort: ask the engine to exit before killing it.
	_ = e.transport.WriteLine(protocol.CmdQuit())

	return e.transport.Close()
}

// isClosed reports whether Close has been called.
func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.closed
}
