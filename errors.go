package uci

import (
	"errors"
	"fmt"
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrEngineClosed indicates the engine handle has been closed and
	// cannot be reused.
	ErrEngineClosed = errors.New("engine closed")

	// ErrNoCandidates indicates an analysis produced no ranked lines to
	// compare against, e.g. the engine reported only a bare bestmove.
	ErrNoCandidates = errors.New("analysis produced no candidate lines")
)

// StartError indicates the engine subprocess failed to spawn.
// It is fatal to construction and never retried.
type StartError struct {
	Path string
	Err  error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("failed to start engine %q: %v", e.Path, e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// HandshakeError indicates the engine replied with an unexpected message
// during the startup sequence. It is fatal to construction.
type HandshakeError struct {
	// Expected names the message the handshake required.
	Expected string
	// Got is the raw line actually received.
	Got string
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("handshake: expected %s, got %q", e.Expected, e.Got)
}

// ProtocolError indicates the engine emitted a message outside the expected
// set during an active session. The session aborts rather than attempting
// to resynchronize: silent resync on a line protocol risks corrupted
// results.
type ProtocolError struct {
	Line string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("unexpected message during search: %q", e.Line)
}
