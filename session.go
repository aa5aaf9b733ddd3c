package uci

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/castlebay/uci/internal/protocol"
)

// Session is one analysis search: a cancellable, ordered, finite stream of
// events bound to a single "go" command. CandidateLine events preserve the
// engine's emission order; the stream ends after exactly one BestMove.
//
// Cancelling the context passed to Analyze stops the search. The worker
// detects cancellation at its next publish, writes a single "stop", and
// keeps draining engine output until the terminal bestmove so the shared
// handle stays framed for the next session.
type Session struct {
	id     string
	log    *slog.Logger
	events chan Event

	errMu sync.Mutex
	err   error
}

// Events returns the session's event stream. The channel is unbuffered and
// closes once the engine has reported its best move or the session failed.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Err reports why the stream ended. It returns nil after a normal or
// cancelled session and the fatal error after a protocol violation or
// I/O failure. Valid once Events is closed.
func (s *Session) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()

	return s.err
}

func (s *Session) fail(err error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()

	if s.err == nil {
		s.err = err
	}
}

// Analyze starts one search and returns immediately; all post-"go" I/O
// runs on a dedicated worker goroutine feeding the session's stream.
//
// The search runs from pos with extraMoves played on top, which lets the
// blunder evaluator probe a reply without mutating real game state. A
// positive depth bounds the search; depth <= 0 means an infinite search,
// which only terminates through cancellation, so the caller must cancel
// ctx or fully drain after an external stop.
//
// The caller must fully drain or cancel the session before starting
// another on the same engine.
func (e *Engine) Analyze(ctx context.Context, pos Position, extraMoves []Move, depth int) (*Session, error) {
	if e.isClosed() {
		return nil, ErrEngineClosed
	}

	moves := make([]string, len(extraMoves))
	for i, m := range extraMoves {
		moves[i] = m.String()
	}

	s := &Session{
		id:     ulid.Make().String(),
		events: make(chan Event),
	}
	s.log = e.log.With("component", "session", "session_id", s.id)

	s.log.Info("Starting analysis", "fen", pos.String(), "extra_moves", moves, "depth", depth)

	if err := e.transport.WriteLine(protocol.CmdPosition(pos.String(), moves)); err != nil {
		return nil, err
	}

	if err := e.transport.WriteLine(protocol.CmdGo(depth)); err != nil {
		return nil, err
	}

	go s.run(ctx, e.transport)

	return s, nil
}

// run is the reader loop: decode one line, map it to an event, publish,
// repeat until bestmove. Runs on the session's worker goroutine.
func (s *Session) run(ctx context.Context, t Transport) {
	defer close(s.events)

	// Set once cancellation has been seen; from then on events are
	// discarded and the loop only drains toward bestmove.
	stopped := false

	for {
		line, err := t.ReadLine()
		if err != nil {
			s.log.Error("Read failed mid-session", "error", err)
			s.fail(fmt.Errorf("read engine output: %w", err))

			return
		}

		switch msg := protocol.Parse(line).(type) {
		case *protocol.Info:
			if stopped {
				continue
			}

			select {
			case s.events <- candidateFromInfo(msg):
			case <-ctx.Done():
				s.log.Debug("Receiver gone, stopping search")

				if err := t.WriteLine(protocol.CmdStop()); err != nil {
					s.fail(fmt.Errorf("stop search: %w", err))

					return
				}

				stopped = true
			}

		case *protocol.BestMove:
			s.log.Debug("Search finished", "move", msg.Move, "ponder", msg.Ponder)

			if !stopped {
				select {
				case s.events <- &BestMove{Move: msg.Move, Ponder: msg.Ponder}:
				case <-ctx.Done():
				}
			}

			return

		default:
			// Framing assumes exactly info*/bestmove per go; trap
			// rather than resynchronize.
			s.log.Error("Protocol violation", "line", line)
			s.fail(&ProtocolError{Line: line})

			return
		}
	}
}

// candidateFromInfo maps one info message to a CandidateLine. Fields are
// read independently; absent fields keep zero defaults except MultiPV,
// which defaults to rank 1 for single-PV engines.
func candidateFromInfo(info *protocol.Info) *CandidateLine {
	c := &CandidateLine{
		Depth:   info.Depth,
		MultiPV: 1,
		PV:      info.PV,
	}

	if info.HasMultiPV {
		c.MultiPV = info.MultiPV
	}

	if info.HasScore {
		c.Score = Score{Centipawns: info.Centipawns, MateIn: info.MateIn}
	}

	return c
}
