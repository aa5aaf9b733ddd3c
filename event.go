package uci

import (
	"fmt"
	"strconv"
)

// Position is the engine-facing view of a board position: its String
// method must return the FEN. *chess.Position from the rules engine
// satisfies it; this package never parses FEN itself.
type Position interface {
	String() string
}

// Move is the engine-facing view of a move: its String method must return
// the move in the engine's coordinate notation (e.g. "e2e4").
type Move interface {
	String() string
}

// mateValue is the sentinel magnitude used to compare mate scores against
// centipawn scores. Any forced mate outranks any centipawn evaluation,
// and shorter mates outrank longer ones.
const mateValue = 100_000

// Score is an engine evaluation from the side to move's perspective.
// Either a centipawn value or a forced-mate distance, never both.
type Score struct {
	// Centipawns is the evaluation in 1/100 pawn units. Positive favors
	// the side to move.
	Centipawns int

	// MateIn, when nonzero, is the signed number of moves to a forced
	// mate: positive means the side to move mates, negative means it is
	// mated.
	MateIn int
}

// Sentinel maps the score onto a single comparable axis: centipawns as-is,
// mates to ±(mateValue - distance) so they dominate any centipawn value.
func (s Score) Sentinel() int {
	switch {
	case s.MateIn > 0:
		return mateValue - s.MateIn
	case s.MateIn < 0:
		return -mateValue - s.MateIn
	default:
		return s.Centipawns
	}
}

// Negate flips the score to the opponent's perspective.
func (s Score) Negate() Score {
	return Score{Centipawns: -s.Centipawns, MateIn: -s.MateIn}
}

// String implements fmt.Stringer, e.g. "+35cp" or "#-3".
func (s Score) String() string {
	if s.MateIn != 0 {
		return fmt.Sprintf("#%d", s.MateIn)
	}

	if s.Centipawns > 0 {
		return "+" + strconv.Itoa(s.Centipawns) + "cp"
	}

	return strconv.Itoa(s.Centipawns) + "cp"
}

// Event is an analysis event. The set is closed: a session emits zero or
// more *CandidateLine followed by exactly one terminal *BestMove.
type Event interface {
	event()
}

// Compile-time verification that all event types implement Event.
var (
	_ Event = (*CandidateLine)(nil)
	_ Event = (*BestMove)(nil)
)

// CandidateLine is one ranked line of search progress, mapped from an
// engine "info" message. Fields absent on the wire keep their zero
// defaults; MultiPV defaults to 1 so single-PV engines still rank.
type CandidateLine struct {
	// Depth is the search depth in plies.
	Depth int

	// Score is the evaluation of this line.
	Score Score

	// MultiPV is the 1-based rank of this line.
	MultiPV int

	// PV is the principal variation in coordinate notation, best-first.
	PV []string
}

func (*CandidateLine) event() {}

// FirstMove returns the first move of the principal variation, or "".
func (c *CandidateLine) FirstMove() string {
	if len(c.PV) == 0 {
		return ""
	}

	return c.PV[0]
}

// BestMove is the session's final, terminal event.
type BestMove struct {
	// Move is the engine's chosen move in coordinate notation.
	Move string

	// Ponder is the reply the engine expects, when reported.
	Ponder string
}

func (*BestMove) event() {}
