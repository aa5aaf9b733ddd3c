package uci

import (
	"context"
	"fmt"
	"sort"
)

// RankedMove is one candidate move with its evaluation, from the side to
// move's perspective.
type RankedMove struct {
	Score Score
	Move  string
}

// BlunderVerdict is the outcome of a blunder check.
type BlunderVerdict struct {
	// IsBlunder reports whether the proposed move loses at least the
	// configured centipawn threshold against the engine's best line.
	IsBlunder bool

	// Alternatives are the engine's ranked candidate moves for the
	// position, best first.
	Alternatives []RankedMove

	// ProposedLineScore is the evaluation after the proposed move, from
	// the proposer's perspective. When the proposed move was among the
	// ranked candidates it is that candidate's score.
	ProposedLineScore Score
}

// CheckForBlunder evaluates whether proposed loses materially against the
// engine's own candidates. It blocks on two full analysis sessions run
// strictly sequentially, since both share the engine handle: first the
// position itself, then — only when the proposed move is not among the
// ranked candidates — the position with the proposed move played, to
// obtain the opponent's best reply.
func (e *Engine) CheckForBlunder(ctx context.Context, pos Position, proposed Move, depth int) (*BlunderVerdict, error) {
	ranked, err := e.rankedCandidates(ctx, pos, nil, depth)
	if err != nil {
		return nil, fmt.Errorf("analyze position: %w", err)
	}

	if len(ranked) == 0 {
		return nil, ErrNoCandidates
	}

	// The engine's own candidates are never blunders.
	for _, candidate := range ranked {
		if candidate.Move == proposed.String() {
			return &BlunderVerdict{
				Alternatives:      ranked,
				ProposedLineScore: candidate.Score,
			}, nil
		}
	}

	replies, err := e.rankedCandidates(ctx, pos, []Move{proposed}, depth)
	if err != nil {
		return nil, fmt.Errorf("analyze reply to %s: %w", proposed, err)
	}

	if len(replies) == 0 {
		return nil, ErrNoCandidates
	}

	// Reply scores are from the opponent's perspective; negate to get
	// the proposed line's value for the proposer.
	proposedScore := replies[0].Score.Negate()
	loss := ranked[0].Score.Sentinel() - proposedScore.Sentinel()

	return &BlunderVerdict{
		IsBlunder:         loss >= e.opts.BlunderThreshold,
		Alternatives:      ranked,
		ProposedLineScore: proposedScore,
	}, nil
}

// rankedCandidates runs one session to completion and folds its
// CandidateLine events into the engine's final ranking: entries are keyed
// by multi-PV index with later reports overwriting earlier ones, then
// ordered by index — rank 1 is the engine's best.
func (e *Engine) rankedCandidates(ctx context.Context, pos Position, extraMoves []Move, depth int) ([]RankedMove, error) {
	session, err := e.Analyze(ctx, pos, extraMoves, depth)
	if err != nil {
		return nil, err
	}

	byRank := make(map[int]*CandidateLine)

	for ev := range session.Events() {
		if line, ok := ev.(*CandidateLine); ok && line.FirstMove() != "" {
			byRank[line.MultiPV] = line
		}
	}

	if err := session.Err(); err != nil {
		return nil, err
	}

	indexes := make([]int, 0, len(byRank))
	for idx := range byRank {
		indexes = append(indexes, idx)
	}

	sort.Ints(indexes)

	ranked := make([]RankedMove, 0, len(indexes))
	for _, idx := range indexes {
		line := byRank[idx]
		ranked = append(ranked, RankedMove{Score: line.Score, Move: line.FirstMove()})
	}

	return ranked, nil
}
