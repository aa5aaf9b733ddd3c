package protocol

import (
	"fmt"
	"strings"
)

// Outbound command encoders. Each returns a single UCI command line
// without the trailing newline; the transport owns line framing.

// CmdUCI starts protocol negotiation.
func CmdUCI() string { return "uci" }

// CmdIsReady asks for a synchronization point; the engine answers "readyok"
// once all preceding commands have been ingested.
func CmdIsReady() string { return "isready" }

// CmdNewGame signals that the next position belongs to a new game.
func CmdNewGame() string { return "ucinewgame" }

// CmdQuit asks the engine to exit.
func CmdQuit() string { return "quit" }

// CmdStop aborts the current search; the engine still reports a bestmove.
func CmdStop() string { return "stop" }

// CmdSetOption encodes "setoption name <name> value <value>".
// Option commands carry no individual acknowledgment.
func CmdSetOption(name, value string) string {
	return fmt.Sprintf("setoption name %s value %s", name, value)
}

// CmdPosition encodes the base position plus any extra moves played on
// top of it.
func CmdPosition(fen string, moves []string) string {
	var b strings.Builder

	b.WriteString("position fen ")
	b.WriteString(fen)

	if len(moves) > 0 {
		b.WriteString(" moves ")
		b.WriteString(strings.Join(moves, " "))
	}

	return b.String()
}

// CmdGo encodes a search start. Depth values <= 0 select an infinite
// search, which the caller must end with CmdStop.
func CmdGo(depth int) string {
	if depth <= 0 {
		return "go infinite"
	}

	return fmt.Sprintf("go depth %d", depth)
}
