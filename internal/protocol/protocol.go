// Package protocol implements the UCI line codec: parsing engine output
// lines into structured messages and encoding outbound commands.
package protocol

import (
	"strconv"
	"strings"
)

// Message represents any message received from the engine.
// Use a type switch to determine the concrete type.
type Message interface {
	messageType() string
}

// Compile-time verification that all message types implement Message.
var (
	_ Message = (*ID)(nil)
	_ Message = (*UCIOk)(nil)
	_ Message = (*ReadyOk)(nil)
	_ Message = (*Info)(nil)
	_ Message = (*BestMove)(nil)
	_ Message = (*Unknown)(nil)
)

// ID is an engine identification line ("id name ..." / "id author ...").
// The payload is kept opaque; the handshake only needs to recognize it.
type ID struct {
	Raw string
}

func (*ID) messageType() string { return "id" }

// UCIOk is the engine's acknowledgment of the "uci" command.
type UCIOk struct{}

func (*UCIOk) messageType() string { return "uciok" }

// ReadyOk is the engine's acknowledgment of "isready".
type ReadyOk struct{}

func (*ReadyOk) messageType() string { return "readyok" }

// Info is a search progress report. Each field is optional per message;
// the Has* flags record which fields were present on the wire.
type Info struct {
	Depth    int
	HasDepth bool

	// Centipawns is set when the line carried "score cp".
	Centipawns int
	// MateIn is set when the line carried "score mate": a signed distance
	// in moves to a forced mate for the side to move.
	MateIn   int
	HasScore bool

	MultiPV    int
	HasMultiPV bool

	// PV is the principal variation in the engine's move notation.
	PV []string
}

func (*Info) messageType() string { return "info" }

// BestMove is the engine's final answer to a "go" command.
type BestMove struct {
	Move   string
	Ponder string
}

func (*BestMove) messageType() string { return "bestmove" }

// Unknown is any line outside the consumed vocabulary, including
// pre-handshake banner text.
type Unknown struct {
	Raw string
}

func (*Unknown) messageType() string { return "unknown" }

// Parse converts one engine output line into a Message. It never fails:
// unrecognized lines become *Unknown so callers decide per protocol phase
// whether that is fatal.
func Parse(line string) Message {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return &Unknown{Raw: line}
	}

	switch fields[0] {
	case "id":
		return &ID{Raw: line}
	case "uciok":
		return &UCIOk{}
	case "readyok":
		return &ReadyOk{}
	case "info":
		return parseInfo(fields[1:])
	case "bestmove":
		return parseBestMove(fields[1:])
	default:
		return &Unknown{Raw: line}
	}
}

// parseInfo scans the token stream after "info". Fields are read
// independently; anything unrecognized is skipped, which covers the long
// tail of informational attributes (nodes, nps, hashfull, "string", ...).
func parseInfo(fields []string) *Info {
	info := &Info{}

	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if i+1 < len(fields) {
				if d, err := strconv.Atoi(fields[i+1]); err == nil {
					info.Depth = d
					info.HasDepth = true
				}

				i++
			}

		case "multipv":
			if i+1 < len(fields) {
				if n, err := strconv.Atoi(fields[i+1]); err == nil {
					info.MultiPV = n
					info.HasMultiPV = true
				}

				i++
			}

		case "score":
			if i+2 < len(fields) {
				value, err := strconv.Atoi(fields[i+2])
				if err == nil {
					switch fields[i+1] {
					case "cp":
						info.Centipawns = value
						info.HasScore = true
					case "mate":
						info.MateIn = value
						info.HasScore = true
					}
				}

				i += 2
			}

		case "pv":
			// The PV runs to the end of the line.
			if i+1 < len(fields) {
				info.PV = append([]string(nil), fields[i+1:]...)
			}

			return info
		}
	}

	return info
}

func parseBestMove(fields []string) Message {
	if len(fields) == 0 {
		return &Unknown{Raw: "bestmove"}
	}

	best := &BestMove{Move: fields[0]}

	// Wire format: "bestmove <move> [ponder <move>]".
	if len(fields) >= 3 && fields[1] == "ponder" {
		best.Ponder = fields[2]
	}

	return best
}
