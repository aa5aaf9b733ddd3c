package uci

import "context"

// Transport is the byte-stream boundary to a running engine. The default
// implementation spawns a subprocess; tests inject scripted transports.
//
// WriteLine and ReadLine must each be independently safe for concurrent
// use: during a search the reader loop owns the read side while another
// goroutine may write "stop".
type Transport interface {
	// Start makes the engine available for I/O.
	Start(ctx context.Context) error

	// WriteLine sends one command line (without trailing newline).
	WriteLine(line string) error

	// ReadLine blocks for the next engine output line. It returns io.EOF
	// when the engine's output closes.
	ReadLine() (string, error)

	// Close terminates the engine and releases both streams.
	Close() error
}
