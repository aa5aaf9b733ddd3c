package uci

import "log/slog"

// Default startup configuration. Threads and MultiPV feed the fixed
// setoption block sent during the handshake.
const (
	DefaultThreads = 1
	DefaultMultiPV = 3

	// DefaultBlunderThreshold is the centipawn loss above which a move
	// counts as a blunder.
	DefaultBlunderThreshold = 200
)

// Options configures an Engine. Use the With* functional options.
type Options struct {
	// Logger receives operation tracking output. Nil disables logging.
	Logger *slog.Logger

	// EnginePath is the engine binary to spawn. Ignored when Transport
	// is set.
	EnginePath string

	// Args are extra command-line arguments for the engine binary.
	Args []string

	// Threads is the engine's "Threads" option value.
	Threads int

	// MultiPV is the number of ranked candidate lines the engine reports
	// in parallel. The blunder evaluator needs at least two.
	MultiPV int

	// BlunderThreshold is the centipawn loss that makes a move a blunder.
	BlunderThreshold int

	// Transport overrides subprocess spawning. Intended for tests.
	Transport Transport
}

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options over the defaults.
func applyOptions(opts []Option) *Options {
	options := &Options{
		Threads:          DefaultThreads,
		MultiPV:          DefaultMultiPV,
		BlunderThreshold: DefaultBlunderThreshold,
	}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithEnginePath sets the engine binary to spawn.
func WithEnginePath(path string) Option {
	return func(o *Options) {
		o.EnginePath = path
	}
}

// WithArgs sets extra command-line arguments for the engine binary.
func WithArgs(args ...string) Option {
	return func(o *Options) {
		o.Args = args
	}
}

// WithThreads sets the engine's thread count option.
func WithThreads(n int) Option {
	return func(o *Options) {
		o.Threads = n
	}
}

// WithMultiPV sets how many ranked candidate lines the engine reports.
func WithMultiPV(n int) Option {
	return func(o *Options) {
		o.MultiPV = n
	}
}

// WithBlunderThreshold sets the centipawn loss above which CheckForBlunder
// flags a move.
func WithBlunderThreshold(centipawns int) Option {
	return func(o *Options) {
		o.BlunderThreshold = centipawns
	}
}

// WithTransport injects a custom transport instead of spawning a
// subprocess. Intended for tests.
func WithTransport(t Transport) Option {
	return func(o *Options) {
		o.Transport = t
	}
}
