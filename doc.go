// Package uci drives a chess engine subprocess over the Universal Chess
// Interface and turns its asynchronous line output into structured,
// cancellable analysis streams.
//
// # Basic Usage
//
// Construct an engine, request an analysis session, and range over its
// events. The stream ends with exactly one BestMove:
//
//	ctx := context.Background()
//	engine, err := uci.New(ctx,
//	    uci.WithEnginePath("/usr/bin/stockfish"),
//	    uci.WithMultiPV(3),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	session, err := engine.Analyze(ctx, pos, nil, 18)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for ev := range session.Events() {
//	    switch e := ev.(type) {
//	    case *uci.CandidateLine:
//	        fmt.Printf("depth %d score %s pv %v\n", e.Depth, e.Score, e.PV)
//	    case *uci.BestMove:
//	        fmt.Println("best:", e.Move)
//	    }
//	}
//	if err := session.Err(); err != nil {
//	    log.Fatal(err)
//	}
//
// Cancelling the context passed to Analyze stops the search: the worker
// writes a single "stop" and keeps draining engine output until the final
// bestmove so the stream stays framed for the next session.
//
// UCI is not pipelinable. At most one search may be in flight per Engine;
// fully drain or cancel a session before starting the next one.
//
// # Blunder Checking
//
// CheckForBlunder runs two sequential sessions and compares evaluations:
//
//	verdict, err := engine.CheckForBlunder(ctx, pos, move, 12)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if verdict.IsBlunder {
//	    fmt.Println("better was", verdict.Alternatives[0].Move)
//	}
//
// # Logging
//
// Logging is silent by default. Pass a structured logger for operation
// tracking:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	engine, err := uci.New(ctx, uci.WithLogger(logger), ...)
package uci
