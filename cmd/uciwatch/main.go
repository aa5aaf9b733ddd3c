// Command uciwatch drives a UCI engine from the terminal: it streams
// analysis of a position or checks a candidate move for blunders.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/notnil/chess"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/castlebay/uci"
	"github.com/castlebay/uci/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "uciwatch",
		Short:         "Analyze chess positions with a UCI engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Init(cfgFile); err != nil {
				return err
			}

			return viper.BindPFlags(cmd.Flags())
		},
	}

	// Flag defaults mirror config.Default: an unchanged flag must not
	// shadow values from the config file, and viper consults flag
	// defaults before SetDefault values.
	defaults := config.Default()

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default "+config.ConfigDir()+"/config.yaml)")
	root.PersistentFlags().String("engine.path", defaults.Engine.Path, "engine binary to run")
	root.PersistentFlags().Int("engine.multipv", defaults.Engine.MultiPV, "number of candidate lines to report")
	root.PersistentFlags().String("logging.level", defaults.Logging.Level, "log level (debug|info|warn|error|off)")

	root.AddCommand(newAnalyzeCmd(), newBlunderCmd())

	return root
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <fen> [moves...]",
		Short: "Stream engine analysis of a position",
		Long: "Analyze a position given as FEN, optionally with extra moves in\n" +
			"coordinate notation played on top. With depth 0 the search runs\n" +
			"until interrupted with Ctrl-C.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			game, err := parseGame(args[0])
			if err != nil {
				return err
			}

			moves, err := decodeMoves(game, args[1:])
			if err != nil {
				return err
			}

			return runAnalyze(cmd.Context(), cfg, game.Position(), moves, cfg.Analysis.Depth)
		},
	}

	cmd.Flags().Int("analysis.depth", config.Default().Analysis.Depth, "search depth in plies (0 = infinite)")

	return cmd
}

func newBlunderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blunder <fen> <move>",
		Short: "Check a candidate move for blunders",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			game, err := parseGame(args[0])
			if err != nil {
				return err
			}

			moves, err := decodeMoves(game, args[1:])
			if err != nil {
				return err
			}

			return runBlunder(cmd.Context(), cfg, game.Position(), moves[0])
		},
	}

	cmd.Flags().Int("blunder.depth", config.Default().Blunder.Depth, "search depth for both sessions")

	return cmd
}

func runAnalyze(parent context.Context, cfg *config.Config, pos uci.Position, moves []uci.Move, depth int) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	session, err := engine.Analyze(ctx, pos, moves, depth)
	if err != nil {
		return err
	}

	for ev := range session.Events() {
		switch e := ev.(type) {
		case *uci.CandidateLine:
			fmt.Printf("depth %2d  #%d  %8s  %s\n", e.Depth, e.MultiPV, e.Score, strings.Join(e.PV, " "))
		case *uci.BestMove:
			fmt.Printf("bestmove %s", e.Move)

			if e.Ponder != "" {
				fmt.Printf(" (ponder %s)", e.Ponder)
			}

			fmt.Println()
		}
	}

	return session.Err()
}

func runBlunder(parent context.Context, cfg *config.Config, pos uci.Position, move uci.Move) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	verdict, err := engine.CheckForBlunder(ctx, pos, move, cfg.Blunder.Depth)
	if err != nil {
		return err
	}

	if verdict.IsBlunder {
		fmt.Printf("%s is a blunder (line evaluates to %s)\n", move, verdict.ProposedLineScore)
	} else {
		fmt.Printf("%s is fine (%s)\n", move, verdict.ProposedLineScore)
	}

	fmt.Println("engine preferences:")

	for i, alt := range verdict.Alternatives {
		fmt.Printf("  %d. %-6s %s\n", i+1, alt.Move, alt.Score)
	}

	return nil
}

func newEngine(ctx context.Context, cfg *config.Config) (*uci.Engine, error) {
	return uci.New(ctx,
		uci.WithLogger(newLogger(cfg.Logging.Level)),
		uci.WithEnginePath(cfg.Engine.Path),
		uci.WithArgs(cfg.Engine.Args...),
		uci.WithThreads(cfg.Engine.Threads),
		uci.WithMultiPV(cfg.Engine.MultiPV),
		uci.WithBlunderThreshold(cfg.Blunder.ThresholdCentipawns),
	)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level

	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return uci.NopLogger()
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// parseGame builds a game from FEN so the rules engine validates the
// position before it ever reaches the engine.
func parseGame(fen string) (*chess.Game, error) {
	option, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("invalid FEN %q: %w", fen, err)
	}

	return chess.NewGame(option), nil
}

// decodeMoves validates coordinate-notation moves against the position.
func decodeMoves(game *chess.Game, raw []string) ([]uci.Move, error) {
	moves := make([]uci.Move, 0, len(raw))
	pos := game.Position()

	for _, text := range raw {
		move, err := chess.UCINotation{}.Decode(pos, text)
		if err != nil {
			return nil, fmt.Errorf("invalid move %q: %w", text, err)
		}

		moves = append(moves, move)
		pos = pos.Update(move)
	}

	return moves, nil
}
