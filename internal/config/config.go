// Package config loads uciwatch configuration from file, environment, and
// flags via viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the complete uciwatch configuration.
type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Blunder  BlunderConfig  `mapstructure:"blunder"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// EngineConfig selects and tunes the engine subprocess.
type EngineConfig struct {
	// Path is the engine binary to spawn.
	Path string `mapstructure:"path"`
	// Args are extra command-line arguments for the engine.
	Args []string `mapstructure:"args"`
	// Threads is the engine's thread count option.
	Threads int `mapstructure:"threads"`
	// MultiPV is the number of ranked candidate lines reported in parallel.
	MultiPV int `mapstructure:"multipv"`
}

// AnalysisConfig controls analysis sessions.
type AnalysisConfig struct {
	// Depth bounds the search; 0 means infinite (cancel with Ctrl-C).
	Depth int `mapstructure:"depth"`
}

// BlunderConfig controls blunder checking.
type BlunderConfig struct {
	// ThresholdCentipawns is the loss above which a move is a blunder.
	ThresholdCentipawns int `mapstructure:"threshold_centipawns"`
	// Depth is the search depth for both blunder-check sessions.
	Depth int `mapstructure:"depth"`
}

// LoggingConfig controls diagnostic output.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error", or "off".
	Level string `mapstructure:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Path:    "stockfish",
			Threads: 1,
			MultiPV: 3,
		},
		Analysis: AnalysisConfig{Depth: 18},
		Blunder: BlunderConfig{
			ThresholdCentipawns: 200,
			Depth:               12,
		},
		Logging: LoggingConfig{Level: "off"},
	}
}

// Init sets defaults and wires the config file and environment. Missing
// config files are fine; defaults apply.
func Init(cfgFile string) error {
	defaults := Default()

	viper.SetDefault("engine.path", defaults.Engine.Path)
	viper.SetDefault("engine.args", defaults.Engine.Args)
	viper.SetDefault("engine.threads", defaults.Engine.Threads)
	viper.SetDefault("engine.multipv", defaults.Engine.MultiPV)
	viper.SetDefault("analysis.depth", defaults.Analysis.Depth)
	viper.SetDefault("blunder.threshold_centipawns", defaults.Blunder.ThresholdCentipawns)
	viper.SetDefault("blunder.depth", defaults.Blunder.Depth)
	viper.SetDefault("logging.level", defaults.Logging.Level)

	viper.SetEnvPrefix("UCIWATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(ConfigDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}

		return fmt.Errorf("read config: %w", err)
	}

	return nil
}

// Load unmarshals and validates the current configuration.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects values the engine or the client cannot work with.
func (c *Config) Validate() error {
	if c.Engine.Path == "" {
		return fmt.Errorf("engine.path must not be empty")
	}

	if c.Engine.Threads < 1 {
		return fmt.Errorf("engine.threads must be >= 1, got %d", c.Engine.Threads)
	}

	if c.Engine.MultiPV < 1 {
		return fmt.Errorf("engine.multipv must be >= 1, got %d", c.Engine.MultiPV)
	}

	if c.Blunder.ThresholdCentipawns < 0 {
		return fmt.Errorf("blunder.threshold_centipawns must be >= 0, got %d", c.Blunder.ThresholdCentipawns)
	}

	if c.Blunder.Depth < 1 {
		return fmt.Errorf("blunder.depth must be >= 1, got %d", c.Blunder.Depth)
	}

	return nil
}

// ConfigDir returns the user's uciwatch config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "uciwatch")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".uciwatch"
	}

	return filepath.Join(home, ".config", "uciwatch")
}
