package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "stockfish", cfg.Engine.Path)
	assert.Equal(t, 3, cfg.Engine.MultiPV)
	assert.Equal(t, 200, cfg.Blunder.ThresholdCentipawns)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{"empty engine path", func(c *Config) { c.Engine.Path = "" }, "engine.path"},
		{"zero threads", func(c *Config) { c.Engine.Threads = 0 }, "engine.threads"},
		{"zero multipv", func(c *Config) { c.Engine.MultiPV = 0 }, "engine.multipv"},
		{"negative threshold", func(c *Config) { c.Blunder.ThresholdCentipawns = -1 }, "blunder.threshold_centipawns"},
		{"zero blunder depth", func(c *Config) { c.Blunder.Depth = 0 }, "blunder.depth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInitAndLoad_FromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine:
  path: /opt/engines/stockfish
  threads: 4
blunder:
  threshold_centipawns: 150
`), 0o600))

	require.NoError(t, Init(path))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/opt/engines/stockfish", cfg.Engine.Path)
	assert.Equal(t, 4, cfg.Engine.Threads)
	assert.Equal(t, 150, cfg.Blunder.ThresholdCentipawns)

	// Unset keys fall back to defaults.
	assert.Equal(t, 3, cfg.Engine.MultiPV)
	assert.Equal(t, 12, cfg.Blunder.Depth)
}

func TestInit_MissingFileUsesDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	require.NoError(t, Init(""))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestConfigDir_RespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "uciwatch"), ConfigDir())
}
