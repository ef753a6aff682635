package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100_000.0, cfg.Account.InitialCapital)
	assert.Equal(t, 500*time.Millisecond, cfg.Playback.Interval())
}

func TestLoadFromYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "workbench.yaml")
	data := `
account:
  initial_capital: 25000
playback:
  interval_ms: 250
journal:
  type: sqlite
  db_path: ./replay.sqlite
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 25_000.0, cfg.Account.InitialCapital)
	assert.Equal(t, 250*time.Millisecond, cfg.Playback.Interval())
	assert.Equal(t, "sqlite", cfg.Journal.Type)
}

func TestLoadFromJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "workbench.json")
	data := `{"account": {"initial_capital": 50000}, "journal": {"type": "csv", "trades_file": "t.csv", "equity_file": "e.csv"}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 50_000.0, cfg.Account.InitialCapital)
	assert.Equal(t, "csv", cfg.Journal.Type)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative_capital", func(c *Config) { c.Account.InitialCapital = -5 }},
		{"negative_interval", func(c *Config) { c.Playback.IntervalMS = -1 }},
		{"csv_without_paths", func(c *Config) { c.Journal = JournalConfig{Type: "csv"} }},
		{"sqlite_without_path", func(c *Config) { c.Journal = JournalConfig{Type: "sqlite"} }},
		{"unknown_journal", func(c *Config) { c.Journal = JournalConfig{Type: "carrier-pigeon"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Account.InitialCapital = 42_000

	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 42_000.0, loaded.Account.InitialCapital)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
