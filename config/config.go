// Package config holds the workbench configuration: account seed, playback
// pacing, and where replay output is journaled. Files may be YAML or JSON.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete workbench configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Playback PlaybackConfig `json:"playback" yaml:"playback"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// AccountConfig seeds the replay and curve computations.
type AccountConfig struct {
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
}

// PlaybackConfig paces the replay timer.
type PlaybackConfig struct {
	IntervalMS int  `json:"interval_ms" yaml:"interval_ms"`
	Autostart  bool `json:"autostart,omitempty" yaml:"autostart,omitempty"`
}

// Interval returns the tick interval as a duration.
func (p PlaybackConfig) Interval() time.Duration {
	return time.Duration(p.IntervalMS) * time.Millisecond
}

// JournalConfig selects where replay output is persisted.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Account:  AccountConfig{InitialCapital: 100_000},
		Playback: PlaybackConfig{IntervalMS: 500},
		Journal:  JournalConfig{Type: "none"},
	}
}

// LoadFromFile loads configuration from a file. YAML is tried first, then
// JSON, regardless of extension.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration, choosing the format by extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for hard errors.
func (c *Config) Validate() error {
	if c.Account.InitialCapital < 0 || math.IsNaN(c.Account.InitialCapital) || math.IsInf(c.Account.InitialCapital, 0) {
		return fmt.Errorf("account.initial_capital must be a finite, non-negative number")
	}
	if c.Playback.IntervalMS < 0 {
		return fmt.Errorf("playback.interval_ms must not be negative")
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal type csv requires trades_file and equity_file")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal type sqlite requires db_path")
		}
	default:
		return fmt.Errorf("unknown journal type %q", c.Journal.Type)
	}
	return nil
}
