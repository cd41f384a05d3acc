// Package config loads the application-level configuration for the
// risksim CLI. Policy profiles have their own schema in the policy
// package; this file covers everything around the engine.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/risksim/montecarlo"
)

// Config is the complete application configuration.
type Config struct {
	Account    AccountConfig     `json:"account" yaml:"account"`
	Journal    JournalConfig     `json:"journal" yaml:"journal"`
	MonteCarlo montecarlo.Config `json:"montecarlo" yaml:"montecarlo"`
}

// AccountConfig seeds the simulated account.
type AccountConfig struct {
	BalanceCents int64  `json:"balance_cents" yaml:"balance_cents"`
	Timezone     string `json:"timezone" yaml:"timezone"`
}

// JournalConfig selects where runs are persisted.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv" or "sqlite"
	RunsFile   string `json:"runs_file,omitempty" yaml:"runs_file,omitempty"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON based on
// content; YAML is tried first).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on
// extension).
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

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Account.BalanceCents <= 0 {
		return fmt.Errorf("account.balance_cents must be positive")
	}
	if c.Account.Timezone != "" {
		if _, err := time.LoadLocation(c.Account.Timezone); err != nil {
			return fmt.Errorf("account.timezone: unknown timezone %q", c.Account.Timezone)
		}
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.RunsFile == "" || c.Journal.TradesFile == "" {
			return fmt.Errorf("journal runs_file and trades_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "", "none":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	if err := c.MonteCarlo.Validate(); err != nil {
		return fmt.Errorf("montecarlo: %w", err)
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			BalanceCents: 10_000_000, // $100k
			Timezone:     "UTC",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./risksim.sqlite",
		},
		MonteCarlo: montecarlo.Config{
			Simulations: 1000,
			NumTrades:   250,
			Seed:        1,
			Workers:     4,
		},
	}
}
