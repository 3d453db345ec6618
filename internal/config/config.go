// Package config loads and validates the server's fixed table set and
// top-level settings from HCL, following the teacher's
// internal/server/config.go shape.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ServerConfig is the complete process configuration.
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Tables []TableConfig  `hcl:"table,block"`
}

// ServerSettings holds process-level settings.
type ServerSettings struct {
	Address    string `hcl:"address,optional"`
	LogLevel   string `hcl:"log_level,optional"`
	TickMillis int    `hcl:"tick_millis,optional"`
	EscrowURL  string `hcl:"escrow_url,optional"`
}

// TableConfig is one fixed table's stakes and seating rules.
type TableConfig struct {
	Name       string `hcl:"name,label"`
	SmallBlind int    `hcl:"small_blind"`
	BigBlind   int    `hcl:"big_blind"`
	MinBuyIn   int    `hcl:"min_buy_in"`
	MaxBuyIn   int    `hcl:"max_buy_in"`
	MaxSeats   int    `hcl:"max_seats,optional"`
}

// TickInterval returns the configured tick cadence, defaulting to 500ms
// per spec.md §4.6 when unset.
func (s ServerSettings) TickInterval() time.Duration {
	if s.TickMillis <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(s.TickMillis) * time.Millisecond
}

// DefaultServerConfig is the baked-in micro/low/mid/high stakes ladder used
// when no config file is supplied.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{Address: ":8080", LogLevel: "info"},
		Tables: []TableConfig{
			{Name: "micro", SmallBlind: 1, BigBlind: 2, MinBuyIn: 40, MaxBuyIn: 200, MaxSeats: 6},
			{Name: "low", SmallBlind: 5, BigBlind: 10, MinBuyIn: 200, MaxBuyIn: 1000, MaxSeats: 6},
			{Name: "mid", SmallBlind: 25, BigBlind: 50, MinBuyIn: 1000, MaxBuyIn: 5000, MaxSeats: 9},
			{Name: "high", SmallBlind: 100, BigBlind: 200, MinBuyIn: 4000, MaxBuyIn: 20000, MaxSeats: 9},
		},
	}
}

// Load reads and decodes an HCL config file at path. A missing file is not
// an error: it falls back to DefaultServerConfig.
func Load(path string) (*ServerConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: parse %s: %s", path, diags.Error())
	}

	cfg := &ServerConfig{}
	if diags := gohcl.DecodeBody(file.Body, nil, cfg); diags.HasErrors() {
		return nil, fmt.Errorf("config: decode %s: %s", path, diags.Error())
	}

	applyDefaults(cfg)
	return cfg, cfg.Validate()
}

func applyDefaults(cfg *ServerConfig) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = "info"
	}
	for i := range cfg.Tables {
		if cfg.Tables[i].MaxSeats == 0 {
			cfg.Tables[i].MaxSeats = 6
		}
	}
}

// Validate enforces the table-stakes invariants the teacher's config
// validates, plus the buy-in range sanity spec.md §3 requires.
func (c *ServerConfig) Validate() error {
	if len(c.Tables) == 0 {
		return fmt.Errorf("config: at least one table must be configured")
	}
	seen := make(map[string]bool, len(c.Tables))
	for _, tc := range c.Tables {
		if seen[tc.Name] {
			return fmt.Errorf("config: duplicate table name %q", tc.Name)
		}
		seen[tc.Name] = true
		if tc.SmallBlind <= 0 {
			return fmt.Errorf("config: table %s: small blind must be positive", tc.Name)
		}
		if tc.BigBlind <= tc.SmallBlind {
			return fmt.Errorf("config: table %s: big blind must exceed small blind", tc.Name)
		}
		if tc.MaxSeats < 2 || tc.MaxSeats > 10 {
			return fmt.Errorf("config: table %s: max seats must be between 2 and 10", tc.Name)
		}
		if tc.MinBuyIn <= 0 || tc.MinBuyIn >= tc.MaxBuyIn {
			return fmt.Errorf("config: table %s: buy-in range invalid", tc.Name)
		}
	}
	return nil
}
