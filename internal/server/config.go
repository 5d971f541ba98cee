package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/blackjack/internal/game"
)

// Config represents the complete server configuration
type Config struct {
	Server ServerSettings
	Table  TableSettings
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address        string
	Port           int
	LogLevel       string
	PollIntervalMs int
}

// TableSettings defines the rules and pacing of the table
type TableSettings struct {
	StartingChips       int
	TurnTimeoutSeconds  int
	DealerDrawDelayMs   int
	FinishedHoldSeconds int
	DealerStandsOn      int
}

// fileConfig is the shape of the HCL file. Blocks and attributes may all be
// omitted; pointers tell an unset value apart from an explicit zero.
type fileConfig struct {
	Server *fileServer `hcl:"server,block"`
	Table  *fileTable  `hcl:"table,block"`
}

type fileServer struct {
	Address        *string `hcl:"address,optional"`
	Port           *int    `hcl:"port,optional"`
	LogLevel       *string `hcl:"log_level,optional"`
	PollIntervalMs *int    `hcl:"poll_interval_ms,optional"`
}

type fileTable struct {
	StartingChips       *int `hcl:"starting_chips,optional"`
	TurnTimeoutSeconds  *int `hcl:"turn_timeout_seconds,optional"`
	DealerDrawDelayMs   *int `hcl:"dealer_draw_delay_ms,optional"`
	FinishedHoldSeconds *int `hcl:"finished_hold_seconds,optional"`
	DealerStandsOn      *int `hcl:"dealer_stands_on,optional"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	defaults := game.DefaultConfig()

	return &Config{
		Server: ServerSettings{
			Address:        "localhost",
			Port:           3000,
			LogLevel:       "info",
			PollIntervalMs: 1000,
		},
		Table: TableSettings{
			StartingChips:       defaults.StartingChips,
			TurnTimeoutSeconds:  int(defaults.TurnTimeout / time.Second),
			DealerDrawDelayMs:   int(defaults.DealerDrawDelay / time.Millisecond),
			FinishedHoldSeconds: int(defaults.FinishedHold / time.Second),
			DealerStandsOn:      defaults.DealerStandsOn,
		},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields
// the defaults, and any value the file leaves out keeps its default.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := DefaultConfig()
	if s := raw.Server; s != nil {
		set(&cfg.Server.Address, s.Address)
		set(&cfg.Server.Port, s.Port)
		set(&cfg.Server.LogLevel, s.LogLevel)
		set(&cfg.Server.PollIntervalMs, s.PollIntervalMs)
	}
	if t := raw.Table; t != nil {
		set(&cfg.Table.StartingChips, t.StartingChips)
		set(&cfg.Table.TurnTimeoutSeconds, t.TurnTimeoutSeconds)
		set(&cfg.Table.DealerDrawDelayMs, t.DealerDrawDelayMs)
		set(&cfg.Table.FinishedHoldSeconds, t.FinishedHoldSeconds)
		set(&cfg.Table.DealerStandsOn, t.DealerStandsOn)
	}

	return cfg, nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Server.LogLevel, err)
	}
	if c.Server.PollIntervalMs < 50 {
		return fmt.Errorf("poll interval must be at least 50ms, got %d", c.Server.PollIntervalMs)
	}

	if c.Table.StartingChips <= 0 {
		return fmt.Errorf("starting chips must be positive")
	}
	if c.Table.TurnTimeoutSeconds <= 0 {
		return fmt.Errorf("turn timeout must be positive")
	}
	if c.Table.DealerDrawDelayMs < 0 {
		return fmt.Errorf("dealer draw delay cannot be negative")
	}
	if c.Table.FinishedHoldSeconds < 0 {
		return fmt.Errorf("finished hold cannot be negative")
	}
	if c.Table.DealerStandsOn < 2 || c.Table.DealerStandsOn > 21 {
		return fmt.Errorf("dealer must stand on a total between 2 and 21, got %d", c.Table.DealerStandsOn)
	}

	return nil
}

// Addr returns the full listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// PollInterval is how often /ws pushes a snapshot
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Server.PollIntervalMs) * time.Millisecond
}

// GameConfig converts the table block into the game's rules
func (c *Config) GameConfig() game.Config {
	return game.Config{
		StartingChips:   c.Table.StartingChips,
		TurnTimeout:     time.Duration(c.Table.TurnTimeoutSeconds) * time.Second,
		DealerDrawDelay: time.Duration(c.Table.DealerDrawDelayMs) * time.Millisecond,
		FinishedHold:    time.Duration(c.Table.FinishedHoldSeconds) * time.Second,
		DealerStandsOn:  c.Table.DealerStandsOn,
	}
}
