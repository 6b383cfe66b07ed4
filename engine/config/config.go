// Package config holds the tunables of a simulation run.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid config")

// Config holds simulation configuration.
type Config struct {
	// TickRate is the number of simulation ticks per second.
	TickRate float64 `yaml:"tick_rate"`
	// Workers limits concurrent unit batches; 0 uses GOMAXPROCS.
	Workers int `yaml:"workers"`
	// BatchSize is the number of units per parallel batch.
	BatchSize int `yaml:"batch_size"`
	// QueueCapacity bounds each unit's command queue.
	QueueCapacity int `yaml:"queue_capacity"`
	// PathCapacity bounds each unit's waypoint buffer.
	PathCapacity int `yaml:"path_capacity"`
	// CellSize is the world size of one grid cell.
	CellSize float64 `yaml:"cell_size"`
	// ArrivalRadius is the waypoint acceptance distance.
	ArrivalRadius float64 `yaml:"arrival_radius"`
	// InputDelay is the number of ticks between issuing and applying an order.
	InputDelay int `yaml:"input_delay"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		TickRate:      20,
		Workers:       0,
		BatchSize:     64,
		QueueCapacity: 10,
		PathCapacity:  256,
		CellSize:      1,
		ArrivalRadius: 0.15,
		InputDelay:    2,
		LogLevel:      "info",
	}
}

// Load reads configuration from a YAML file over the defaults. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes configuration to a YAML file, creating parent directories if needed.
func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch {
	case c.TickRate <= 0:
		return fmt.Errorf("%w: tick_rate must be positive", ErrInvalid)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", ErrInvalid)
	case c.BatchSize < 1:
		return fmt.Errorf("%w: batch_size must be at least 1", ErrInvalid)
	case c.QueueCapacity < 1:
		return fmt.Errorf("%w: queue_capacity must be at least 1", ErrInvalid)
	case c.PathCapacity < 1:
		return fmt.Errorf("%w: path_capacity must be at least 1", ErrInvalid)
	case c.CellSize <= 0:
		return fmt.Errorf("%w: cell_size must be positive", ErrInvalid)
	case c.ArrivalRadius <= 0:
		return fmt.Errorf("%w: arrival_radius must be positive", ErrInvalid)
	case c.InputDelay < 0:
		return fmt.Errorf("%w: input_delay must not be negative", ErrInvalid)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level maps LogLevel to a slog level
func (c *Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("%w: unknown log_level %q", ErrInvalid, c.LogLevel)
}

// Dt returns the fixed timestep in seconds
func (c *Config) Dt() float64 { return 1 / c.TickRate }
