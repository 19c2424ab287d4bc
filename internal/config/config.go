// Package config loads and validates Eureka configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all Eureka configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Agenda scheduling
	Agenda AgendaConfig `yaml:"agenda"`

	// Worth economy / credit assignment
	Worth WorthConfig `yaml:"worth"`

	// Run loop limits
	Run RunConfig `yaml:"run"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// AgendaConfig tunes task scheduling behavior.
type AgendaConfig struct {
	// MinPriority is the insertion floor; tasks below it are dropped silently.
	MinPriority int `yaml:"min_priority"`

	// ReasonBonus is the priority bonus per distinct reason when two tasks
	// targeting the same (unit, slot) merge. The merged priority is
	// min(1000, max(old, new) + ReasonBonus*distinctReasons).
	ReasonBonus int `yaml:"reason_bonus"`
}

// WorthConfig tunes the credit-assignment deltas.
type WorthConfig struct {
	SuccessDelta int `yaml:"success_delta"` // Applied to the target unit on completed tasks with effects
	FailureDelta int `yaml:"failure_delta"` // Subtracted on failed tasks

	// SpecializationRatio scales a parent's worth when a specialization
	// is created (new worth = ratio * parent worth).
	SpecializationRatio float64 `yaml:"specialization_ratio"`
}

// RunConfig bounds the engine's run loop.
type RunConfig struct {
	EternalMode      bool   `yaml:"eternal_mode"`
	MaxCycles        int    `yaml:"max_cycles"`
	MaxTasksPerCycle int    `yaml:"max_tasks_per_cycle"`
	Timeout          string `yaml:"timeout"` // Wall clock, checked between tasks only
	RandomSeed       int64  `yaml:"random_seed"`
}

// LoggingConfig configures categorized file logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Name:    "eureka",
		Version: "1.0.0",

		Agenda: AgendaConfig{
			MinPriority: 150,
			ReasonBonus: 10,
		},

		Worth: WorthConfig{
			SuccessDelta:        50,
			FailureDelta:        20,
			SpecializationRatio: 0.9,
		},

		Run: RunConfig{
			EternalMode:      false,
			MaxCycles:        10,
			MaxTasksPerCycle: 100,
			Timeout:          "5m",
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults
// for a missing file and backfilling zero values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.backfill()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// backfill applies defaults for values that cannot be meaningful. The
// worth deltas are deliberately left alone: Load starts from
// DefaultConfig, so an absent key keeps its default, while an explicit
// zero disables that side of the economy.
func (c *Config) backfill() {
	def := DefaultConfig()

	if c.Agenda.MinPriority <= 0 {
		c.Agenda.MinPriority = def.Agenda.MinPriority
	}
	if c.Agenda.ReasonBonus <= 0 {
		c.Agenda.ReasonBonus = def.Agenda.ReasonBonus
	}
	if c.Worth.SpecializationRatio <= 0 || c.Worth.SpecializationRatio > 1 {
		c.Worth.SpecializationRatio = def.Worth.SpecializationRatio
	}
	if c.Run.MaxTasksPerCycle <= 0 {
		c.Run.MaxTasksPerCycle = def.Run.MaxTasksPerCycle
	}
	if c.Run.Timeout == "" {
		c.Run.Timeout = def.Run.Timeout
	}
}

// GetTimeout parses the run timeout, defaulting to 5 minutes.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Run.Timeout)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Agenda.MinPriority < 0 || c.Agenda.MinPriority > 1000 {
		return fmt.Errorf("agenda.min_priority must be within [0, 1000], got %d", c.Agenda.MinPriority)
	}
	if c.Worth.SuccessDelta < 0 {
		return fmt.Errorf("worth.success_delta must be >= 0, got %d", c.Worth.SuccessDelta)
	}
	if c.Worth.FailureDelta < 0 {
		return fmt.Errorf("worth.failure_delta is a magnitude and must be >= 0, got %d", c.Worth.FailureDelta)
	}
	if c.Run.MaxCycles < 0 {
		return fmt.Errorf("run.max_cycles must be >= 0, got %d", c.Run.MaxCycles)
	}
	if _, err := time.ParseDuration(c.Run.Timeout); err != nil {
		return fmt.Errorf("run.timeout is not a valid duration: %w", err)
	}
	return nil
}
