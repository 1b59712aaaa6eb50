// ABOUTME: Configuration loading and parsing for the valet daemon
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/valet-labs/valet/internal/hooks"
)

// Config represents the complete valet configuration
type Config struct {
	Database     DatabaseConfig     `yaml:"database"`
	Catalog      CatalogConfig      `yaml:"catalog"`
	Hooks        []HookConfig       `yaml:"hooks"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// CatalogConfig points at the tool catalog file.
// An empty path uses the built-in default catalog.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// HookConfig is one hook registration entry.
// Entries for the same event run in the order they appear here.
type HookConfig struct {
	Event   string `yaml:"event"`
	Command string `yaml:"command"`

	Timeout    time.Duration `yaml:"-"`
	TimeoutRaw string        `yaml:"timeout"`

	// ContinueOnError defaults to true: one failing hook does not abort
	// its siblings. Set false to stop the event's remaining hooks.
	ContinueOnError *bool `yaml:"continue_on_error"`
}

// OrchestratorConfig holds per-turn tuning values.
type OrchestratorConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	MaxDelegations      int     `yaml:"max_delegations"`
	HistoryLimit        int     `yaml:"history_limit"`

	DelegationTimeout    time.Duration `yaml:"-"`
	DelegationTimeoutRaw string        `yaml:"delegation_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns a runnable configuration for when no file exists.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "valet.db"},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	for i, h := range c.Hooks {
		if !hooks.Event(h.Event).Valid() {
			return fmt.Errorf("hooks[%d]: unknown event %q (valid: %v)", i, h.Event, hooks.ValidEvents)
		}
		if h.Command == "" {
			return fmt.Errorf("hooks[%d]: command is required", i)
		}
	}

	if t := c.Orchestrator.ConfidenceThreshold; t < 0 || t > 1 {
		return fmt.Errorf("orchestrator.confidence_threshold %v out of range [0,1]", t)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	for i := range cfg.Hooks {
		if raw := cfg.Hooks[i].TimeoutRaw; raw != "" {
			cfg.Hooks[i].Timeout, err = time.ParseDuration(raw)
			if err != nil {
				return fmt.Errorf("parsing hooks[%d].timeout %q: %w", i, raw, err)
			}
		}
	}

	if raw := cfg.Orchestrator.DelegationTimeoutRaw; raw != "" {
		cfg.Orchestrator.DelegationTimeout, err = time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("parsing orchestrator.delegation_timeout %q: %w", raw, err)
		}
	}

	return nil
}

// HookRegistrations converts the configured hook entries into runner
// registrations, preserving file order.
func (c *Config) HookRegistrations(projectRoot string) []hooks.Registration {
	regs := make([]hooks.Registration, 0, len(c.Hooks))
	for i, h := range c.Hooks {
		stopOnError := false
		if h.ContinueOnError != nil && !*h.ContinueOnError {
			stopOnError = true
		}
		regs = append(regs, hooks.Registration{
			Event:       hooks.Event(h.Event),
			Name:        fmt.Sprintf("%s-%d", h.Event, i),
			Handler:     &hooks.CommandHandler{Command: h.Command, Dir: projectRoot},
			Timeout:     h.Timeout,
			StopOnError: stopOnError,
		})
	}
	return regs
}
