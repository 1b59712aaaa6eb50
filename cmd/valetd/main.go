// ABOUTME: Entry point for the valet butler daemon
// ABOUTME: Wires config, store, hooks, permissions, and the orchestrator

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/valet-labs/valet/internal/config"
)

// version is set by goreleaser at build time.
var version = "dev"

const banner = `
            _      _
 __ ____ _ | | ___| |_
 \ V / _' || |/ _ \ __|
  \_/\__,_||_|\___/\__|
`

var configPath string

func main() {
	// A missing .env is fine; it only supplies optional overrides.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:     "valetd",
		Short:   "Household butler agent with delegation, hooks, and tool permissions",
		Version: version,
		Long: `valetd runs a butler agent that delegates to specialist sub-agents
(scheduler, correspondent, librarian, concierge), fires lifecycle hooks
around each turn and tool call, and gates every tool through risk-tier
permission checks with a persistent audit log.`,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: $VALET_CONFIG or ~/.config/valet/valet.yaml)")

	root.AddCommand(
		chatCmd(),
		auditCmd(),
		toolsCmd(),
		hooksCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// getConfigPath resolves the config file location.
// Priority: --config flag > VALET_CONFIG env var > XDG_CONFIG_HOME/valet/valet.yaml > ~/.config/valet/valet.yaml
func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv("VALET_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "valet.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "valet", "valet.yaml")
}

// getDataPath returns the valet data directory.
// Priority: XDG_DATA_HOME/valet > ~/.local/share/valet
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "valet")
}

// loadConfig reads the config file, falling back to defaults when none exists.
func loadConfig() (*config.Config, string, error) {
	path := getConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := config.Default()
		cfg.Database.Path = filepath.Join(getDataPath(), "valet.db")
		return cfg, "(defaults)", nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(getDataPath(), "valet.db")
	}
	return cfg, path, nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

func printBanner(cfgSource string) {
	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	cyan.Print(banner)
	gray.Printf("    version: %s\n", version)
	gray.Printf("    config:  %s\n\n", cfgSource)
}
