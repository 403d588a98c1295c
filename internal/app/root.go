package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/journalwatch/internal/config"
	"github.com/blackwell-systems/journalwatch/internal/store"
)

var (
	dbPath     string
	configPath string
	logLevel   string

	// RootCmd is the root command for journalwatch
	RootCmd = &cobra.Command{
		Use:   "journalwatch",
		Short: "Live game journal ingestion into a shared SQLite database",
		Long: `journalwatch follows the game client's append-only journal and keeps a
SQLite database current with who is playing, where, what the ship carries
and what prospecting, refining, signal and chat events have happened.

Other programs read the same database. They decide whether the ingestion
service is alive from its heartbeat record, never from process lists.

Quick Start:
  1. journalwatch watch --daemon
  2. journalwatch status
  3. journalwatch materials set Painite --min 25

Examples:
  # Run the service in the foreground (Ctrl+C to stop)
  journalwatch watch

  # Check service, session and ship state
  journalwatch status

  # Show unprocessed prospecting detections
  journalwatch detections

  # Show chat since a journal timestamp
  journalwatch chat --since 2025-11-29T12:00:00Z`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("journalwatch: live game journal ingestion")
			fmt.Println()
			fmt.Println("Tip: Run 'journalwatch watch --daemon' to start the service.")
			fmt.Println("     Run 'journalwatch status' to check it.")
			fmt.Println("     Run 'journalwatch --help' for all commands.")
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: ~/.journalwatch/journalwatch.db)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/journalwatch/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2

	RootCmd.AddCommand(watchCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(detectionsCmd)
	RootCmd.AddCommand(materialsCmd)
	RootCmd.AddCommand(signalsCmd)
	RootCmd.AddCommand(chatCmd)
	RootCmd.AddCommand(refinedCmd)
	RootCmd.AddCommand(clearCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// loadConfig reads the config file and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getDBPath returns the database path from the flag or config and makes
// sure its directory exists.
func getDBPath(cfg *config.Config) (string, error) {
	path := cfg.Store.Path
	if dbPath != "" {
		path = dbPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return path, nil
}

// openStore opens the database and ensures the schema exists.
func openStore(cfg *config.Config) (*store.Store, error) {
	path, err := getDBPath(cfg)
	if err != nil {
		return nil, err
	}

	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := st.CreateSchema(); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create database schema: %w", err)
	}
	return st, nil
}

// withStore loads config, opens the store and runs fn against it.
func withStore(fn func(cfg *config.Config, st *store.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(cfg, st)
}
