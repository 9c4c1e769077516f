// Package main is the entry point for the initiative tracker CLI
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/initiative-tracker/internal/app"
	"github.com/KirkDiggler/initiative-tracker/internal/config"
)

var (
	// Storage flags; each overrides its TRACKER_* variable when set
	backend        string
	sqlitePath     string
	redisAddr      string
	redisKeyPrefix string
	logLevel       string

	// tracker is built once per invocation before any subcommand runs
	tracker *app.App
)

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Initiative tracker for tabletop encounters",
	Long: `Tracker keeps a roster of characters and vehicles on this device and runs
combat encounters, rolling initiative for NPCs and recording player rolls.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func main() {
	err := rootCmd.Execute()
	if tracker != nil {
		if closeErr := tracker.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr.Error())
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "storage backend: sqlite, redis or memory")
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite-path", "", "SQLite database file")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", "", "Redis address")
	rootCmd.PersistentFlags().StringVar(&redisKeyPrefix, "redis-prefix", "", "prefix for Redis keys")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(charactersCmd)
	rootCmd.AddCommand(vehiclesCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(encounterCmd)
	rootCmd.AddCommand(doctorCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	tracker, err = app.New(&app.Config{Storage: cfg})
	if err != nil {
		return fmt.Errorf("failed to start tracker: %w", err)
	}
	return nil
}

// loadConfig reads the environment, then applies any flags the user set
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = config.Backend(backend)
	}
	if flags.Changed("sqlite-path") {
		cfg.SQLitePath = sqlitePath
	}
	if flags.Changed("redis-addr") {
		cfg.RedisAddr = redisAddr
	}
	if flags.Changed("redis-prefix") {
		cfg.RedisKeyPrefix = redisKeyPrefix
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
