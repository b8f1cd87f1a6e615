// Package main is the entry point for the overture-import CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/groupnom/overture-import/application/importer"
	"github.com/groupnom/overture-import/internal/config"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	envFile     string
	databaseURL string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "overture-import",
		Short: "Import restaurants from Overture Maps",
		Long: `overture-import loads restaurant places from an Overture Maps release
into a relational database, indexed by H3 cell and normalized category.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.PersistentFlags().StringVar(&flags.databaseURL, "database-url", "", "Destination database URL (default: DATABASE_URL, then DB_URL)")

	cmd.AddCommand(importCmd(flags))
	cmd.AddCommand(runsCmd(flags))
	cmd.AddCommand(statsCmd(flags))
	cmd.AddCommand(serveCmd(flags))
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration and requires a database URL.
func loadConfig(flags *globalFlags) (config.AppConfig, error) {
	cfg, err := loadSettings(flags)
	if err != nil {
		return config.AppConfig{}, err
	}
	if err := requireDatabaseURL(cfg); err != nil {
		return config.AppConfig{}, err
	}
	return cfg, nil
}

// loadSettings loads configuration from .env file and environment variables.
// A --database-url flag overrides the environment.
func loadSettings(flags *globalFlags) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(flags.envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("%w: load config: %w", importer.ErrConfiguration, err)
	}
	if flags.databaseURL != "" {
		cfg = cfg.Apply(config.WithDBURL(flags.databaseURL))
	}
	return cfg, nil
}

func requireDatabaseURL(cfg config.AppConfig) error {
	if cfg.DBURL() == "" {
		return fmt.Errorf("%w: database url is required (--database-url, DATABASE_URL or DB_URL)", importer.ErrConfiguration)
	}
	return nil
}
