package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/groupnom/overture-import/infrastructure/api"
	"github.com/groupnom/overture-import/internal/config"
	"github.com/groupnom/overture-import/internal/log"
)

func serveCmd(global *globalFlags) *cobra.Command {
	var (
		host       string
		port       int
		staleAfter time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the read-only HTTP status API",
		Long: `Start the read-only HTTP status API.

Routes:
  GET /health               Destination connectivity
  GET /api/v1/runs          Import runs, newest first (status, page, page_size)
  GET /api/v1/runs/{id}     One import run
  GET /api/v1/stats         Restaurant counts per state (limit)

Environment variables:
  HOST                      Server host to bind to (default: 0.0.0.0)
  PORT                      Server port to listen on (default: 8080)
  DATABASE_URL, DB_URL      Destination database URL`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, global, host, port, staleAfter)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")
	cmd.Flags().DurationVar(&staleAfter, "stale-after", defaultStaleAfter, "Flag running runs older than this")

	return cmd
}

func runServe(ctx context.Context, global *globalFlags, host string, port int, staleAfter time.Duration) error {
	cfg, err := loadConfig(global)
	if err != nil {
		return err
	}
	cfg = applyServeOverrides(cfg, host, port)

	logger := log.Configure(cfg).Slog()
	logger.LogAttrs(ctx, slog.LevelInfo, "starting status server", append(versionAttrs(), cfg.LogAttrs()...)...)

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Error("failed to close store", slog.Any("error", err))
		}
	}()

	status := api.NewStatusServer(s.Runs(), s.Restaurants(), s, staleAfter, logger)
	return status.Run(ctx, cfg.Addr())
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
