package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/groupnom/overture-import/application/importer"
	"github.com/groupnom/overture-import/domain/importrun"
	"github.com/groupnom/overture-import/domain/store"
	"github.com/groupnom/overture-import/infrastructure/persistence"
	"github.com/groupnom/overture-import/internal/config"
)

const defaultStaleAfter = 6 * time.Hour

func runsCmd(global *globalFlags) *cobra.Command {
	var (
		limit      int
		status     string
		staleAfter time.Duration
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded import runs, newest first",
		Long: `List recorded import runs, newest first.

A run still marked running after --stale-after is flagged STALE: the process
that started it most likely died before recording the outcome.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var options []store.Option
			if status != "" {
				s := importrun.Status(status)
				if !s.Valid() {
					return fmt.Errorf("%w: status must be one of running, completed, failed", importer.ErrConfiguration)
				}
				options = append(options, importrun.WithStatus(s))
			}
			if limit < 1 {
				return fmt.Errorf("%w: limit must be positive", importer.ErrConfiguration)
			}
			options = append(options, importrun.NewestFirst(), store.WithOrderDesc("id"), store.WithLimit(limit))

			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			s, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			runs, err := s.Runs().Find(cmd.Context(), options...)
			if err != nil {
				return err
			}
			return printRuns(cmd.OutOrStdout(), runs, time.Now(), staleAfter)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")
	cmd.Flags().StringVar(&status, "status", "", "Only list runs with this status")
	cmd.Flags().DurationVar(&staleAfter, "stale-after", defaultStaleAfter, "Flag running runs older than this")

	return cmd
}

func printRuns(out io.Writer, runs []importrun.Run, now time.Time, staleAfter time.Duration) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(out, "no import runs recorded")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tRELEASE\tSTATUS\tSTARTED\tDURATION\tPROCESSED\tINSERTED\tUPDATED\tERROR")
	for _, run := range runs {
		status := string(run.Status())
		if run.IsStale(now, staleAfter) {
			status += " (STALE)"
		}
		counts := run.Counts()
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			run.ID(),
			run.Release(),
			status,
			run.StartedAt().UTC().Format(time.RFC3339),
			run.Duration(now).Round(time.Second),
			counts.Processed(),
			counts.Inserted(),
			counts.Updated(),
			run.ErrorMessage(),
		)
	}
	return w.Flush()
}

// openStore connects to the destination named in cfg.
func openStore(ctx context.Context, cfg config.AppConfig) (*persistence.Store, error) {
	s, err := persistence.Open(ctx, cfg.DBURL(), cfg.DBMaxOpenConns(), cfg.Import().WritePageSize())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", importer.ErrConnection, err)
	}
	return s, nil
}
