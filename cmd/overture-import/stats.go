package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/groupnom/overture-import/application/importer"
	"github.com/groupnom/overture-import/domain/place"
)

func statsCmd(global *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stored restaurant counts per state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("%w: limit must be positive", importer.ErrConfiguration)
			}
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			s, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			total, err := s.Restaurants().Count(cmd.Context())
			if err != nil {
				return err
			}
			states, err := s.Restaurants().CountByState(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printStats(cmd.OutOrStdout(), total, states)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 60, "Maximum states to list")

	return cmd
}

func printStats(out io.Writer, total int64, states []place.StateCount) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "STATE\tRESTAURANTS\t")
	for _, s := range states {
		fmt.Fprintf(w, "%s\t%d\t\n", s.State, s.Count)
	}
	fmt.Fprintf(w, "TOTAL\t%d\t\n", total)
	return w.Flush()
}
