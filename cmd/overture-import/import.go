package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/groupnom/overture-import/application/importer"
	"github.com/groupnom/overture-import/domain/place"
	"github.com/groupnom/overture-import/domain/region"
	"github.com/groupnom/overture-import/domain/taxonomy"
	"github.com/groupnom/overture-import/infrastructure/geoindex"
	"github.com/groupnom/overture-import/infrastructure/overture"
	"github.com/groupnom/overture-import/infrastructure/persistence"
	"github.com/groupnom/overture-import/internal/config"
	"github.com/groupnom/overture-import/internal/log"
)

type importFlags struct {
	release        string
	states         string
	nationwide     bool
	batchSize      int
	exactCounts    bool
	categoriesFile string
}

func importCmd(global *globalFlags) *cobra.Command {
	flags := importFlags{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import restaurants from an Overture Maps release",
		Long: `Import restaurants from an Overture Maps release.

Places whose categories match the restaurant vocabulary are read from the
release, indexed by H3 cell at resolutions 8 and 9, and upserted by GERS id
in committed batches. Each run is recorded in import_logs; a failed run keeps
every batch committed before the failure.

Environment variables:
  DATABASE_URL, DB_URL         Destination database URL
  IMPORT_BATCH_SIZE            Rows per committed batch (default: 5000)
  IMPORT_WRITE_PAGE_SIZE       Rows per INSERT statement (default: 1000)
  IMPORT_EXACT_COUNTS          Split inserts and updates exactly (default: false)
  IMPORT_COUNTRY               Country filter (default: US); --states takes
                               US state codes, or subdivision codes elsewhere
  IMPORT_CATEGORIES_FILE       YAML vocabulary replacing the built-in list
  SOURCE_BASE_PATH             Release root (default: s3://overturemaps-us-west-2/release)
  SOURCE_S3_REGION             S3 region (default: us-west-2)
  SOURCE_EXTENSIONS            DuckDB extensions (default: httpfs,spatial)
  SOURCE_THREADS               DuckDB threads (default: engine default)
  REPORTING_LOG_TIME_INTERVAL  Seconds between progress logs (default: 5)
  LOG_LEVEL, LOG_FORMAT        Logging (default: INFO, pretty)`,
		Example: `  overture-import import --release 2024-11-13.0 --states CA,NY
  overture-import import --release 2024-11-13.0 --nationwide --batch-size 10000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runImport(ctx, cmd, global, flags)
		},
	}

	cmd.Flags().StringVar(&flags.release, "release", "", "Overture release label, e.g. 2024-11-13.0")
	cmd.Flags().StringVar(&flags.states, "states", "", "Comma-separated state codes, e.g. CA,NY")
	cmd.Flags().BoolVar(&flags.nationwide, "nationwide", false, "Import every state")
	cmd.Flags().IntVar(&flags.batchSize, "batch-size", 0, "Rows per committed batch (default: 5000)")
	cmd.Flags().BoolVar(&flags.exactCounts, "exact-counts", false, "Count inserts and updates exactly")
	cmd.Flags().StringVar(&flags.categoriesFile, "categories-file", "", "YAML vocabulary replacing the built-in categories")

	_ = cmd.MarkFlagRequired("release")
	cmd.MarkFlagsMutuallyExclusive("states", "nationwide")
	cmd.MarkFlagsOneRequired("states", "nationwide")

	return cmd
}

func runImport(ctx context.Context, cmd *cobra.Command, global *globalFlags, flags importFlags) error {
	if flags.batchSize < 0 {
		return fmt.Errorf("%w: batch size must be positive, got %d", importer.ErrConfiguration, flags.batchSize)
	}

	cfg, err := loadSettings(global)
	if err != nil {
		return err
	}
	importCfg := applyImportOverrides(cfg.Import(), flags)

	// Region codes depend on the country and are checked before the
	// database URL or any connection.
	var regions []string
	if !flags.nationwide {
		regions, err = region.ParseFor(importCfg.Country(), flags.states)
		if err != nil {
			return fmt.Errorf("%w: %w", importer.ErrConfiguration, err)
		}
	}
	if err := requireDatabaseURL(cfg); err != nil {
		return err
	}

	vocabulary := taxonomy.DefaultVocabulary()
	if path := importCfg.CategoriesFile(); path != "" {
		vocabulary, err = taxonomy.LoadVocabulary(path)
		if err != nil {
			return fmt.Errorf("%w: %w", importer.ErrConfiguration, err)
		}
	}

	logger := log.Configure(cfg).Slog()
	logger.LogAttrs(ctx, slog.LevelInfo, "starting overture-import", append(versionAttrs(), cfg.LogAttrs()...)...)

	sourceCfg := cfg.Source()
	openSource := func(ctx context.Context) (place.Source, error) {
		source, err := overture.NewSource(ctx, overture.SourceConfig{
			BasePath:   sourceCfg.BasePath(),
			S3Region:   sourceCfg.S3Region(),
			Extensions: sourceCfg.Extensions(),
			Threads:    sourceCfg.Threads(),
			Vocabulary: vocabulary,
		}, logger)
		if err != nil {
			return nil, err
		}
		return source, nil
	}
	openDestination := func(ctx context.Context) (importer.Destination, error) {
		store, err := persistence.Open(ctx, cfg.DBURL(), cfg.DBMaxOpenConns(), importCfg.WritePageSize())
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	imp := importer.NewImporter(
		openSource,
		openDestination,
		importer.NewEnricher(geoindex.NewIndexer(), logger),
		importer.WithLogger(logger),
		importer.WithReportInterval(cfg.ReportingInterval()),
	)

	run, err := imp.Run(ctx, importer.Params{
		Release:     flags.release,
		Regions:     regions,
		Country:     importCfg.Country(),
		BatchSize:   importCfg.BatchSize(),
		ExactCounts: importCfg.ExactCounts(),
	})
	if err != nil {
		return err
	}

	counts := run.Counts()
	fmt.Fprintf(cmd.OutOrStdout(), "run %d completed: %d processed, %d inserted, %d updated in %s\n",
		run.ID(), counts.Processed(), counts.Inserted(), counts.Updated(),
		run.Duration(time.Now()).Round(time.Second))
	return nil
}

// applyImportOverrides applies command line flags over the environment.
func applyImportOverrides(c config.ImportConfig, flags importFlags) config.ImportConfig {
	if flags.batchSize > 0 {
		c = c.WithBatchSize(flags.batchSize)
	}
	if flags.exactCounts {
		c = c.WithExactCounts(true)
	}
	if flags.categoriesFile != "" {
		c = c.WithCategoriesFile(flags.categoriesFile)
	}
	return c
}
