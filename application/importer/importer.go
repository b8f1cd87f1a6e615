// Package importer runs the Overture restaurant import: it streams places
// from the source, enriches them and upserts them in committed batches while
// recording the run.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/groupnom/overture-import/domain/importrun"
	"github.com/groupnom/overture-import/domain/place"
	"github.com/groupnom/overture-import/domain/region"
	"github.com/groupnom/overture-import/internal/log"
)

// Defaults applied to empty Params fields.
const (
	DefaultCountry        = "US"
	DefaultReportInterval = 5 * time.Second
)

// Destination is the store an import writes to.
type Destination interface {
	place.Writer
	importrun.Tracker
	Close() error
}

// SourceOpener connects to the source dataset.
type SourceOpener func(ctx context.Context) (place.Source, error)

// DestinationOpener connects to the destination store.
type DestinationOpener func(ctx context.Context) (Destination, error)

// Params selects what one run imports.
type Params struct {
	Release     string
	Regions     []string // empty imports every region
	Country     string
	BatchSize   int
	ExactCounts bool
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Importer) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithReportInterval sets the minimum time between progress logs.
func WithReportInterval(d time.Duration) Option {
	return func(i *Importer) {
		if d > 0 {
			i.reportInterval = d
		}
	}
}

// Importer orchestrates an import run. Work is strictly sequential: fetch,
// enrich, write and commit happen in order on the calling goroutine.
type Importer struct {
	openSource      SourceOpener
	openDestination DestinationOpener
	enricher        *Enricher
	logger          *slog.Logger
	reportInterval  time.Duration
}

// NewImporter creates a new Importer.
func NewImporter(openSource SourceOpener, openDestination DestinationOpener, enricher *Enricher, opts ...Option) *Importer {
	i := &Importer{
		openSource:      openSource,
		openDestination: openDestination,
		enricher:        enricher,
		logger:          slog.Default(),
		reportInterval:  DefaultReportInterval,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run executes one import. Configuration problems and connection failures
// return before any run is recorded. Once the run is recorded it always ends
// completed or failed, and the returned Run reflects what was stored.
func (i *Importer) Run(ctx context.Context, p Params) (importrun.Run, error) {
	selection, err := p.selection()
	if err != nil {
		return importrun.Run{}, err
	}

	correlationID := uuid.NewString()
	ctx = log.WithCorrelationID(ctx, correlationID)
	logger := i.logger.With(
		slog.String("correlation_id", correlationID),
		slog.String("release", selection.Release()),
	)
	if selection.Nationwide() {
		logger.InfoContext(ctx, "starting import", slog.String("scope", "nationwide"))
	} else {
		logger.InfoContext(ctx, "starting import", slog.Any("regions", selection.Regions()))
	}

	source, err := i.openSource(ctx)
	if err != nil {
		return importrun.Run{}, fmt.Errorf("%w: open source: %w", ErrConnection, err)
	}
	defer func() {
		if err := source.Close(); err != nil {
			logger.WarnContext(ctx, "close source", slog.String("error", err.Error()))
		}
	}()

	destination, err := i.openDestination(ctx)
	if err != nil {
		return importrun.Run{}, fmt.Errorf("%w: open destination: %w", ErrConnection, err)
	}
	defer func() {
		if err := destination.Close(); err != nil {
			logger.WarnContext(ctx, "close destination", slog.String("error", err.Error()))
		}
	}()

	run, err := destination.Start(ctx, selection.Release())
	if err != nil {
		return importrun.Run{}, fmt.Errorf("%w: record run start: %w", ErrWrite, err)
	}
	logger = logger.With(slog.Int64("run_id", run.ID()))

	counts, runErr := i.stream(ctx, logger, source, destination, selection, p)
	if runErr != nil {
		failed := run.Fail(counts, runErr)
		logger.ErrorContext(ctx, "import failed",
			slog.String("error", runErr.Error()),
			slog.Int("records_processed", counts.Processed()),
		)
		// The failure is recorded even when ctx was cancelled.
		if _, err := destination.Finish(context.WithoutCancel(ctx), failed); err != nil {
			logger.ErrorContext(ctx, "record failed run", slog.String("error", err.Error()))
			runErr = errors.Join(runErr, fmt.Errorf("%w: record run failure: %w", ErrWrite, err))
		}
		return failed, runErr
	}

	completed := run.Complete(counts)
	if _, err := destination.Finish(ctx, completed); err != nil {
		return completed, fmt.Errorf("%w: record run completion: %w", ErrWrite, err)
	}
	logger.InfoContext(ctx, "import completed",
		slog.Int("records_processed", counts.Processed()),
		slog.Int("records_inserted", counts.Inserted()),
		slog.Int("records_updated", counts.Updated()),
		slog.Duration("duration", completed.Duration(time.Now())),
	)
	return completed, nil
}

// stream reads the source to exhaustion, flushing full batches as they fill
// and the remainder at the end. The returned counts cover committed batches
// only, also when an error is returned.
func (i *Importer) stream(
	ctx context.Context,
	logger *slog.Logger,
	source place.Source,
	destination place.Writer,
	selection place.Selection,
	p Params,
) (importrun.Counts, error) {
	var committed importrun.Counts

	cursor, err := source.Open(ctx, selection, p.BatchSize)
	if err != nil {
		if isConfigurationError(err) {
			return committed, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		return committed, fmt.Errorf("%w: %w", ErrSourceRead, err)
	}
	defer func() {
		if err := cursor.Close(); err != nil {
			logger.WarnContext(ctx, "close cursor", slog.String("error", err.Error()))
		}
	}()

	progress := newProgress(logger, i.reportInterval)
	pending := make([]place.Restaurant, 0, p.BatchSize)

	flush := func(batch []place.Restaurant) error {
		counts, err := i.flush(ctx, destination, batch, p.ExactCounts)
		if err != nil {
			return err
		}
		committed = committed.Add(counts)
		progress.committed(ctx, counts.Processed())
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return committed, fmt.Errorf("import interrupted: %w", err)
		}

		chunk, err := cursor.Next(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return committed, fmt.Errorf("import interrupted: %w", ctxErr)
			}
			return committed, fmt.Errorf("%w: %w", ErrSourceRead, err)
		}
		if len(chunk) == 0 {
			break
		}

		result := i.enricher.Enrich(ctx, selection.Release(), chunk)
		progress.read(len(chunk), result.Dropped)
		pending = append(pending, result.Restaurants...)

		for len(pending) >= p.BatchSize {
			if err := flush(pending[:p.BatchSize]); err != nil {
				return committed, err
			}
			pending = append(pending[:0], pending[p.BatchSize:]...)
		}
	}

	if len(pending) > 0 {
		if err := flush(pending); err != nil {
			return committed, err
		}
	}
	progress.done(ctx)
	return committed, nil
}

// flush writes one batch in its own transaction. Nothing is counted unless
// the commit succeeds.
func (i *Importer) flush(ctx context.Context, destination place.Writer, batch []place.Restaurant, exact bool) (importrun.Counts, error) {
	tx, err := destination.Begin(ctx)
	if err != nil {
		return importrun.Counts{}, fmt.Errorf("%w: begin batch: %w", ErrWrite, err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing int64
	if exact {
		ids := make([]string, len(batch))
		for n, r := range batch {
			ids[n] = r.GersID()
		}
		existing, err = tx.CountExisting(ctx, ids)
		if err != nil {
			return importrun.Counts{}, fmt.Errorf("%w: count existing: %w", ErrWrite, err)
		}
	}

	written, err := tx.Upsert(ctx, batch)
	if err != nil {
		return importrun.Counts{}, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := tx.Commit(); err != nil {
		return importrun.Counts{}, fmt.Errorf("%w: commit batch: %w", ErrWrite, err)
	}

	if !exact {
		return importrun.NewCounts(written, written, 0), nil
	}
	updated := min(int(existing), written)
	return importrun.NewCounts(written, written-updated, updated), nil
}

// selection validates p and builds the source selection.
func (p Params) selection() (place.Selection, error) {
	if p.BatchSize <= 0 {
		return place.Selection{}, fmt.Errorf("%w: batch size must be positive, got %d", ErrConfiguration, p.BatchSize)
	}
	country := p.Country
	if country == "" {
		country = DefaultCountry
	}
	regions, err := region.ValidateFor(country, p.Regions)
	if err != nil {
		return place.Selection{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	selection := place.NewSelection(p.Release, country, regions)
	if err := selection.Validate(); err != nil {
		return place.Selection{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return selection, nil
}

// progress logs throughput at most once per interval.
type progress struct {
	logger   *slog.Logger
	interval time.Duration
	started  time.Time
	lastLog  time.Time

	rowsRead      int
	rowsDropped   int
	rowsCommitted int
}

func newProgress(logger *slog.Logger, interval time.Duration) *progress {
	now := time.Now()
	return &progress{logger: logger, interval: interval, started: now, lastLog: now}
}

func (p *progress) read(rows, dropped int) {
	p.rowsRead += rows
	p.rowsDropped += dropped
}

func (p *progress) committed(ctx context.Context, rows int) {
	p.rowsCommitted += rows
	if time.Since(p.lastLog) < p.interval {
		return
	}
	p.lastLog = time.Now()
	p.log(ctx, "import progress")
}

func (p *progress) done(ctx context.Context) {
	p.log(ctx, "source exhausted")
}

func (p *progress) log(ctx context.Context, msg string) {
	elapsed := time.Since(p.started)
	rate := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(p.rowsCommitted) / secs
	}
	p.logger.InfoContext(ctx, msg,
		slog.Int("rows_read", p.rowsRead),
		slog.Int("rows_dropped", p.rowsDropped),
		slog.Int("rows_committed", p.rowsCommitted),
		slog.String("rows_per_sec", fmt.Sprintf("%.0f", rate)),
		slog.Duration("elapsed", elapsed),
	)
}
