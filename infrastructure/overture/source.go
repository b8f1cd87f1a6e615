package overture

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// Registers the "duckdb" database/sql driver.
	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/groupnom/overture-import/domain/place"
	"github.com/groupnom/overture-import/domain/taxonomy"
)

// Defaults for the DuckDB session.
const (
	DefaultS3Region  = "us-west-2"
	DefaultChunkSize = 5000
)

// DefaultExtensions are installed and loaded on every session.
// httpfs reads from S3; spatial provides ST_X and ST_Y.
var DefaultExtensions = []string{"httpfs", "spatial"}

// SourceConfig configures the DuckDB session.
type SourceConfig struct {
	BasePath   string
	S3Region   string
	Extensions []string
	Threads    int
	Vocabulary taxonomy.Vocabulary
}

// Source executes place queries on an in-process DuckDB database.
type Source struct {
	db      *sql.DB
	builder QueryBuilder
	logger  *slog.Logger
}

// NewSource opens an in-memory DuckDB database and prepares the session.
func NewSource(ctx context.Context, cfg SourceConfig, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	vocabulary := cfg.Vocabulary
	if vocabulary.Len() == 0 {
		vocabulary = taxonomy.DefaultVocabulary()
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	// One connection keeps extension and SET state on a single session.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	for _, stmt := range setupStatements(cfg) {
		logger.Debug("duckdb setup", slog.String("sql", stmt))
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("duckdb setup %q: %w", stmt, err)
		}
	}

	return &Source{
		db:      db,
		builder: NewQueryBuilder(cfg.BasePath, vocabulary),
		logger:  logger,
	}, nil
}

func setupStatements(cfg SourceConfig) []string {
	var stmts []string
	for _, ext := range cfg.Extensions {
		stmts = append(stmts, "INSTALL "+ext, "LOAD "+ext)
	}
	if cfg.S3Region != "" {
		stmts = append(stmts, "SET s3_region="+quote(cfg.S3Region))
	}
	if cfg.Threads > 0 {
		stmts = append(stmts, fmt.Sprintf("SET threads=%d", cfg.Threads))
	}
	return stmts
}

// Builder returns the query builder used by Open.
func (s *Source) Builder() QueryBuilder { return s.builder }

// Open builds the query for sel and starts streaming it.
func (s *Source) Open(ctx context.Context, sel place.Selection, chunkSize int) (place.Cursor, error) {
	query, err := s.builder.Build(sel)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	s.logger.Info("querying source",
		slog.String("path", s.builder.Path(sel.Release())),
		slog.Int("regions", len(sel.Regions())),
	)
	cursor, err := s.Query(ctx, query, chunkSize)
	if err != nil {
		return nil, err
	}
	return cursor, nil
}

// Query streams an arbitrary query whose columns follow the place layout.
func (s *Source) Query(ctx context.Context, query string, chunkSize int) (*Cursor, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute source query: %w", err)
	}
	return newCursor(rows, chunkSize), nil
}

// Close closes the DuckDB database.
func (s *Source) Close() error {
	return s.db.Close()
}
