package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/paulmach/orb"

	"github.com/groupnom/overture-import/domain/place"
	"github.com/groupnom/overture-import/domain/taxonomy"
)

// Column limits of the restaurants table, in characters.
const (
	MaxNameLength    = 255
	MaxAddressLength = 500
	MaxCityLength    = 100
)

// Indexer assigns H3 cells to a coordinate.
type Indexer interface {
	Index(p orb.Point) place.Cells
}

// EnrichResult holds the restaurants derived from a chunk and how many rows
// were skipped.
type EnrichResult struct {
	Restaurants []place.Restaurant
	Dropped     int
}

// Enricher turns raw source rows into restaurants.
type Enricher struct {
	indexer Indexer
	logger  *slog.Logger
}

// NewEnricher creates a new Enricher.
func NewEnricher(indexer Indexer, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{indexer: indexer, logger: logger}
}

// Enrich enriches every row independently. A row that fails is logged and
// skipped; the rest of the chunk is unaffected.
func (e *Enricher) Enrich(ctx context.Context, release string, rows []place.Raw) EnrichResult {
	result := EnrichResult{Restaurants: make([]place.Restaurant, 0, len(rows))}
	for _, row := range rows {
		r, err := e.EnrichOne(release, row)
		if err != nil {
			e.logger.WarnContext(ctx, "skipping row",
				slog.String("gers_id", row.GersID),
				slog.String("error", err.Error()),
			)
			result.Dropped++
			continue
		}
		result.Restaurants = append(result.Restaurants, r)
	}
	return result
}

// EnrichOne enriches a single row. Cells are left empty for coordinates H3
// cannot index; only a missing identifier or name fails the row.
func (e *Enricher) EnrichOne(release string, row place.Raw) (place.Restaurant, error) {
	if strings.TrimSpace(row.GersID) == "" {
		return place.Restaurant{}, fmt.Errorf("%w: missing gers id", ErrRowEnrichment)
	}
	if strings.TrimSpace(row.Name) == "" {
		return place.Restaurant{}, fmt.Errorf("%w: missing name", ErrRowEnrichment)
	}

	address := row.Address
	address.Line = truncate(address.Line, MaxAddressLength)
	address.City = truncate(address.City, MaxCityLength)

	return place.NewRestaurant(
		row.GersID,
		truncate(row.Name, MaxNameLength),
		address,
		row.Point,
		e.indexer.Index(row.Point),
		taxonomy.Normalize(row.PrimaryCategory, row.AlternateCategories),
		release,
	), nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
