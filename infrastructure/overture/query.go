// Package overture reads Overture Maps places through DuckDB.
package overture

import (
	"fmt"
	"strings"

	"github.com/groupnom/overture-import/domain/place"
	"github.com/groupnom/overture-import/domain/taxonomy"
)

// DefaultBasePath is the public Overture release bucket.
const DefaultBasePath = "s3://overturemaps-us-west-2/release"

const (
	theme = "places"
	kind  = "place"
)

// Column order of every built query. The cursor scans in this order.
var columns = []string{
	"id AS gers_id",
	"names.primary AS name",
	"addresses[1].freeform AS address",
	"addresses[1].locality AS city",
	"addresses[1].region AS state",
	"addresses[1].postcode AS postal_code",
	"addresses[1].country AS country",
	"ST_Y(geometry) AS lat",
	"ST_X(geometry) AS lng",
	"categories.primary AS primary_category",
	"categories.alternate AS alt_categories",
}

// QueryBuilder builds the DuckDB query selecting restaurant-like places.
type QueryBuilder struct {
	basePath   string
	vocabulary taxonomy.Vocabulary
}

// NewQueryBuilder creates a QueryBuilder. An empty basePath uses
// DefaultBasePath.
func NewQueryBuilder(basePath string, vocabulary taxonomy.Vocabulary) QueryBuilder {
	if basePath == "" {
		basePath = DefaultBasePath
	}
	return QueryBuilder{
		basePath:   strings.TrimRight(basePath, "/"),
		vocabulary: vocabulary,
	}
}

// Path returns the parquet glob for a release.
func (b QueryBuilder) Path(release string) string {
	return fmt.Sprintf("%s/%s/theme=%s/type=%s/*", b.basePath, release, theme, kind)
}

// Build returns the query for a selection. It performs no I/O.
func (b QueryBuilder) Build(sel place.Selection) (string, error) {
	if err := sel.Validate(); err != nil {
		return "", err
	}
	if b.vocabulary.Len() == 0 {
		return "", taxonomy.ErrEmptyVocabulary
	}

	var sb strings.Builder
	sb.WriteString("SELECT\n    ")
	sb.WriteString(strings.Join(columns, ",\n    "))
	fmt.Fprintf(&sb, "\nFROM read_parquet(%s, filename=true, hive_partitioning=true)", quote(b.Path(sel.Release())))
	fmt.Fprintf(&sb, "\nWHERE addresses[1].country = %s", quote(sel.Country()))
	fmt.Fprintf(&sb, "\n  AND (%s)", b.categoryPredicate())
	if !sel.Nationwide() {
		fmt.Fprintf(&sb, "\n  AND addresses[1].region IN (%s)", quoteList(sel.Regions()))
	}
	sb.WriteString("\n  AND names.primary IS NOT NULL")
	sb.WriteString("\n  AND ST_Y(geometry) IS NOT NULL")
	sb.WriteString("\n  AND ST_X(geometry) IS NOT NULL")
	return sb.String(), nil
}

// categoryPredicate matches any vocabulary entry as a case-insensitive
// substring of the primary category.
func (b QueryBuilder) categoryPredicate() string {
	names := b.vocabulary.Names()
	preds := make([]string, len(names))
	for i, n := range names {
		preds[i] = fmt.Sprintf("LOWER(categories.primary) LIKE %s", quote("%"+n+"%"))
	}
	return strings.Join(preds, " OR ")
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quote(v)
	}
	return strings.Join(quoted, ", ")
}
