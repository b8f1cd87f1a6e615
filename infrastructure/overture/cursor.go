package overture

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/groupnom/overture-import/domain/place"
)

// Cursor reads query results in fixed-size chunks. It holds at most one
// chunk in memory.
type Cursor struct {
	rows      *sql.Rows
	chunkSize int
	done      bool
}

func newCursor(rows *sql.Rows, chunkSize int) *Cursor {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Cursor{rows: rows, chunkSize: chunkSize}
}

// Next returns up to chunkSize places. An empty chunk means the result is
// exhausted; every later call returns an empty chunk too.
func (c *Cursor) Next(ctx context.Context) ([]place.Raw, error) {
	if c.done {
		return nil, nil
	}

	chunk := make([]place.Raw, 0, c.chunkSize)
	for len(chunk) < c.chunkSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !c.rows.Next() {
			if err := c.rows.Err(); err != nil {
				return nil, fmt.Errorf("read source rows: %w", err)
			}
			c.done = true
			break
		}
		raw, err := scanPlace(c.rows)
		if err != nil {
			return nil, err
		}
		chunk = append(chunk, raw)
	}
	return chunk, nil
}

// Close releases the result set.
func (c *Cursor) Close() error {
	c.done = true
	return c.rows.Close()
}

func scanPlace(rows *sql.Rows) (place.Raw, error) {
	var (
		gersID, name                              sql.NullString
		address, city, state, postalCode, country sql.NullString
		lat, lng                                  sql.NullFloat64
		primary                                   sql.NullString
		alternates                                any
	)
	if err := rows.Scan(
		&gersID, &name,
		&address, &city, &state, &postalCode, &country,
		&lat, &lng,
		&primary, &alternates,
	); err != nil {
		return place.Raw{}, fmt.Errorf("scan source row: %w", err)
	}

	return place.Raw{
		GersID: gersID.String,
		Name:   name.String,
		Address: place.Address{
			Line:       address.String,
			City:       city.String,
			State:      state.String,
			PostalCode: postalCode.String,
			Country:    country.String,
		},
		Point:               orb.Point{ordinate(lng), ordinate(lat)},
		PrimaryCategory:     primary.String,
		AlternateCategories: stringList(alternates),
	}, nil
}

func ordinate(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// stringList converts a scanned DuckDB LIST value. NULL lists and NULL
// elements are dropped.
func stringList(v any) []string {
	switch list := v.(type) {
	case nil:
		return nil
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
