package overture

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupnom/overture-import/domain/place"
)

// sevenPlaces has the same column layout as a built query.
const sevenPlaces = `
SELECT gers_id, name, address, city, state, postal_code, country,
       lat::DOUBLE AS lat, lng::DOUBLE AS lng, primary_category, alt_categories
FROM (VALUES
    ('g1', 'Cafe One',   '1 A St', 'Oakland', 'CA', '94607', 'US', 37.80, -122.27, 'cafe',       ['coffee_shop', 'bakery']),
    ('g2', 'Two Tacos',  '2 B St', 'Austin',  'TX', '78701', 'US', 30.27,  -97.74, 'Mexican Restaurant', []::VARCHAR[]),
    ('g3', 'Bar Three',  NULL,     NULL,      'NY', NULL,    'US', 40.75,  -73.98, 'bar',        NULL),
    ('g4', 'Four Pizza', '4 D St', 'Chicago', 'IL', '60601', 'US', NULL,    -87.62, 'pizza_restaurant', ['italian_restaurant', NULL]),
    ('g5', 'Five Diner', '5 E St', 'Denver',  'CO', '80202', 'US', 39.74, -104.99, 'diner',      ['american_restaurant']),
    ('g6', 'Six Sushi',  '6 F St', 'Seattle', 'WA', '98101', 'US', 47.61, -122.33, 'sushi_restaurant', ['japanese_restaurant']),
    ('g7', 'Seven Pub',  '7 G St', 'Boston',  'MA', '02108', 'US', 42.36,  -71.06, 'pub',        ['bar'])
) AS t(gers_id, name, address, city, state, postal_code, country, lat, lng, primary_category, alt_categories)
ORDER BY gers_id`

func newTestSource(t *testing.T) *Source {
	t.Helper()
	src, err := NewSource(context.Background(), SourceConfig{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })
	return src
}

func TestCursor_Chunks(t *testing.T) {
	ctx := context.Background()
	src := newTestSource(t)

	cursor, err := src.Query(ctx, sevenPlaces, 3)
	require.NoError(t, err)
	defer func() { _ = cursor.Close() }()

	var sizes []int
	for {
		chunk, err := cursor.Next(ctx)
		require.NoError(t, err)
		if len(chunk) == 0 {
			break
		}
		sizes = append(sizes, len(chunk))
	}
	assert.Equal(t, []int{3, 3, 1}, sizes)

	// exhausted cursors stay exhausted
	chunk, err := cursor.Next(ctx)
	require.NoError(t, err)
	assert.Empty(t, chunk)
}

func TestCursor_ScansColumns(t *testing.T) {
	ctx := context.Background()
	src := newTestSource(t)

	cursor, err := src.Query(ctx, sevenPlaces, 10)
	require.NoError(t, err)
	defer func() { _ = cursor.Close() }()

	chunk, err := cursor.Next(ctx)
	require.NoError(t, err)
	require.Len(t, chunk, 7)

	first := chunk[0]
	assert.Equal(t, "g1", first.GersID)
	assert.Equal(t, "Cafe One", first.Name)
	assert.Equal(t, "1 A St", first.Address.Line)
	assert.Equal(t, "Oakland", first.Address.City)
	assert.Equal(t, "CA", first.Address.State)
	assert.Equal(t, "94607", first.Address.PostalCode)
	assert.Equal(t, "US", first.Address.Country)
	assert.InDelta(t, 37.80, first.Lat(), 1e-9)
	assert.InDelta(t, -122.27, first.Lng(), 1e-9)
	assert.Equal(t, "cafe", first.PrimaryCategory)
	assert.Equal(t, []string{"coffee_shop", "bakery"}, first.AlternateCategories)

	assert.Empty(t, chunk[1].AlternateCategories)

	third := chunk[2]
	assert.Empty(t, third.Address.Line)
	assert.Nil(t, third.AlternateCategories)

	fourth := chunk[3]
	assert.True(t, math.IsNaN(fourth.Lat()))
	assert.Equal(t, []string{"italian_restaurant"}, fourth.AlternateCategories)
}

func TestCursor_QueryError(t *testing.T) {
	src := newTestSource(t)
	_, err := src.Query(context.Background(), "SELECT * FROM missing_table", 10)
	assert.Error(t, err)
}

func TestCursor_CanceledContext(t *testing.T) {
	src := newTestSource(t)
	ctx, cancel := context.WithCancel(context.Background())

	cursor, err := src.Query(ctx, sevenPlaces, 3)
	require.NoError(t, err)
	defer func() { _ = cursor.Close() }()

	cancel()
	_, err = cursor.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSetupStatements(t *testing.T) {
	stmts := setupStatements(SourceConfig{
		Extensions: []string{"httpfs", "spatial"},
		S3Region:   "us-west-2",
		Threads:    4,
	})
	assert.Equal(t, []string{
		"INSTALL httpfs",
		"LOAD httpfs",
		"INSTALL spatial",
		"LOAD spatial",
		"SET s3_region='us-west-2'",
		"SET threads=4",
	}, stmts)

	assert.Empty(t, setupStatements(SourceConfig{}))
}

func TestSource_OpenRejectsInvalidSelection(t *testing.T) {
	src := newTestSource(t)

	_, err := src.Open(context.Background(), place.NewSelection("../etc", "US", nil), 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, place.ErrInvalidRelease)
}
