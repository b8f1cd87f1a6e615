package overture

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupnom/overture-import/domain/place"
	"github.com/groupnom/overture-import/domain/region"
	"github.com/groupnom/overture-import/domain/taxonomy"
)

func TestQueryBuilder_Path(t *testing.T) {
	b := NewQueryBuilder("", taxonomy.DefaultVocabulary())
	assert.Equal(t,
		"s3://overturemaps-us-west-2/release/2024-11-13.0/theme=places/type=place/*",
		b.Path("2024-11-13.0"),
	)

	local := NewQueryBuilder("/data/overture/", taxonomy.DefaultVocabulary())
	assert.Equal(t, "/data/overture/r1/theme=places/type=place/*", local.Path("r1"))
}

func TestQueryBuilder_Nationwide(t *testing.T) {
	b := NewQueryBuilder("", taxonomy.DefaultVocabulary())
	q, err := b.Build(place.NewSelection("2024-11-13.0", "US", nil))
	require.NoError(t, err)

	assert.Contains(t, q, "read_parquet('s3://overturemaps-us-west-2/release/2024-11-13.0/theme=places/type=place/*', filename=true, hive_partitioning=true)")
	assert.Contains(t, q, "addresses[1].country = 'US'")
	assert.Contains(t, q, "LOWER(categories.primary) LIKE '%restaurant%'")
	assert.Contains(t, q, "LOWER(categories.primary) LIKE '%wine_bar%'")
	assert.Equal(t, 37, strings.Count(q, "LIKE"))
	assert.NotContains(t, q, "addresses[1].region IN")
	assert.Contains(t, q, "names.primary IS NOT NULL")
	assert.Contains(t, q, "ST_Y(geometry) IS NOT NULL")
	assert.Contains(t, q, "ST_X(geometry) IS NOT NULL")
}

func TestQueryBuilder_Regions(t *testing.T) {
	b := NewQueryBuilder("", taxonomy.DefaultVocabulary())
	q, err := b.Build(place.NewSelection("r1", "US", []string{"CA", "NY"}))
	require.NoError(t, err)

	assert.Contains(t, q, "AND addresses[1].region IN ('CA', 'NY')")
}

func TestQueryBuilder_CustomVocabulary(t *testing.T) {
	b := NewQueryBuilder("", taxonomy.NewVocabulary([]string{"taco_stand"}))
	q, err := b.Build(place.NewSelection("r1", "US", nil))
	require.NoError(t, err)

	assert.Contains(t, q, "(LOWER(categories.primary) LIKE '%taco_stand%')")
	assert.Equal(t, 1, strings.Count(q, "LIKE"))
}

func TestQueryBuilder_Invalid(t *testing.T) {
	b := NewQueryBuilder("", taxonomy.DefaultVocabulary())

	_, err := b.Build(place.NewSelection("", "US", nil))
	assert.ErrorIs(t, err, place.ErrInvalidRelease)

	_, err = b.Build(place.NewSelection("r1", "US", []string{"XX"}))
	var invalid *region.InvalidCodesError
	assert.ErrorAs(t, err, &invalid)

	_, err = NewQueryBuilder("", taxonomy.Vocabulary{}).Build(place.NewSelection("r1", "US", nil))
	assert.ErrorIs(t, err, taxonomy.ErrEmptyVocabulary)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "'it''s'", quote("it's"))
	assert.Equal(t, "'a', 'b'", quoteList([]string{"a", "b"}))
}
