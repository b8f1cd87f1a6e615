package region

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	got, err := Parse("ca, ny,CA,,tx")
	require.NoError(t, err)
	assert.Equal(t, []string{"CA", "NY", "TX"}, got)
}

func TestParse_ListsEveryInvalidCode(t *testing.T) {
	_, err := Parse("CA,XX,ny,ZZ")
	require.Error(t, err)

	var invalid *InvalidCodesError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, []string{"XX", "ZZ"}, invalid.Codes)
	assert.Equal(t, "invalid region codes: XX, ZZ", err.Error())
}

func TestAll(t *testing.T) {
	all := All()
	assert.Len(t, all, 52)
	assert.Contains(t, all, "DC")
	assert.Contains(t, all, "PR")
	assert.True(t, Valid("WY"))
	assert.False(t, Valid("wy"))
}

func TestValidateFor(t *testing.T) {
	tests := []struct {
		name    string
		country string
		input   []string
		want    []string
		invalid []string
	}{
		{"us states", "US", []string{"ca", "NY"}, []string{"CA", "NY"}, nil},
		{"us rejects provinces", "US", []string{"CA", "ON"}, nil, []string{"ON"}},
		{"canadian provinces", "CA", []string{"on", " qc "}, []string{"ON", "QC"}, nil},
		{"numeric subdivisions", "FR", []string{"75", "2A"}, []string{"75", "2A"}, nil},
		{"names are not codes", "CA", []string{"ON", "Ontario", "B-C"}, nil, []string{"ONTARIO", "B-C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateFor(tt.country, tt.input)
			if tt.invalid != nil {
				var invalid *InvalidCodesError
				require.True(t, errors.As(err, &invalid))
				assert.Equal(t, tt.invalid, invalid.Codes)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFor(t *testing.T) {
	got, err := ParseFor("CA", "on,bc")
	require.NoError(t, err)
	assert.Equal(t, []string{"ON", "BC"}, got)
}
