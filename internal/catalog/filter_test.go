package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mimahin/gmgbd/internal/models"
)

func columns(features []models.DataFeature) []string {
	out := make([]string, len(features))
	for i, f := range features {
		out[i] = f.Column
	}
	return out
}

func TestFilterDictionary_EmptyQueryReturnsAll(t *testing.T) {
	all := Default().DataFeatures()
	got := FilterDictionary(all, "")
	assert.Equal(t, all, got)
}

func TestFilterDictionary_NoMatchIsEmptyNotNil(t *testing.T) {
	got := Default().FilterDictionary("zzz-no-such-substring")
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterDictionary_NDVI(t *testing.T) {
	got := columns(Default().FilterDictionary("ndvi"))
	assert.Equal(t, []string{"NDVI_value", "NDVI_Category"}, got)
	assert.NotContains(t, got, "elevation_m")
}

func TestFilterDictionary_CaseInsensitive(t *testing.T) {
	c := Default()
	assert.Equal(t, columns(c.FilterDictionary("ndvi")), columns(c.FilterDictionary("NdVi")))
	assert.Equal(t, []string{"avg_temp_C"}, columns(c.FilterDictionary("TEMP_c")))
}

// Every query must yield an order-preserving subsequence in which each kept
// column matches and each dropped column does not.
func TestFilterDictionary_SubsequenceProperty(t *testing.T) {
	all := Default().DataFeatures()
	queries := []string{"", "a", "_", "name", "M", "ndvi_", "dist", "x", "城", " ", "Category"}

	for _, q := range queries {
		got := FilterDictionary(all, q)

		j := 0
		for _, f := range all {
			matches := strings.Contains(strings.ToLower(f.Column), strings.ToLower(q))
			if j < len(got) && got[j] == f {
				assert.True(t, matches, "query %q kept non-matching %q", q, f.Column)
				j++
				continue
			}
			assert.False(t, matches, "query %q dropped matching %q", q, f.Column)
		}
		assert.Equal(t, len(got), j, "query %q result is not an ordered subsequence", q)
	}
}

func TestFilterDictionary_DoesNotAliasInput(t *testing.T) {
	all := Default().DataFeatures()
	got := FilterDictionary(all, "")
	got[0].Column = "changed"
	assert.Equal(t, "filename", all[0].Column)
}
