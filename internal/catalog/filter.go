package catalog

import (
	"strings"

	"github.com/mimahin/gmgbd/internal/models"
)

// FilterDictionary returns the features whose column name contains query,
// ignoring case. Order is preserved and an empty query returns every feature.
// The result is never nil.
func FilterDictionary(features []models.DataFeature, query string) []models.DataFeature {
	needle := strings.ToLower(query)
	out := make([]models.DataFeature, 0, len(features))
	for _, f := range features {
		if strings.Contains(strings.ToLower(f.Column), needle) {
			out = append(out, f)
		}
	}
	return out
}
