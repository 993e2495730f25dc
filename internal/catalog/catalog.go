// Package catalog holds the immutable content of the GMGBD page: the
// visualization gallery, the data dictionary and the supporting tables.
package catalog

import (
	_ "embed"
	"fmt"
	"slices"

	"github.com/mimahin/gmgbd/internal/checksum"
	"github.com/mimahin/gmgbd/internal/models"
)

//go:embed catalog.yaml
var embedded []byte

var defaultCatalog = mustParse(embedded)

// Catalog is a read-only view over the page content. Accessors return copies,
// so callers can never mutate the store.
type Catalog struct {
	version        string
	visualizations []models.Visualization
	byID           map[int]int
	features       []models.DataFeature
	benchmarks     []models.Benchmark
	toolkit        []models.Tool
	results        []models.LiftResult
	citation       models.Citation
	links          models.SiteLinks
}

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	return defaultCatalog
}

func mustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Version is the SHA-256 of the source document.
func (c *Catalog) Version() string { return c.version }

// Visualizations returns every gallery entry in catalog order.
func (c *Catalog) Visualizations() []models.Visualization {
	return slices.Clone(c.visualizations)
}

// Visualization looks up a gallery entry by ID.
func (c *Catalog) Visualization(id int) (models.Visualization, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Visualization{}, false
	}
	return c.visualizations[i], true
}

// ByCategory returns the gallery entries of one category, in catalog order.
func (c *Catalog) ByCategory(category string) []models.Visualization {
	out := []models.Visualization{}
	for _, v := range c.visualizations {
		if v.Category == category {
			out = append(out, v)
		}
	}
	return out
}

// Categories returns the gallery categories in display order.
func (c *Catalog) Categories() []string {
	return slices.Clone(models.Categories)
}

// DataFeatures returns the data dictionary in catalog order.
func (c *Catalog) DataFeatures() []models.DataFeature {
	return slices.Clone(c.features)
}

// FilterDictionary filters the data dictionary by column name.
func (c *Catalog) FilterDictionary(query string) []models.DataFeature {
	return FilterDictionary(c.features, query)
}

// Benchmarks returns the comparison table rows.
func (c *Catalog) Benchmarks() []models.Benchmark {
	return slices.Clone(c.benchmarks)
}

// Toolkit returns the data-sourcing tools.
func (c *Catalog) Toolkit() []models.Tool {
	return slices.Clone(c.toolkit)
}

// Results returns the published contextual-lift results.
func (c *Catalog) Results() []models.LiftResult {
	out := slices.Clone(c.results)
	for i := range out {
		if out[i].Lift != nil {
			lift := *out[i].Lift
			out[i].Lift = &lift
		}
	}
	return out
}

// Citation returns the dataset citation.
func (c *Catalog) Citation() models.Citation { return c.citation }

// Links returns the outbound links.
func (c *Catalog) Links() models.SiteLinks { return c.links }

func newCatalog(data []byte) *Catalog {
	return &Catalog{
		version: checksum.Sum(data),
		byID:    make(map[int]int),
	}
}
