package catalog

import (
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/mimahin/gmgbd/internal/apperr"
	"github.com/mimahin/gmgbd/internal/models"
)

type document struct {
	Visualizations []visualizationEntry `yaml:"visualizations"`
	Features       []featureEntry       `yaml:"data_features"`
	Benchmarks     []models.Benchmark   `yaml:"benchmarks"`
	Toolkit        []models.Tool        `yaml:"toolkit"`
	Results        []models.LiftResult  `yaml:"results"`
	Citation       models.Citation      `yaml:"citation"`
	Links          models.SiteLinks     `yaml:"links"`
}

type visualizationEntry struct {
	ID          int    `yaml:"id"`
	Category    string `yaml:"category"`
	Title       string `yaml:"title"`
	Src         string `yaml:"src"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

// Validate checks a single gallery entry.
func (e visualizationEntry) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.ID, validation.Required, validation.Min(1)),
		validation.Field(&e.Category, validation.Required, validation.In(anySlice(models.Categories)...)),
		validation.Field(&e.Title, validation.Required),
		validation.Field(&e.Src, validation.Required, validation.By(startsWithSlash)),
		validation.Field(&e.Type, validation.Required, validation.In(string(models.AssetHTML), string(models.AssetImage))),
	)
}

type featureEntry models.DataFeature

// Validate checks a single data dictionary row.
func (e featureEntry) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Column, validation.Required),
		validation.Field(&e.Type, validation.Required),
		validation.Field(&e.Badge, validation.Required, validation.In(anySlice(models.Badges)...)),
	)
}

// Validate checks entry-level rules and the cross-entry uniqueness rules.
func (d *document) Validate() error {
	if err := validation.ValidateStruct(d,
		validation.Field(&d.Visualizations, validation.Required),
		validation.Field(&d.Features, validation.Required),
	); err != nil {
		return err
	}

	ids := make(map[int]struct{}, len(d.Visualizations))
	for _, v := range d.Visualizations {
		if _, dup := ids[v.ID]; dup {
			return fmt.Errorf("duplicate visualization id %d", v.ID)
		}
		ids[v.ID] = struct{}{}
	}

	columns := make(map[string]struct{}, len(d.Features))
	for _, f := range d.Features {
		if _, dup := columns[f.Column]; dup {
			return fmt.Errorf("duplicate data dictionary column %q", f.Column)
		}
		columns[f.Column] = struct{}{}
	}
	return nil
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", apperr.ErrInvalidCatalog, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidCatalog, err)
	}

	c := newCatalog(data)
	for i, e := range doc.Visualizations {
		asset, err := models.AssetOf(models.AssetKind(e.Type), e.Src)
		if err != nil {
			return nil, fmt.Errorf("%w: visualization %d: %v", apperr.ErrInvalidCatalog, e.ID, err)
		}
		c.visualizations = append(c.visualizations, models.Visualization{
			ID:          e.ID,
			Category:    e.Category,
			Title:       e.Title,
			Asset:       asset,
			Description: e.Description,
		})
		c.byID[e.ID] = i
	}
	for _, f := range doc.Features {
		c.features = append(c.features, models.DataFeature(f))
	}
	c.benchmarks = doc.Benchmarks
	c.toolkit = doc.Toolkit
	c.results = doc.Results
	c.citation = doc.Citation
	c.links = doc.Links
	return c, nil
}

// Load reads a catalog file from disk. An empty path returns the embedded
// catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

func startsWithSlash(value any) error {
	s, _ := value.(string)
	if !strings.HasPrefix(s, "/") {
		return fmt.Errorf("must be an absolute site path")
	}
	return nil
}

func anySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
