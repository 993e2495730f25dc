// Package models defines the catalog record types rendered on the GMGBD page.
package models

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
)

// AssetKind discriminates how a visualization asset is presented.
type AssetKind string

// Asset kinds.
const (
	AssetHTML  AssetKind = "html"
	AssetImage AssetKind = "image"
)

var (
	documentExts = map[string]struct{}{".html": {}, ".htm": {}}
	imageExts    = map[string]struct{}{
		".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {}, ".svg": {},
	}
)

// Asset is a published file referenced by a visualization. The only
// implementations are HTMLDocument and Image.
type Asset interface {
	Kind() AssetKind
	Src() string
	isAsset()
}

// HTMLDocument is an embeddable document such as an interactive map.
type HTMLDocument struct {
	Path string
}

// Kind implements Asset.
func (HTMLDocument) Kind() AssetKind { return AssetHTML }

// Src implements Asset.
func (d HTMLDocument) Src() string { return d.Path }

func (HTMLDocument) isAsset() {}

// Image is a raster or vector plot.
type Image struct {
	Path string
}

// Kind implements Asset.
func (Image) Kind() AssetKind { return AssetImage }

// Src implements Asset.
func (i Image) Src() string { return i.Path }

func (Image) isAsset() {}

// KindForPath derives the asset kind from the file extension of src.
func KindForPath(src string) (AssetKind, bool) {
	ext := strings.ToLower(path.Ext(src))
	if _, ok := documentExts[ext]; ok {
		return AssetHTML, true
	}
	if _, ok := imageExts[ext]; ok {
		return AssetImage, true
	}
	return "", false
}

// AssetOf builds the asset variant for kind and checks that the extension of
// src agrees with it.
func AssetOf(kind AssetKind, src string) (Asset, error) {
	if src == "" {
		return nil, fmt.Errorf("asset src is empty")
	}
	derived, ok := KindForPath(src)
	if !ok {
		return nil, fmt.Errorf("asset %q: unsupported extension", src)
	}
	if derived != kind {
		return nil, fmt.Errorf("asset %q: type %q does not match extension (want %q)", src, kind, derived)
	}
	switch kind {
	case AssetHTML:
		return HTMLDocument{Path: src}, nil
	case AssetImage:
		return Image{Path: src}, nil
	default:
		return nil, fmt.Errorf("asset %q: unknown type %q", src, kind)
	}
}

// Visualization is one entry of the gallery.
type Visualization struct {
	ID          int
	Category    string
	Title       string
	Asset       Asset
	Description string
}

// MarshalJSON flattens the asset variant into src/type fields.
func (v Visualization) MarshalJSON() ([]byte, error) {
	out := struct {
		ID          int       `json:"id"`
		Category    string    `json:"category"`
		Title       string    `json:"title"`
		Src         string    `json:"src"`
		Type        AssetKind `json:"type"`
		Description string    `json:"description"`
	}{
		ID:          v.ID,
		Category:    v.Category,
		Title:       v.Title,
		Description: v.Description,
	}
	if v.Asset != nil {
		out.Src = v.Asset.Src()
		out.Type = v.Asset.Kind()
	}
	return json.Marshal(out)
}

// Gallery categories in display order.
const (
	CategoryGlobalDistribution = "Global Distribution"
	CategoryStatistical        = "Statistical Distributions"
	CategoryCorrelation        = "Correlation & Relationships"
	CategoryTemporal           = "Temporal Patterns"
	CategorySpecies            = "Species Analysis"
	CategoryFrequency          = "Frequency Analysis"
	CategoryDataQuality        = "Data Quality"
)

// Categories lists every gallery category in display order.
var Categories = []string{
	CategoryGlobalDistribution,
	CategoryStatistical,
	CategoryCorrelation,
	CategoryTemporal,
	CategorySpecies,
	CategoryFrequency,
	CategoryDataQuality,
}

// Badges is the closed set of data dictionary scope tags.
var Badges = []string{
	"ID", "Taxonomy", "Geospatial", "Temporal", "Vision",
	"Location", "Climate", "Vegetation", "Hydrology",
}

// DataFeature describes one column of the published dataset.
type DataFeature struct {
	Column      string `json:"column" yaml:"column"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Badge       string `json:"badge" yaml:"badge"`
}

// Benchmark is a row of the dataset comparison table.
type Benchmark struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Size        string `json:"size" yaml:"size"`
	Includes    string `json:"includes" yaml:"includes"`
	Highlight   bool   `json:"highlight" yaml:"highlight"`
}

// Tool is an API or model used to build the dataset.
type Tool struct {
	Name      string `json:"name" yaml:"name"`
	Summary   string `json:"summary" yaml:"summary"`
	DocsURL   string `json:"docs_url" yaml:"docs_url"`
	DocsLabel string `json:"docs_label" yaml:"docs_label"`
}

// LiftResult is a published accuracy comparison between image-only and
// context-enriched identification.
type LiftResult struct {
	Title         string   `json:"title" yaml:"title"`
	Model         string   `json:"model,omitempty" yaml:"model"`
	BaselineLabel string   `json:"baseline_label" yaml:"baseline_label"`
	Baseline      float64  `json:"baseline" yaml:"baseline"`
	EnhancedLabel string   `json:"enhanced_label" yaml:"enhanced_label"`
	Enhanced      float64  `json:"enhanced" yaml:"enhanced"`
	Lift          *float64 `json:"lift,omitempty" yaml:"lift"`
	Finding       string   `json:"finding,omitempty" yaml:"finding"`
}

// Citation is the dataset's BibTeX citation.
type Citation struct {
	Key    string `json:"key" yaml:"key"`
	Author string `json:"author" yaml:"author"`
	Title  string `json:"title" yaml:"title"`
	Year   int    `json:"year" yaml:"year"`
}

// BibTeX renders the citation as a @dataset entry.
func (c Citation) BibTeX() string {
	return fmt.Sprintf("@dataset{%s,\n  author = {%s},\n  title = {%s},\n  year = {%d}\n}\n",
		c.Key, c.Author, c.Title, c.Year)
}

// Link is an outbound link shown in the hero and footer.
type Link struct {
	Label string `json:"label" yaml:"label"`
	URL   string `json:"url" yaml:"url"`
}

// SiteLinks groups the outbound links of the page.
type SiteLinks struct {
	Repository Link `json:"repository" yaml:"repository"`
	Dataset    Link `json:"dataset" yaml:"dataset"`
	Owner      Link `json:"owner" yaml:"owner"`
}
