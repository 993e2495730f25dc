package api

import (
	"github.com/mimahin/gmgbd/internal/models"
	"github.com/mimahin/gmgbd/internal/siteservice"
)

// DictionaryResponse is the filtered data dictionary (aliased from the domain layer).
type DictionaryResponse = siteservice.DictionaryResult

// VisualizationItem is a gallery entry (aliased from the domain layer).
type VisualizationItem = siteservice.VisualizationItem

// VisualizationListResponse wraps gallery listings.
type VisualizationListResponse struct {
	Visualizations []VisualizationItem `json:"visualizations" validate:"required"`
	Total          int                 `json:"total" example:"15" validate:"required"`
}

// BenchmarkListResponse wraps the dataset comparison table.
type BenchmarkListResponse struct {
	Benchmarks []models.Benchmark `json:"benchmarks" validate:"required"`
}
