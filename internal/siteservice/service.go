// Package siteservice coordinates the catalog, the page-view store and the
// asset resolver for the HTTP and MCP layers.
package siteservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"github.com/mimahin/gmgbd/internal/apperr"
	"github.com/mimahin/gmgbd/internal/assets"
	"github.com/mimahin/gmgbd/internal/catalog"
	"github.com/mimahin/gmgbd/internal/models"
	"github.com/mimahin/gmgbd/internal/session"
	"github.com/mimahin/gmgbd/internal/storage"
	"github.com/mimahin/gmgbd/internal/viewer"
)

// DictionaryResult is a filtered view of the data dictionary.
type DictionaryResult struct {
	Features []models.DataFeature `json:"features"`
	Total    int                  `json:"total"`
	Query    string               `json:"query"`
}

// VisualizationItem is a gallery entry with its resolved asset URL.
type VisualizationItem struct {
	ID          int              `json:"id"`
	Category    string           `json:"category"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Src         string           `json:"src"`
	Type        models.AssetKind `json:"type"`
	URL         string           `json:"url"`
}

// Service is the single entry point for page content and view transitions.
type Service struct {
	catalog *catalog.Catalog
	views   *session.Store
	urls    assets.Resolver
	store   storage.Provider
}

// NewService creates a new site service. store may be nil when no asset
// directory is configured.
func NewService(cat *catalog.Catalog, views *session.Store, urls assets.Resolver, store storage.Provider) *Service {
	return &Service{catalog: cat, views: views, urls: urls, store: store}
}

// Catalog returns the underlying catalog.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Resolver returns the asset URL resolver.
func (s *Service) Resolver() assets.Resolver { return s.urls }

// Dictionary filters the data dictionary by column name.
func (s *Service) Dictionary(_ context.Context, query string) DictionaryResult {
	features := s.catalog.FilterDictionary(query)
	return DictionaryResult{Features: features, Total: len(features), Query: query}
}

// Visualizations lists gallery entries, optionally restricted to one
// category.
func (s *Service) Visualizations(_ context.Context, category string) ([]VisualizationItem, error) {
	var vis []models.Visualization
	if category == "" {
		vis = s.catalog.Visualizations()
	} else {
		if !slices.Contains(s.catalog.Categories(), category) {
			return nil, fmt.Errorf("category %q: %w", category, apperr.ErrNotFound)
		}
		vis = s.catalog.ByCategory(category)
	}
	out := make([]VisualizationItem, 0, len(vis))
	for _, v := range vis {
		out = append(out, s.item(v))
	}
	return out, nil
}

// Visualization returns one gallery entry.
func (s *Service) Visualization(_ context.Context, id int) (VisualizationItem, error) {
	v, ok := s.catalog.Visualization(id)
	if !ok {
		return VisualizationItem{}, fmt.Errorf("visualization %d: %w", id, apperr.ErrNotFound)
	}
	return s.item(v), nil
}

func (s *Service) item(v models.Visualization) VisualizationItem {
	return VisualizationItem{
		ID:          v.ID,
		Category:    v.Category,
		Title:       v.Title,
		Description: v.Description,
		Src:         v.Asset.Src(),
		Type:        v.Asset.Kind(),
		URL:         s.urls.URL(v.Asset.Src()),
	}
}

// NewView starts a page view.
func (s *Service) NewView(_ context.Context) session.View {
	return s.views.New()
}

// View returns the current state of a page view.
func (s *Service) View(_ context.Context, viewID string) (session.View, error) {
	return s.views.Get(viewID)
}

// Search records the dictionary query of a view and returns the matching
// columns.
func (s *Service) Search(_ context.Context, viewID, term string) (session.View, DictionaryResult, error) {
	v, err := s.views.Update(viewID, func(v *session.View) { v.Search(term) })
	if err != nil {
		return session.View{}, DictionaryResult{}, err
	}
	features := s.catalog.FilterDictionary(v.SearchTerm)
	return v, DictionaryResult{Features: features, Total: len(features), Query: v.SearchTerm}, nil
}

// Select opens the modal of a view on a catalog entry. Only catalog entries
// can be selected.
func (s *Service) Select(_ context.Context, viewID string, visID int) (session.View, error) {
	vis, ok := s.catalog.Visualization(visID)
	if !ok {
		return session.View{}, fmt.Errorf("visualization %d: %w", visID, apperr.ErrNotFound)
	}
	return s.views.Update(viewID, func(v *session.View) { v.Select(vis) })
}

// Dismiss closes the modal of a view. closed is false when it was already
// closed.
func (s *Service) Dismiss(_ context.Context, viewID string, trigger viewer.CloseTrigger) (v session.View, closed bool, err error) {
	v, err = s.views.Update(viewID, func(v *session.View) { closed = v.Dismiss(trigger) })
	return v, closed, err
}

// Scroll records the viewport offset of a view.
func (s *Service) Scroll(_ context.Context, viewID string, offsetY float64) (session.View, error) {
	return s.views.Update(viewID, func(v *session.View) { v.Scroll(offsetY) })
}

// ErrNoAssetDir is returned by CheckAssets when no asset directory is
// configured.
var ErrNoAssetDir = errors.New("no asset directory configured")

// CheckAssets compares the catalog against the asset directory.
func (s *Service) CheckAssets(_ context.Context) (assets.Report, error) {
	if s.store == nil {
		return assets.Report{}, ErrNoAssetDir
	}
	return assets.Check(s.catalog.Visualizations(), s.store), nil
}

// AssetContent is the file behind a gallery entry.
type AssetContent struct {
	Item     VisualizationItem
	MIMEType string
	Data     []byte
}

// Asset reads the file of visualization id from the asset directory. A file
// that is missing on disk is reported as not found.
func (s *Service) Asset(ctx context.Context, id int) (AssetContent, error) {
	item, err := s.Visualization(ctx, id)
	if err != nil {
		return AssetContent{}, err
	}
	if s.store == nil {
		return AssetContent{}, ErrNoAssetDir
	}
	data, err := s.store.Read(assets.StorePath(item.Src))
	if errors.Is(err, fs.ErrNotExist) {
		return AssetContent{}, fmt.Errorf("asset %s: %w", item.Src, apperr.ErrNotFound)
	}
	if err != nil {
		return AssetContent{}, err
	}
	return AssetContent{Item: item, MIMEType: assets.MIMEType(item.Src), Data: data}, nil
}

// LiveViews returns the number of page views still held in memory.
func (s *Service) LiveViews() int {
	return s.views.Len()
}
