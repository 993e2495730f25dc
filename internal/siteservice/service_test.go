package siteservice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mimahin/gmgbd/internal/apperr"
	"github.com/mimahin/gmgbd/internal/assets"
	"github.com/mimahin/gmgbd/internal/catalog"
	"github.com/mimahin/gmgbd/internal/models"
	"github.com/mimahin/gmgbd/internal/session"
	"github.com/mimahin/gmgbd/internal/storage"
	"github.com/mimahin/gmgbd/internal/viewer"
)

func newService(t *testing.T, store storage.Provider) *Service {
	t.Helper()
	views, err := session.NewStore(16)
	require.NoError(t, err)
	return NewService(catalog.Default(), views, assets.NewResolver("/GMGBD"), store)
}

func TestDictionary(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	all := svc.Dictionary(ctx, "")
	assert.Equal(t, 15, all.Total)

	res := svc.Dictionary(ctx, "NDVI")
	assert.Equal(t, "NDVI", res.Query)
	require.Len(t, res.Features, 2)
	assert.Equal(t, "NDVI_value", res.Features[0].Column)

	none := svc.Dictionary(ctx, "zzz")
	assert.NotNil(t, none.Features)
	assert.Equal(t, 0, none.Total)
}

func TestVisualizations(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	all, err := svc.Visualizations(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 15)
	for _, it := range all {
		assert.Contains(t, it.URL, "/GMGBD/plots/")
	}

	global, err := svc.Visualizations(ctx, models.CategoryGlobalDistribution)
	require.NoError(t, err)
	require.NotEmpty(t, global)
	for _, it := range global {
		assert.Equal(t, models.CategoryGlobalDistribution, it.Category)
	}

	_, err = svc.Visualizations(ctx, "Astrology")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestVisualizationLookup(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	it, err := svc.Visualization(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.AssetHTML, it.Type)
	assert.Equal(t, "/GMGBD/plots/map_temperature.html", it.URL)

	_, err = svc.Visualization(ctx, 999)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestViewLifecycle(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	v := svc.NewView(ctx)

	v, res, err := svc.Search(ctx, v.ID, "lat")
	require.NoError(t, err)
	assert.Equal(t, "lat", v.SearchTerm)
	assert.Equal(t, "lat", res.Query)

	v, err = svc.Select(ctx, v.ID, 2)
	require.NoError(t, err)
	sel, ok := v.Modal.Selected()
	require.True(t, ok)
	assert.Equal(t, 2, sel.ID)

	v, closed, err := svc.Dismiss(ctx, v.ID, viewer.CloseAction)
	require.NoError(t, err)
	assert.True(t, closed)
	assert.False(t, v.Modal.IsOpen())

	_, closed, err = svc.Dismiss(ctx, v.ID, viewer.Backdrop)
	require.NoError(t, err)
	assert.False(t, closed)

	v, err = svc.Scroll(ctx, v.ID, 11)
	require.NoError(t, err)
	assert.True(t, v.Scrolled)

	got, err := svc.View(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "lat", got.SearchTerm)
	assert.True(t, got.Scrolled)
}

func TestSelectUnknownVisualizationKeepsState(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	v := svc.NewView(ctx)

	_, err := svc.Select(ctx, v.ID, 999)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	got, err := svc.View(ctx, v.ID)
	require.NoError(t, err)
	assert.False(t, got.Modal.IsOpen())
}

func TestUnknownView(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	_, _, err := svc.Search(ctx, "nope", "x")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	_, err = svc.Scroll(ctx, "nope", 100)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCheckAssets(t *testing.T) {
	ctx := context.Background()

	_, err := newService(t, nil).CheckAssets(ctx)
	assert.True(t, errors.Is(err, ErrNoAssetDir))

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "plots"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plots", "map_temperature.html"), []byte("<html>"), 0o644))
	store, err := storage.NewFS(dir)
	require.NoError(t, err)

	rep, err := newService(t, store).CheckAssets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, rep.Checked)
	assert.Len(t, rep.Missing, 14)
	for _, m := range rep.Missing {
		assert.NotEqual(t, 1, m.ID)
	}
}

func TestAsset(t *testing.T) {
	ctx := context.Background()

	_, err := newService(t, nil).Asset(ctx, 1)
	assert.ErrorIs(t, err, ErrNoAssetDir)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "plots"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plots", "map_temperature.html"), []byte("<html>"), 0o644))
	store, err := storage.NewFS(dir)
	require.NoError(t, err)
	svc := newService(t, store)

	got, err := svc.Asset(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "<html>", string(got.Data))
	assert.Equal(t, "text/html; charset=utf-8", got.MIMEType)
	assert.Equal(t, "/GMGBD/plots/map_temperature.html", got.Item.URL)

	// Catalogued but not published.
	_, err = svc.Asset(ctx, 13)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Asset(ctx, 404)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLiveViews(t *testing.T) {
	svc := newService(t, nil)
	assert.Equal(t, 0, svc.LiveViews())
	svc.NewView(context.Background())
	svc.NewView(context.Background())
	assert.Equal(t, 2, svc.LiveViews())
}
