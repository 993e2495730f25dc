// Package testutil provides shared test helpers for setting up asset
// directories and services.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mimahin/gmgbd/internal/assets"
	"github.com/mimahin/gmgbd/internal/catalog"
	"github.com/mimahin/gmgbd/internal/session"
	"github.com/mimahin/gmgbd/internal/siteservice"
	"github.com/mimahin/gmgbd/internal/storage"
)

// AssetDir creates a temporary asset directory holding a placeholder file
// for each catalog src.
func AssetDir(t *testing.T, srcs ...string) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	for _, src := range srcs {
		abs := filepath.Join(dir, filepath.FromSlash(assets.StorePath(src)))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte("asset:"+src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// PublishedAssets creates an asset directory with every asset the default
// catalog references.
func PublishedAssets(t *testing.T) (string, storage.Provider) {
	t.Helper()
	var srcs []string
	for _, v := range catalog.Default().Visualizations() {
		srcs = append(srcs, v.Asset.Src())
	}
	return AssetDir(t, srcs...)
}

// Service builds a site service over the default catalog. store may be nil.
func Service(t *testing.T, basePath string, store storage.Provider) *siteservice.Service {
	t.Helper()
	views, err := session.NewStore(64)
	if err != nil {
		t.Fatal(err)
	}
	return siteservice.NewService(catalog.Default(), views, assets.NewResolver(basePath), store)
}
