package api

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mimahin/gmgbd/internal/models"
	"github.com/mimahin/gmgbd/internal/storage"
)

const assetPrefix = "plots"

// AssetHandler serves published plot files from the asset directory.
type AssetHandler struct {
	store storage.Provider
}

// NewAssetHandler creates a handler over store.
func NewAssetHandler(store storage.Provider) *AssetHandler {
	return &AssetHandler{store: store}
}

// assetPath extracts the requested file below /plots/. Anything that climbs
// out of the prefix is rejected.
//
// chi matches on RawPath when the request kept one (e.g. a literal "(" next
// to escaped spaces), and on the decoded Path otherwise. The wildcard is
// decoded exactly once in both cases, so a name holding "%" stays intact.
func assetPath(r *http.Request) (string, bool) {
	decoded := chi.URLParam(r, "*")
	if r.URL.RawPath != "" {
		var err error
		if decoded, err = url.PathUnescape(decoded); err != nil {
			return "", false
		}
	}
	if decoded == "" {
		return "", false
	}
	for _, seg := range strings.Split(decoded, "/") {
		if seg == ".." {
			return "", false
		}
	}
	rel := path.Join(assetPrefix, decoded)
	if !strings.HasPrefix(rel, assetPrefix+"/") {
		return "", false
	}
	return rel, true
}

// ServeAsset handles GET /plots/*.
func (h *AssetHandler) ServeAsset(w http.ResponseWriter, r *http.Request) {
	rel, ok := assetPath(r)
	if !ok {
		http.Error(w, "invalid asset path", http.StatusBadRequest)
		return
	}
	if _, known := models.KindForPath(rel); !known {
		http.NotFound(w, r)
		return
	}
	abs, err := h.store.Resolve(rel)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("asset lookup failed", slog.String("path", rel), slog.String("error", err.Error()))
		}
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}
