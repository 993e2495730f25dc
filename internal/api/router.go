package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mimahin/gmgbd/internal/page"
	"github.com/mimahin/gmgbd/internal/siteservice"
	"github.com/mimahin/gmgbd/internal/storage"
)

// Site describes where and under which title the page is served.
type Site struct {
	Title string
	// BasePath is the normalized prefix the router is mounted under, "" for
	// the root. It is used to build links back into the router.
	BasePath string
}

// NewRouter creates a chi router with the page, the JSON API, the datastar
// view endpoints and the plot assets.
// events, if non-nil, is mounted at GET /api/events.
// store, if non-nil, serves GET /plots/*.
func NewRouter(svc *siteservice.Service, pages *page.Renderer, site Site, events http.Handler, store storage.Provider) chi.Router {
	h := NewHandler(svc)
	vh := NewViewHandler(svc, pages, site.Title, site.BasePath)

	r := chi.NewRouter()

	r.Get("/", vh.Page)

	// JSON API over the catalog.
	r.Group(func(r chi.Router) {
		r.Use(ETagMiddleware(svc.Catalog().Version()))
		r.Get("/api/dictionary", h.Dictionary)
		r.Get("/api/visualizations", h.Visualizations)
		r.Get("/api/visualizations/{id}", h.Visualization)
		r.Get("/api/benchmarks", h.Benchmarks)
		r.Get("/api/citation", h.Citation)
	})

	if events != nil {
		r.Get("/api/events", events.ServeHTTP)
	}

	// Page-view transitions (datastar).
	r.Route("/views/{view}", func(r chi.Router) {
		r.Post("/search", vh.Search)
		r.Post("/select/{id}", vh.Select)
		r.Post("/close/{trigger}", vh.Close)
		r.Post("/scroll", vh.Scroll)
		r.Post("/refresh", vh.Refresh)
	})

	if store != nil {
		r.Get("/"+assetPrefix+"/*", NewAssetHandler(store).ServeAsset)
	}

	return r
}
