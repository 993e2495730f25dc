package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mimahin/gmgbd/internal/siteservice"
)

// Handler holds the JSON API route handlers.
type Handler struct {
	svc *siteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *siteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// Dictionary handles GET /api/dictionary.
//
//	@Summary		Filter the data dictionary by column name
//	@Tags			dictionary
//	@Produce		json
//	@Param			q	query		string	false	"Case-insensitive column substring"
//	@Success		200	{object}	DictionaryResponse
//	@Router			/dictionary [get]
func (h *Handler) Dictionary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Dictionary(r.Context(), r.URL.Query().Get("q")))
}

// Visualizations handles GET /api/visualizations.
//
//	@Summary		List gallery entries
//	@Tags			visualizations
//	@Produce		json
//	@Param			category	query		string	false	"Gallery category"
//	@Success		200			{object}	VisualizationListResponse
//	@Failure		404			{object}	errResponse
//	@Router			/visualizations [get]
func (h *Handler) Visualizations(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Visualizations(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeServiceError(w, "list visualizations", err)
		return
	}
	writeJSON(w, http.StatusOK, VisualizationListResponse{
		Visualizations: items,
		Total:          len(items),
	})
}

// Visualization handles GET /api/visualizations/{id}.
//
//	@Summary		Get a single gallery entry
//	@Tags			visualizations
//	@Produce		json
//	@Param			id	path		int	true	"Visualization ID"
//	@Success		200	{object}	VisualizationItem
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Router			/visualizations/{id} [get]
func (h *Handler) Visualization(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("id must be an integer"))
		return
	}
	item, err := h.svc.Visualization(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get visualization", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Benchmarks handles GET /api/benchmarks.
//
//	@Summary		Dataset comparison table
//	@Tags			catalog
//	@Produce		json
//	@Success		200	{object}	BenchmarkListResponse
//	@Router			/benchmarks [get]
func (h *Handler) Benchmarks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, BenchmarkListResponse{Benchmarks: h.svc.Catalog().Benchmarks()})
}

// Citation handles GET /api/citation.
//
//	@Summary		BibTeX citation of the dataset
//	@Tags			catalog
//	@Produce		plain
//	@Success		200	{string}	string
//	@Router			/citation [get]
func (h *Handler) Citation(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(h.svc.Catalog().Citation().BibTeX()))
}
