package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/mimahin/gmgbd/internal/apperr"
	"github.com/mimahin/gmgbd/internal/page"
	"github.com/mimahin/gmgbd/internal/session"
	"github.com/mimahin/gmgbd/internal/siteservice"
	broker "github.com/mimahin/gmgbd/internal/sse"
	"github.com/mimahin/gmgbd/internal/viewer"
)

// SearchSignals is the datastar signal payload of the dictionary search box.
type SearchSignals struct {
	Search string `json:"search"`
}

// ScrollSignals is the datastar signal payload of the scroll listener.
type ScrollSignals struct {
	ScrollY float64 `json:"scrollY"`
}

// ViewHandler renders the page and applies view transitions, answering
// with datastar element patches.
type ViewHandler struct {
	svc      *siteservice.Service
	pages    *page.Renderer
	title    string
	basePath string
}

// NewViewHandler creates a ViewHandler. basePath is the normalized prefix
// the site router is mounted under.
func NewViewHandler(svc *siteservice.Service, pages *page.Renderer, title, basePath string) *ViewHandler {
	return &ViewHandler{svc: svc, pages: pages, title: title, basePath: basePath}
}

func (h *ViewHandler) viewURL(viewID string) string {
	return h.basePath + "/views/" + url.PathEscape(viewID)
}

func (h *ViewHandler) actions(viewID string) page.ViewActions {
	base := h.viewURL(viewID)
	return page.ViewActions{
		Search:  base + "/search",
		Scroll:  base + "/scroll",
		Refresh: base + "/refresh",
	}
}

func (h *ViewHandler) closeActions(viewID string) page.CloseActions {
	base := h.viewURL(viewID) + "/close/"
	return page.CloseActions{
		Backdrop: base + string(viewer.Backdrop),
		Button:   base + string(viewer.CloseButton),
		Action:   base + string(viewer.CloseAction),
	}
}

// Page handles GET /. Every load starts a fresh page view.
func (h *ViewHandler) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	v := h.svc.NewView(ctx)
	cat := h.svc.Catalog()
	urls := h.svc.Resolver()
	dict := h.svc.Dictionary(ctx, v.SearchTerm)

	gallery := make([]page.GallerySection, 0, len(cat.Categories()))
	for _, category := range cat.Categories() {
		sec := page.GallerySection{Category: category}
		for _, vis := range cat.ByCategory(category) {
			sec.Items = append(sec.Items, page.GalleryItem{
				ID:           vis.ID,
				Title:        vis.Title,
				Description:  vis.Description,
				KindLabel:    page.KindLabel(vis.Asset.Kind()),
				SelectAction: h.viewURL(v.ID) + "/select/" + strconv.Itoa(vis.ID),
			})
		}
		gallery = append(gallery, sec)
	}

	links := cat.Links()
	data := page.Data{
		Title:      h.title,
		Header:     page.Header{Scrolled: v.Scrolled, Repository: links.Repository},
		Links:      links,
		Toolkit:    cat.Toolkit(),
		Benchmarks: cat.Benchmarks(),
		Results:    cat.Results(),
		Dictionary: page.Dictionary{
			Query:        dict.Query,
			Features:     dict.Features,
			Total:        len(cat.DataFeatures()),
			SearchAction: h.actions(v.ID).Search,
		},
		Gallery:     gallery,
		Modal:       page.NewModal(v.Modal, urls, h.closeActions(v.ID)),
		BibTeX:      cat.Citation().BibTeX(),
		Actions:     h.actions(v.ID),
		EventsURL:   h.basePath + "/api/events",
		AssetsEvent: broker.AssetsChanged,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.pages.Page(w, data); err != nil {
		slog.Error("render page failed", slog.String("error", err.Error()))
	}
}

// Search handles POST /views/{view}/search.
func (h *ViewHandler) Search(w http.ResponseWriter, r *http.Request) {
	// Signals must be read before the SSE writer takes over the body.
	var signals SearchSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		h.badSignals(w, r, err)
		return
	}
	v, res, err := h.svc.Search(r.Context(), chi.URLParam(r, "view"), signals.Search)
	if err != nil {
		h.transitionFailed(w, r, err)
		return
	}
	h.patch(w, r, func() (string, error) {
		return h.pages.DictionaryRows(page.Dictionary{
			Query:        res.Query,
			Features:     res.Features,
			SearchAction: h.actions(v.ID).Search,
		})
	})
}

// Select handles POST /views/{view}/select/{id}.
func (h *ViewHandler) Select(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("id must be an integer"))
		return
	}
	if _, err := h.svc.Visualization(r.Context(), id); err != nil {
		writeServiceError(w, "select visualization", err)
		return
	}
	v, err := h.svc.Select(r.Context(), chi.URLParam(r, "view"), id)
	if err != nil {
		h.transitionFailed(w, r, err)
		return
	}
	h.patchModal(w, r, v, h.svc.Resolver())
}

// Close handles POST /views/{view}/close/{trigger}. Closing an already
// closed modal still answers with the (empty) modal.
func (h *ViewHandler) Close(w http.ResponseWriter, r *http.Request) {
	trigger, err := viewer.ParseCloseTrigger(chi.URLParam(r, "trigger"))
	if err != nil {
		writeServiceError(w, "close modal", err)
		return
	}
	v, _, err := h.svc.Dismiss(r.Context(), chi.URLParam(r, "view"), trigger)
	if err != nil {
		h.transitionFailed(w, r, err)
		return
	}
	h.patchModal(w, r, v, h.svc.Resolver())
}

// Scroll handles POST /views/{view}/scroll.
func (h *ViewHandler) Scroll(w http.ResponseWriter, r *http.Request) {
	var signals ScrollSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		h.badSignals(w, r, err)
		return
	}
	v, err := h.svc.Scroll(r.Context(), chi.URLParam(r, "view"), signals.ScrollY)
	if err != nil {
		h.transitionFailed(w, r, err)
		return
	}
	h.patch(w, r, func() (string, error) {
		return h.pages.Header(page.Header{
			Scrolled:   v.Scrolled,
			Repository: h.svc.Catalog().Links().Repository,
		})
	})
}

// Refresh handles POST /views/{view}/refresh, sent by the page after an
// assets.changed event. The modal is re-rendered with cache-busted URLs so
// an open asset is fetched again.
func (h *ViewHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.View(r.Context(), chi.URLParam(r, "view"))
	if err != nil {
		h.transitionFailed(w, r, err)
		return
	}
	rev := strconv.FormatInt(time.Now().UnixNano(), 36)
	h.patchModal(w, r, v, revisionURLs{base: h.svc.Resolver(), rev: rev})
}

func (h *ViewHandler) patchModal(w http.ResponseWriter, r *http.Request, v session.View, urls viewer.URLResolver) {
	h.patch(w, r, func() (string, error) {
		return h.pages.Modal(page.NewModal(v.Modal, urls, h.closeActions(v.ID)))
	})
}

func (h *ViewHandler) patch(w http.ResponseWriter, r *http.Request, render func() (string, error)) {
	fragment, err := render()
	sse := datastar.NewSSE(w, r)
	if err != nil {
		slog.Error("render fragment failed", slog.String("error", err.Error()))
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElements(fragment); err != nil {
		slog.Debug("patch elements failed", slog.String("error", err.Error()))
	}
}

func (h *ViewHandler) badSignals(w http.ResponseWriter, r *http.Request, err error) {
	sse := datastar.NewSSE(w, r)
	_ = sse.ConsoleError(err)
}

// transitionFailed answers a transition on a view that is gone (evicted or
// from a previous process) by reloading the page, which starts a new view.
func (h *ViewHandler) transitionFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		sse := datastar.NewSSE(w, r)
		_ = sse.ExecuteScript("window.location.reload()")
		return
	}
	writeServiceError(w, "view transition", err)
}

type revisionURLs struct {
	base viewer.URLResolver
	rev  string
}

func (u revisionURLs) URL(src string) string {
	return u.base.URL(src) + "?rev=" + u.rev
}
