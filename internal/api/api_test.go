package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mimahin/gmgbd/internal/page"
	"github.com/mimahin/gmgbd/internal/storage"
	"github.com/mimahin/gmgbd/internal/testutil"
)

// testEnv sets up a temp asset dir holding every catalog asset, a service and
// a router mounted at the root.
func testEnv(t *testing.T) http.Handler {
	t.Helper()
	_, store := testutil.PublishedAssets(t)
	return testRouter(t, "", store)
}

func testRouter(t *testing.T, basePath string, store storage.Provider) http.Handler {
	t.Helper()
	pages, err := page.New()
	if err != nil {
		t.Fatalf("page.New: %v", err)
	}
	svc := testutil.Service(t, basePath, store)
	return NewRouter(svc, pages, Site{Title: "GMGBD", BasePath: basePath}, nil, store)
}

func do(router http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func datastarPost(t *testing.T, router http.Handler, path string, signals any) *httptest.ResponseRecorder {
	t.Helper()
	var body []byte
	if signals != nil {
		var err error
		body, err = json.Marshal(signals)
		if err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Datastar-Request", "true")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// View IDs appear inside JS string literals, where slashes are escaped.
var viewIDPattern = regexp.MustCompile(`views\\?/([0-9a-f-]{36})`)

func newView(t *testing.T, router http.Handler) string {
	t.Helper()
	w := do(router, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("page status = %d", w.Code)
	}
	m := viewIDPattern.FindStringSubmatch(w.Body.String())
	if m == nil {
		t.Fatal("page has no view actions")
	}
	return m[1]
}

func TestPage(t *testing.T) {
	router := testEnv(t)

	w := do(router, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	body := w.Body.String()
	for _, want := range []string{`id="site-header"`, `id="dictionary-rows"`, `id="modal"`, "latitude", "Visualization Gallery"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}

	// Each load is a separate page view.
	if a, b := newView(t, router), newView(t, router); a == b {
		t.Errorf("two loads share view %s", a)
	}
}

func TestDictionaryAPI(t *testing.T) {
	router := testEnv(t)

	w := do(router, http.MethodGet, "/api/dictionary?q=ndvi", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp DictionaryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 || resp.Query != "ndvi" {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Features[0].Column != "NDVI_value" || resp.Features[1].Column != "NDVI_Category" {
		t.Errorf("order not preserved: %+v", resp.Features)
	}

	w = do(router, http.MethodGet, "/api/dictionary", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 15 {
		t.Errorf("empty query total = %d, want 15", resp.Total)
	}

	w = do(router, http.MethodGet, "/api/dictionary?q=zzz", nil)
	if !strings.Contains(w.Body.String(), `"features":[]`) {
		t.Errorf("no-match should encode an empty list: %s", w.Body.String())
	}
}

func TestETag(t *testing.T) {
	router := testEnv(t)

	w := do(router, http.MethodGet, "/api/benchmarks", nil)
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/benchmarks", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Errorf("status = %d, want 304", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/benchmarks", nil)
	req.Header.Set("If-None-Match", `"stale"`)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("stale etag status = %d, want 200", w.Code)
	}
}

func TestVisualizationsAPI(t *testing.T) {
	router := testEnv(t)

	w := do(router, http.MethodGet, "/api/visualizations", nil)
	var list VisualizationListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 15 || len(list.Visualizations) != 15 {
		t.Fatalf("total = %d", list.Total)
	}

	w = do(router, http.MethodGet, "/api/visualizations?category=Data+Quality", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total == 0 {
		t.Fatal("Data Quality has no entries")
	}
	for _, it := range list.Visualizations {
		if it.Category != "Data Quality" {
			t.Errorf("category = %q", it.Category)
		}
	}

	w = do(router, http.MethodGet, "/api/visualizations?category=Astrology", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown category status = %d, want 404", w.Code)
	}
}

func TestVisualizationByID(t *testing.T) {
	router := testEnv(t)

	w := do(router, http.MethodGet, "/api/visualizations/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var it VisualizationItem
	_ = json.Unmarshal(w.Body.Bytes(), &it)
	if it.Type != "html" || it.URL != "/plots/map_temperature.html" {
		t.Errorf("item = %+v", it)
	}

	if w := do(router, http.MethodGet, "/api/visualizations/999", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", w.Code)
	}
	if w := do(router, http.MethodGet, "/api/visualizations/abc", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", w.Code)
	}
}

func TestCitation(t *testing.T) {
	router := testEnv(t)

	w := do(router, http.MethodGet, "/api/citation", nil)
	if !strings.HasPrefix(w.Body.String(), "@dataset{gmgbd_2026,") {
		t.Errorf("citation = %q", w.Body.String())
	}
}

func TestSearchPatchesDictionary(t *testing.T) {
	router := testEnv(t)
	view := newView(t, router)

	w := datastarPost(t, router, "/views/"+view+"/search", SearchSignals{Search: "NDVI"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "datastar-patch-elements") {
		t.Fatalf("not a datastar patch: %q", body)
	}
	if !strings.Contains(body, "NDVI_value") || strings.Contains(body, "latitude") {
		t.Errorf("unexpected rows: %q", body)
	}

	w = datastarPost(t, router, "/views/"+view+"/search", SearchSignals{Search: "zzz"})
	if !strings.Contains(w.Body.String(), "No columns match") {
		t.Errorf("missing empty-state row: %q", w.Body.String())
	}
}

func TestModalTransitions(t *testing.T) {
	router := testEnv(t)
	view := newView(t, router)
	base := "/views/" + view

	w := datastarPost(t, router, base+"/select/1", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "<iframe") {
		t.Fatalf("select html: status = %d body = %q", w.Code, w.Body.String())
	}

	// Re-selection replaces the open entry.
	w = datastarPost(t, router, base+"/select/5", nil)
	body := w.Body.String()
	if !strings.Contains(body, "<img") || strings.Contains(body, "<iframe") {
		t.Fatalf("select image: %q", body)
	}

	for _, trigger := range []string{"backdrop", "close", "action"} {
		w = datastarPost(t, router, base+"/select/2", nil)
		if !strings.Contains(w.Body.String(), "<iframe") {
			t.Fatalf("reopen before %s: %q", trigger, w.Body.String())
		}
		w = datastarPost(t, router, base+"/close/"+trigger, nil)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `<div id="modal"></div>`) {
			t.Errorf("close via %s: status = %d body = %q", trigger, w.Code, w.Body.String())
		}
	}

	// Closing a closed modal is a no-op.
	w = datastarPost(t, router, base+"/close/backdrop", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `<div id="modal"></div>`) {
		t.Errorf("close when closed: status = %d", w.Code)
	}
}

func TestModalErrors(t *testing.T) {
	router := testEnv(t)
	base := "/views/" + newView(t, router)

	if w := datastarPost(t, router, base+"/select/999", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown visualization status = %d, want 404", w.Code)
	}
	if w := datastarPost(t, router, base+"/select/x", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", w.Code)
	}
	if w := datastarPost(t, router, base+"/close/escape", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad trigger status = %d, want 400", w.Code)
	}
}

func TestScrollPatchesHeader(t *testing.T) {
	router := testEnv(t)
	base := "/views/" + newView(t, router)

	w := datastarPost(t, router, base+"/scroll", ScrollSignals{ScrollY: 42})
	if !strings.Contains(w.Body.String(), "site-header scrolled") {
		t.Errorf("expected scrolled header: %q", w.Body.String())
	}

	w = datastarPost(t, router, base+"/scroll", ScrollSignals{ScrollY: 10})
	body := w.Body.String()
	if !strings.Contains(body, `id="site-header"`) || strings.Contains(body, "scrolled") {
		t.Errorf("offset 10 must not count as scrolled: %q", body)
	}
}

func TestUnknownViewReloads(t *testing.T) {
	router := testEnv(t)

	w := datastarPost(t, router, "/views/gone/search", SearchSignals{Search: "x"})
	if !strings.Contains(w.Body.String(), "window.location.reload()") {
		t.Errorf("expected reload script: %q", w.Body.String())
	}
}

func TestRefreshBustsAssetURLs(t *testing.T) {
	router := testEnv(t)
	base := "/views/" + newView(t, router)

	datastarPost(t, router, base+"/select/1", nil)
	w := datastarPost(t, router, base+"/refresh", nil)
	if !strings.Contains(w.Body.String(), "map_temperature.html?rev=") {
		t.Errorf("refresh should re-render the modal with a revision: %q", w.Body.String())
	}
}

func TestServeAsset(t *testing.T) {
	router := testEnv(t)

	w := do(router, http.MethodGet, "/plots/Top%2010%20Frequencys.png", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Body.String() != "asset:/plots/Top 10 Frequencys.png" {
		t.Errorf("body = %q", w.Body.String())
	}

	w = do(router, http.MethodGet, "/plots/Outlier%20Analysis%20(Symmetric%20Scale).png", nil)
	if w.Code != http.StatusOK {
		t.Errorf("parenthesized name status = %d", w.Code)
	}

	if w := do(router, http.MethodGet, "/plots/top%2010%20frequencys.png", nil); w.Code != http.StatusNotFound {
		t.Errorf("case mismatch status = %d, want 404", w.Code)
	}
	if w := do(router, http.MethodGet, "/plots/../../etc/passwd", nil); w.Code != http.StatusBadRequest {
		t.Errorf("traversal status = %d, want 400", w.Code)
	}
	if w := do(router, http.MethodGet, "/plots/notes.txt", nil); w.Code != http.StatusNotFound {
		t.Errorf("non-asset status = %d, want 404", w.Code)
	}
}

func TestServeAsset_PercentInName(t *testing.T) {
	_, store := testutil.AssetDir(t, "/plots/100% coverage.png", "/plots/100% (raw).png")
	router := testRouter(t, "", store)

	// The URL the resolver emits for the name.
	w := do(router, http.MethodGet, "/plots/100%25%20coverage.png", nil)
	if w.Code != http.StatusOK || w.Body.String() != "asset:/plots/100% coverage.png" {
		t.Errorf("status = %d body = %q", w.Code, w.Body.String())
	}

	// A literal "(" keeps RawPath, so the wildcard arrives still encoded.
	w = do(router, http.MethodGet, "/plots/100%25%20(raw).png", nil)
	if w.Code != http.StatusOK || w.Body.String() != "asset:/plots/100% (raw).png" {
		t.Errorf("raw path status = %d body = %q", w.Code, w.Body.String())
	}
}

func TestBasePathMount(t *testing.T) {
	_, store := testutil.PublishedAssets(t)
	root := chi.NewRouter()
	root.Mount("/GMGBD", testRouter(t, "/GMGBD", store))

	w := do(root, http.MethodGet, "/GMGBD/api/visualizations/1", nil)
	var it VisualizationItem
	_ = json.Unmarshal(w.Body.Bytes(), &it)
	if it.URL != "/GMGBD/plots/map_temperature.html" {
		t.Fatalf("url = %q", it.URL)
	}

	w = do(root, http.MethodGet, it.URL, nil)
	if w.Code != http.StatusOK {
		t.Errorf("asset under base path status = %d", w.Code)
	}

	w = do(root, http.MethodGet, "/GMGBD/", nil)
	if !strings.Contains(w.Body.String(), `GMGBD\/views\/`) {
		t.Errorf("view actions not prefixed with base path")
	}
}
