// Package page renders the GMGBD landing page and the fragments patched into
// it by datastar.
package page

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/mimahin/gmgbd/internal/models"
	"github.com/mimahin/gmgbd/internal/viewer"
)

//go:embed templates/*.html
var templateFS embed.FS

// Element IDs targeted by fragment patches.
const (
	HeaderID     = "site-header"
	DictionaryID = "dictionary-rows"
	ModalID      = "modal"
)

// Renderer executes the embedded templates.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	tmpl, err := template.New("gmgbd").Funcs(template.FuncMap{
		"inc":     func(i int) int { return i + 1 },
		"percent": func(f float64) string { return fmt.Sprintf("%.2f%%", f) },
		"deref":   func(f *float64) float64 { return *f },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("page: parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Page writes the full document.
func (r *Renderer) Page(w io.Writer, d Data) error {
	return r.tmpl.ExecuteTemplate(w, "page", d)
}

// Header renders the header fragment.
func (r *Renderer) Header(h Header) (string, error) {
	return r.fragment("header", h)
}

// DictionaryRows renders the dictionary table body.
func (r *Renderer) DictionaryRows(d Dictionary) (string, error) {
	return r.fragment("dictionary-rows", d)
}

// Modal renders the modal container, empty when closed.
func (r *Renderer) Modal(m Modal) (string, error) {
	return r.fragment("modal", m)
}

func (r *Renderer) fragment(name string, data any) (string, error) {
	var sb strings.Builder
	if err := r.tmpl.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("page: render %s: %w", name, err)
	}
	return sb.String(), nil
}

// Data is everything the full page needs.
type Data struct {
	Title       string
	Header      Header
	Links       models.SiteLinks
	Toolkit     []models.Tool
	Benchmarks  []models.Benchmark
	Results     []models.LiftResult
	Dictionary  Dictionary
	Gallery     []GallerySection
	Modal       Modal
	BibTeX      string
	Actions     ViewActions
	EventsURL   string
	AssetsEvent string
}

// Header is the sticky page header.
type Header struct {
	Scrolled   bool
	Repository models.Link
}

// Dictionary is the searchable data dictionary.
type Dictionary struct {
	Query        string
	Features     []models.DataFeature
	Total        int
	SearchAction string
}

// GallerySection is one category of the gallery.
type GallerySection struct {
	Category string
	Items    []GalleryItem
}

// GalleryItem is a clickable visualization card.
type GalleryItem struct {
	ID           int
	Title        string
	Description  string
	KindLabel    string
	SelectAction string
}

// Modal is the visualization viewer. At most one of Embedded and Image is
// set, and only when Open.
type Modal struct {
	Open         bool
	Title        string
	Description  string
	Label        string
	Embedded     *viewer.EmbeddedDocument
	Image        *viewer.ScaledImage
	CloseActions CloseActions
}

// CloseActions are the endpoints of the three close controls.
type CloseActions struct {
	Backdrop string
	Button   string
	Action   string
}

// ViewActions are the per-view endpoints the page posts to.
type ViewActions struct {
	Search  string
	Scroll  string
	Refresh string
}

// KindLabel is the card caption for an asset kind.
func KindLabel(k models.AssetKind) string {
	if k == models.AssetHTML {
		return "Interactive Map"
	}
	return "Statistical Plot"
}

// NewModal builds the modal view model from a controller.
func NewModal(c *viewer.Controller, urls viewer.URLResolver, closeActions CloseActions) Modal {
	v, ok := c.Selected()
	if !ok {
		return Modal{}
	}
	m := Modal{
		Open:         true,
		Title:        v.Title,
		Description:  v.Description,
		CloseActions: closeActions,
	}
	p := c.Presentation(urls)
	m.Label = viewer.Label(p)
	switch p := p.(type) {
	case viewer.EmbeddedDocument:
		m.Embedded = &p
	case viewer.ScaledImage:
		m.Image = &p
	}
	return m
}
