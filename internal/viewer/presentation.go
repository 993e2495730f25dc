package viewer

import (
	"fmt"

	"github.com/mimahin/gmgbd/internal/models"
)

// EmbeddedHeightVH is the share of the viewport height given to embedded
// documents.
const EmbeddedHeightVH = 65

// URLResolver maps a catalog src to a fetchable URL.
type URLResolver interface {
	URL(src string) string
}

// Presentation is the rendering strategy for an open modal. The only
// implementations are EmbeddedDocument and ScaledImage.
type Presentation interface {
	Mode() string
	isPresentation()
}

// EmbeddedDocument renders an HTML asset inside a sandboxed frame.
type EmbeddedDocument struct {
	URL      string
	Title    string
	HeightVH int
}

// Mode implements Presentation.
func (EmbeddedDocument) Mode() string { return "embedded" }

func (EmbeddedDocument) isPresentation() {}

// ScaledImage renders an image asset centered, scaled down to fit and
// keeping its aspect ratio.
type ScaledImage struct {
	URL string
	Alt string
}

// Mode implements Presentation.
func (ScaledImage) Mode() string { return "image" }

func (ScaledImage) isPresentation() {}

// Present dispatches on the asset variant of v. The result depends only on v,
// so reopening the same entry always reproduces the same presentation.
func Present(v models.Visualization, urls URLResolver) Presentation {
	switch a := v.Asset.(type) {
	case models.HTMLDocument:
		return EmbeddedDocument{URL: urls.URL(a.Path), Title: v.Title, HeightVH: EmbeddedHeightVH}
	case models.Image:
		return ScaledImage{URL: urls.URL(a.Path), Alt: v.Title}
	default:
		panic(fmt.Sprintf("viewer: unhandled asset type %T", v.Asset))
	}
}

// Label is the caption shown above the modal title.
func Label(p Presentation) string {
	switch p.(type) {
	case EmbeddedDocument:
		return "Dynamic Folium Map"
	case ScaledImage:
		return "Static Distribution Plot"
	default:
		return ""
	}
}
