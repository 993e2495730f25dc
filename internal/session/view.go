// Package session tracks the UI state of each live page view.
package session

import (
	"github.com/mimahin/gmgbd/internal/models"
	"github.com/mimahin/gmgbd/internal/viewer"
)

// ScrollThreshold is the vertical offset, in pixels, past which the page
// header switches to its scrolled style.
const ScrollThreshold = 10

// View is the ephemeral state of one page view.
type View struct {
	ID         string
	SearchTerm string
	Modal      *viewer.Controller
	Scrolled   bool
}

func newView(id string) *View {
	return &View{ID: id, Modal: viewer.New()}
}

// Search records the current dictionary query.
func (v *View) Search(term string) {
	v.SearchTerm = term
}

// Scroll records the viewport offset.
func (v *View) Scroll(offsetY float64) {
	v.Scrolled = offsetY > ScrollThreshold
}

// Select opens the modal on vis.
func (v *View) Select(vis models.Visualization) {
	v.Modal.Open(vis)
}

// Dismiss closes the modal. It reports whether the modal was open.
func (v *View) Dismiss(trigger viewer.CloseTrigger) bool {
	return v.Modal.Close(trigger)
}
