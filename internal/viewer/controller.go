// Package viewer implements the gallery's modal: which visualization is
// selected and how it is presented.
package viewer

import (
	"fmt"

	"github.com/mimahin/gmgbd/internal/apperr"
	"github.com/mimahin/gmgbd/internal/models"
)

// CloseTrigger identifies the control that dismissed the modal.
type CloseTrigger string

// Close triggers.
const (
	// Backdrop is a click outside the modal surface.
	Backdrop CloseTrigger = "backdrop"
	// CloseButton is the explicit close control in the modal header.
	CloseButton CloseTrigger = "close"
	// CloseAction is the trailing "Close Analysis" action.
	CloseAction CloseTrigger = "action"
)

// ParseCloseTrigger maps a trigger name to a CloseTrigger.
func ParseCloseTrigger(s string) (CloseTrigger, error) {
	switch t := CloseTrigger(s); t {
	case Backdrop, CloseButton, CloseAction:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", apperr.ErrInvalidTrigger, s)
	}
}

// Controller is a two-state machine: Closed, or Open with exactly one
// selected visualization. The zero value is Closed.
type Controller struct {
	selected *models.Visualization
}

// New returns a closed controller.
func New() *Controller {
	return &Controller{}
}

// Open selects v. Selecting while already open replaces the selection.
func (c *Controller) Open(v models.Visualization) {
	c.selected = &v
}

// Close returns the controller to Closed. It reports false, and does nothing,
// when the controller was already closed.
func (c *Controller) Close(_ CloseTrigger) bool {
	if c.selected == nil {
		return false
	}
	c.selected = nil
	return true
}

// IsOpen reports whether a visualization is selected.
func (c *Controller) IsOpen() bool {
	return c.selected != nil
}

// Selected returns the selected visualization.
func (c *Controller) Selected() (models.Visualization, bool) {
	if c.selected == nil {
		return models.Visualization{}, false
	}
	return *c.selected, true
}

// Presentation returns how the selected visualization is rendered, or nil
// when the modal is closed.
func (c *Controller) Presentation(urls URLResolver) Presentation {
	if c.selected == nil {
		return nil
	}
	return Present(*c.selected, urls)
}
