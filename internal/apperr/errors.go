// Package apperr holds the sentinel errors shared by the service and its
// HTTP and MCP surfaces.
package apperr

import "errors"

var (
	// ErrNotFound marks an unknown visualization, category, page view or asset.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCatalog marks a catalog document that fails validation.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrInvalidTrigger marks a close trigger other than backdrop, close or action.
	ErrInvalidTrigger = errors.New("invalid close trigger")
)
