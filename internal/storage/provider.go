// Package storage defines read access to the published asset directory.
package storage

import "github.com/mimahin/gmgbd/internal/models"

// Provider is the interface for asset directory lookups. All paths are
// slash-separated and relative to the asset root.
type Provider interface {
	// List returns every servable asset file under dir.
	List(dir string) ([]models.AssetFile, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Resolve returns the absolute path of a regular file, or an error
	// wrapping fs.ErrNotExist when it is missing.
	Resolve(path string) (string, error)
	// Root returns the absolute asset root.
	Root() string
}
