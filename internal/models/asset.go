package models

import "time"

// AssetFile is a published file found in the asset directory.
type AssetFile struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}
