// Package assets resolves, checks and watches the published plot files the
// gallery links to.
package assets

import (
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/mimahin/gmgbd/internal/models"
)

// Resolver turns catalog src paths into URLs under a deployment base path.
type Resolver struct {
	BasePath string
}

// NewResolver normalizes basePath to "" (site root) or "/prefix" without a
// trailing slash.
func NewResolver(basePath string) Resolver {
	return Resolver{BasePath: NormalizeBasePath(basePath)}
}

// NormalizeBasePath returns "" for the root or "/a/b" for anything else.
func NormalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

// URL escapes every segment of src and prefixes the base path. Published
// names contain spaces and parentheses and must resolve exactly.
func (r Resolver) URL(src string) string {
	segs := strings.Split(strings.TrimPrefix(src, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return NormalizeBasePath(r.BasePath) + "/" + strings.Join(segs, "/")
}

// StorePath maps a catalog src to a path relative to the asset directory.
func StorePath(src string) string {
	return strings.TrimPrefix(src, "/")
}

// MIMEType returns the media type of an asset from its extension.
func MIMEType(src string) string {
	ext := strings.ToLower(path.Ext(src))
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	if kind, ok := models.KindForPath(src); ok && kind == models.AssetHTML {
		return "text/html; charset=utf-8"
	}
	return "application/octet-stream"
}
