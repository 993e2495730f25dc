// Package api implements the GMGBD HTTP surface using chi.
package api

import (
	"net/http"
	"strings"
)

// ETagMiddleware tags responses with the catalog version. The catalog never
// changes while the process runs, so a matching If-None-Match short-circuits
// with 304.
func ETagMiddleware(version string) func(http.Handler) http.Handler {
	etag := `"` + version + `"`
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("ETag", etag)
			if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
				w.WriteHeader(http.StatusNotModified)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		c := strings.TrimSpace(candidate)
		if c == "*" || strings.TrimPrefix(c, "W/") == etag {
			return true
		}
	}
	return false
}
