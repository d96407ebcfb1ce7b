package middleware

import (
	"net/http"
	"strings"
)

// CaseInsensitive lowercases the URL path so report links scanned from
// a printed QR code resolve regardless of how the scanner cased them.
// Report IDs are lowercase UUIDs, so path lowercasing is lossless.
func CaseInsensitive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.URL.Path = strings.ToLower(r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
