package middleware

import (
	"net/http"
	"strings"
)

// MaxRequestSize caps JSON request bodies. Upload paths get their own, larger
// limit enforced by the media handler.
func MaxRequestSize(maxBytes int64, exemptPrefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && !hasPrefix(r.URL.Path, exemptPrefixes) {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
