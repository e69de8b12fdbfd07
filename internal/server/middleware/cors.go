// Package middleware provides HTTP middleware for cross-origin access and request logging.
package middleware

import (
	"net/http"
	"slices"
	"strings"
)

// ExtensionOriginPrefix marks browser-extension origins, which are always allowed.
const ExtensionOriginPrefix = "chrome-extension://"

const (
	allowMethods = "GET, POST, DELETE, OPTIONS"
	allowHeaders = "Content-Type, Authorization"
)

// OriginAllowed reports whether origin may make credentialed requests.
func OriginAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return false
	}
	return strings.HasPrefix(origin, ExtensionOriginPrefix) || slices.Contains(allowed, origin)
}

// CORS creates middleware that echoes allowed origins with credentials and
// answers preflight requests with 204.
func CORS(allowed []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if OriginAllowed(origin, allowed) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Methods", allowMethods)
				h.Set("Access-Control-Allow-Headers", allowHeaders)
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
