// Package apicors provides CORS middleware for the API-key protected data
// API. No cookies are involved, so credentials are never allowed and any
// origin may be permitted.
package apicors

import (
	"net/http"
)

// The data API is read-only.
const (
	allowMethods = "GET, OPTIONS"
	allowHeaders = "Authorization, Accept"
	maxAge       = "86400" // 24 hours
)

// Middleware returns CORS middleware for API key authenticated endpoints.
//
// With no origins every origin is allowed (Access-Control-Allow-Origin: *).
// Otherwise only the listed origins are echoed back; other browsers get no
// CORS headers and block the response themselves. Preflight OPTIONS
// requests are answered with 204 before authentication runs.
//
// Usage in routes.go:
//
//	r.Use(apicors.Middleware(appCfg.APIAllowedOrigins...))
//	r.Use(auth.APIKeyAuth(appCfg.APIKey, logger))
func Middleware(allowedOrigins ...string) func(http.Handler) http.Handler {
	originSet := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originSet[o] = struct{}{}
	}
	anyOrigin := len(originSet) == 0

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if anyOrigin {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Add("Vary", "Origin")
				if origin := r.Header.Get("Origin"); origin != "" {
					if _, ok := originSet[origin]; ok {
						h.Set("Access-Control-Allow-Origin", origin)
					}
				}
			}
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Max-Age", maxAge)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
