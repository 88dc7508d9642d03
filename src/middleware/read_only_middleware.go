package middleware

import (
	"net/http"
	"strings"
)

// ReadOnlyMiddleware blocks every write when readOnly is set. Rule previews
// are POSTs but never write, so they stay allowed.
func ReadOnlyMiddleware(readOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !readOnly {
				next.ServeHTTP(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			case http.MethodPost:
				if strings.HasPrefix(r.URL.Path, "/api/rules/") && strings.HasSuffix(r.URL.Path, "/test") {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Read-only mode: writes are disabled", http.StatusForbidden)
		})
	}
}
