package http

import (
	"net/http"

	"newsdesk/internal/handler/http/respond"
)

// Request size limits applied before routing.
const (
	MaxPathLength  = 2048
	MaxQueryLength = 4096
)

// InputValidation rejects oversized paths and query strings. Search terms
// travel in the query, so the query limit bounds what reaches the index.
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.Path) > MaxPathLength {
				respond.JSON(w, http.StatusRequestURITooLong, map[string]string{"error": "URI too long"})
				return
			}
			if len(r.URL.RawQuery) > MaxQueryLength {
				respond.JSON(w, http.StatusRequestURITooLong, map[string]string{"error": "query too long"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
