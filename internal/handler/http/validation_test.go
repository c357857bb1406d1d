package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputValidation(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		reached    bool
	}{
		{"normal search", "/search?language=ru&q=" + strings.Repeat("a", 100), http.StatusOK, true},
		{"path at limit", "/" + strings.Repeat("a", MaxPathLength-1), http.StatusOK, true},
		{"path too long", "/" + strings.Repeat("a", MaxPathLength), http.StatusRequestURITooLong, false},
		{"query at limit", "/search?" + strings.Repeat("q", MaxQueryLength), http.StatusOK, true},
		{"query too long", "/search?" + strings.Repeat("q", MaxQueryLength+1), http.StatusRequestURITooLong, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			h := InputValidation()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
			}))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.reached, reached)
		})
	}
}
