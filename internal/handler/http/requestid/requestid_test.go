package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))
	assert.Equal(t, "abc", FromContext(WithRequestID(context.Background(), "abc")))
	assert.Empty(t, FromContext(context.WithValue(context.Background(), RequestIDKey, 42)))
}

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"client id kept", "trace-123", true},
		{"missing id generated", "", false},
		{"id with spaces replaced", "a b", false},
		{"id with newline replaced", "a\nforged=1", false},
		{"overlong id replaced", strings.Repeat("x", MaxLength+1), false},
		{"id at max length kept", strings.Repeat("x", MaxLength), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = FromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/entries", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
			if tt.keep {
				assert.Equal(t, tt.incoming, seen)
			} else {
				_, err := uuid.Parse(seen)
				assert.NoError(t, err)
			}
		})
	}
}

func TestMiddleware_UniquePerRequest(t *testing.T) {
	ids := map[string]bool{}
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids[FromContext(r.Context())] = true
	}))
	for i := 0; i < 10; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	assert.Len(t, ids, 10)
}
