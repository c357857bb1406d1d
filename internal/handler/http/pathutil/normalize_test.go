package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/entries", "/entries"},
		{"/entries/", "/entries"},
		{"/entries?language=ru&page=2", "/entries"},
		{"/entries/ru/privet_mir", "/entries/:lang/:id"},
		{"/entries/ro/%D0%BF", "/entries/:lang/:id"},
		{"/entries/ru/privet_mir/", "/entries/:lang/:id"},
		{"/entries/ru/a/b", Other},
		{"/imports/ru", "/imports/:lang"},
		{"/images/0b8e7c4e.png", "/images/:name"},
		{"/search?language=ru&q=x", "/search"},
		{"/health", "/health"},
		{"/ready", "/ready"},
		{"/live", "/live"},
		{"/metrics", "/metrics"},
		{"/", "/"},
		{"/wp-login.php", Other},
		{"/articles/123", Other},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePath(tt.path))
		})
	}
}

func TestCardinality(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range []string{
		"/", "/entries", "/search", "/health", "/ready", "/live", "/metrics",
		"/entries/ru/x", "/imports/ru", "/images/a.png", "/nope",
	} {
		seen[NormalizePath(p)] = true
	}
	assert.Equal(t, cardinality(), len(seen))
}
