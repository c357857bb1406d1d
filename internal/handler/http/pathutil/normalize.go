// Package pathutil maps request paths to route templates for metric labels.
package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern pairs a path regexp with its template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/entries/[^/]+/[^/]+$`), Template: "/entries/:lang/:id"},
	{Pattern: regexp.MustCompile(`^/imports/[^/]+$`), Template: "/imports/:lang"},
	{Pattern: regexp.MustCompile(`^/images/[^/]+$`), Template: "/images/:name"},
}

var staticPaths = map[string]bool{
	"/":        true,
	"/entries": true,
	"/search":  true,
	"/health":  true,
	"/ready":   true,
	"/live":    true,
	"/metrics": true,
}

// Other labels every path that is neither static nor templated, so scanners
// for random URLs cannot grow the label set.
const Other = "other"

// NormalizePath returns the route template for path.
//
//	NormalizePath("/entries/ru/privet_mir")  // "/entries/:lang/:id"
//	NormalizePath("/images/3f2a.png")        // "/images/:name"
//	NormalizePath("/search?q=x")             // "/search"
//	NormalizePath("/wp-login.php")           // "other"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	if staticPaths[path] {
		return path
	}
	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}
	return Other
}

// cardinality returns the number of distinct labels
// NormalizePath can produce.
func cardinality() int {
	return len(staticPaths) + len(pathPatterns) + 1
}
