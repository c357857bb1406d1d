// Package search translates a user query into a full-text query against the
// language-scoped search index.
package search

import "errors"

// ErrSearch wraps failures reported by the search index.
var ErrSearch = errors.New("search failed")
