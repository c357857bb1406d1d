// Package ingest normalizes incoming articles into Entries and persists them
// to the primary store and the search index. Manual submissions and feed
// imports share one pipeline and differ only in duplicate policy and image
// source.
package ingest

import "errors"

// Sentinel errors for ingestion.
var (
	// ErrSlugConflict indicates a manual submission whose title maps to an
	// id already taken in that language.
	ErrSlugConflict = errors.New("an entry with this title already exists")

	// ErrStore wraps primary store failures.
	ErrStore = errors.New("entry store failed")

	// ErrAsset wraps failures to store an upload or download an image.
	ErrAsset = errors.New("image unavailable")

	// ErrIndex wraps search index write failures. It never fails an
	// ingestion; the entry stays queued for reindexing.
	ErrIndex = errors.New("search index write failed")
)
