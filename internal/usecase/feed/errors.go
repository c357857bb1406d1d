// Package feed imports syndication feeds into the ingestion pipeline, one
// language partition at a time.
package feed

import "errors"

// Sentinel errors for feed imports.
var (
	// ErrFeedFetch indicates the feed itself could not be downloaded or
	// parsed. The whole run fails since there is nothing to iterate.
	ErrFeedFetch = errors.New("feed fetch failed")

	// ErrMissingPublishTime indicates an item without any publish date.
	ErrMissingPublishTime = errors.New("feed item has no publish time")

	// ErrBadPublishTime indicates a publish date in an unsupported format.
	ErrBadPublishTime = errors.New("feed item publish time cannot be parsed")
)
