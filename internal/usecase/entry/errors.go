// Package entry provides the read side of stored news entries: the paginated
// per-language listing and single entry lookup.
package entry

import "errors"

// Sentinel errors for entry use case operations.
var (
	// ErrEntryNotFound indicates that no entry exists for the language and id.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrInvalidEntryID indicates an empty entry id.
	ErrInvalidEntryID = errors.New("invalid entry ID")
)
