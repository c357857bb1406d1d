// Package entity defines the core domain entities and validation logic for the application.
// It contains the canonical Entry record, the configured Language partitions,
// and the domain-specific errors shared by every layer.
package entity

import "time"

// NoImage is the Entry.Image sentinel meaning the entry has no stored asset.
const NoImage = ""

// Entry represents a normalized, persisted news article.
// ID is the slug derived from Title and is unique within a Language.
type Entry struct {
	ID          string     `json:"news_id"`
	Language    string     `json:"language"`
	Title       string     `json:"title"`
	Body        string     `json:"msg"`
	Image       string     `json:"img"`
	PublishedAt time.Time  `json:"published"`
	IndexedAt   *time.Time `json:"-"`
}

// HasImage reports whether the entry references a stored asset.
func (e *Entry) HasImage() bool {
	return e.Image != NoImage
}

// Indexed reports whether the entry has been written to the search index.
func (e *Entry) Indexed() bool {
	return e.IndexedAt != nil
}
