// Package entry serves the news endpoints: submission, feed imports,
// search, listing, single entries and stored images.
package entry

import (
	"time"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/usecase/feed"
)

// ImagePrefix is the URL path under which stored assets are served.
const ImagePrefix = "/images/"

// DTO is the JSON form of an entry.
type DTO struct {
	ID        string    `json:"news_id" example:"privet_mir"`
	Language  string    `json:"language" example:"ru"`
	Title     string    `json:"title" example:"Привет, мир!"`
	Msg       string    `json:"msg" example:"<p>hi</p>"`
	Img       string    `json:"img" example:"/images/0b8e7c4e-2f0a-4f59-9d7b-3c1f0a6e5d21.png"`
	Published time.Time `json:"published" example:"2026-03-01T10:00:00Z"`
}

// CreatedDTO answers a manual submission.
type CreatedDTO struct {
	DTO
	// Indexed is false when the entry is stored but still queued for the
	// search index.
	Indexed bool `json:"indexed"`
}

// FailureDTO is one feed item that was not imported.
type FailureDTO struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Error string `json:"error"`
}

// ImportDTO is the report of POST /imports/{lang}.
type ImportDTO struct {
	Language      string       `json:"language"`
	FeedItems     int          `json:"feed_items"`
	Inserted      int          `json:"inserted"`
	Duplicates    int          `json:"duplicates"`
	Failed        int          `json:"failed"`
	IndexFailures int          `json:"index_failures"`
	Failures      []FailureDTO `json:"failures"`
	DurationMS    int64        `json:"duration_ms"`
}

func toDTO(e *entity.Entry) DTO {
	img := ""
	if e.HasImage() {
		img = ImagePrefix + e.Image
	}
	return DTO{
		ID:        e.ID,
		Language:  e.Language,
		Title:     e.Title,
		Msg:       e.Body,
		Img:       img,
		Published: e.PublishedAt,
	}
}

func toImportDTO(r *feed.Report) ImportDTO {
	out := ImportDTO{
		Language:      r.Language,
		FeedItems:     r.FeedItems,
		Inserted:      r.Inserted,
		Duplicates:    r.Duplicates,
		Failed:        r.Failed,
		IndexFailures: r.IndexFailures,
		Failures:      make([]FailureDTO, 0, len(r.Failures)),
		DurationMS:    r.Duration.Milliseconds(),
	}
	for _, f := range r.Failures {
		out.Failures = append(out.Failures, FailureDTO{Title: f.Title, Link: f.Link, Error: f.Err.Error()})
	}
	return out
}
