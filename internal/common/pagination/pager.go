// Package pagination splits entry listings into pages of news_per_page
// entries.
package pagination

import (
	"math"
	"net/http"
	"strconv"
	"strings"
)

// DefaultPerPage is the page size used when news_per_page is unset.
const DefaultPerPage = 20

const maxPage = math.MaxInt32

// Pager maps the page query parameter to a Page. The page size comes from
// configuration; clients only pick the page number.
type Pager struct {
	perPage int
}

// NewPager returns a Pager of perPage entries per page. A non-positive
// perPage falls back to DefaultPerPage.
func NewPager(perPage int) Pager {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return Pager{perPage: perPage}
}

// PerPage returns the fixed page size.
func (p Pager) PerPage() int {
	if p.perPage <= 0 {
		return DefaultPerPage
	}
	return p.perPage
}

// Page returns the page named by raw. Blank, malformed and non-positive
// values select page 1.
func (p Pager) Page(raw string) Page {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		n = 1
	}
	if n > maxPage {
		n = maxPage
	}
	return Page{Number: n, Size: p.PerPage()}
}

// FromRequest reads the page query parameter of r. Other parameters,
// limit included, are ignored.
func (p Pager) FromRequest(r *http.Request) Page {
	return p.Page(r.URL.Query().Get("page"))
}

// Page is one window of a listing. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// Offset is the number of entries that precede the page.
func (pg Page) Offset() int {
	return (pg.Number - 1) * pg.Size
}

// Metadata describes pg within a listing of total entries.
func (pg Page) Metadata(total int64) Metadata {
	return Metadata{
		Total:      total,
		Page:       pg.Number,
		PerPage:    pg.Size,
		TotalPages: TotalPages(total, pg.Size),
	}
}

// Metadata is the pagination block of a listing response.
type Metadata struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
}

// TotalPages returns ceil(total/size). An empty listing has no pages.
func TotalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
