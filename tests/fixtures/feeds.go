package fixtures

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// FeedItem is one <item> of a generated RSS 2.0 feed. Empty fields are
// omitted from the XML.
type FeedItem struct {
	Title       string
	Link        string
	Description string
	PubDate     string
	// Enclosure is an image/jpeg enclosure URL.
	Enclosure string
}

// RSS renders an RSS 2.0 document with items in order.
func RSS(title string, items ...FeedItem) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<rss version="2.0"><channel>`)
	b.WriteString("<title>" + html.EscapeString(title) + "</title>")
	b.WriteString("<link>https://point.md</link>")
	for _, it := range items {
		b.WriteString("<item>")
		writeElem(&b, "title", it.Title)
		writeElem(&b, "link", it.Link)
		writeElem(&b, "description", it.Description)
		writeElem(&b, "pubDate", it.PubDate)
		if it.Enclosure != "" {
			fmt.Fprintf(&b, `<enclosure url="%s" type="image/jpeg" length="0"/>`, html.EscapeString(it.Enclosure))
		}
		b.WriteString("</item>")
	}
	b.WriteString("</channel></rss>")
	return b.String()
}

func writeElem(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteString("<" + name + ">" + html.EscapeString(value) + "</" + name + ">")
}

// FeedServer serves a feed body that can be swapped between requests.
type FeedServer struct {
	*httptest.Server
	body     atomic.Value
	requests atomic.Int64
}

// NewFeedServer starts a server answering every request with body. It is
// closed when the test ends.
func NewFeedServer(t testing.TB, body string) *FeedServer {
	t.Helper()
	s := &FeedServer{}
	s.body.Store(body)
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		_, _ = w.Write([]byte(s.body.Load().(string)))
	}))
	t.Cleanup(s.Close)
	return s
}

// SetBody replaces the feed served from now on.
func (s *FeedServer) SetBody(body string) {
	s.body.Store(body)
}

// Requests returns the number of requests served.
func (s *FeedServer) Requests() int64 {
	return s.requests.Load()
}
