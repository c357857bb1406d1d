package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/config"
	"newsdesk/internal/usecase/feed"
)

type stubFetcher map[string][]feed.FeedItem

func (s stubFetcher) Fetch(_ context.Context, url string) ([]feed.FeedItem, error) {
	items, ok := s[url]
	if !ok {
		return nil, errors.New("unexpected status 404")
	}
	return items, nil
}

const feedsConfig = `collection: news
languages:
  ru:
    name: russian
    feed_url: https://example.com/ru.xml
  ro:
    name: romanian
    feed_url: https://example.com/ro.xml
  en:
    name: english
    feed_url: https://example.com/en.xml
  de:
    name: german
`

func TestDiagnoseFeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(feedsConfig), 0o600))
	cfg, err := config.LoadFile(path)
	require.NoError(t, err)

	parsed := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	fetcher := stubFetcher{
		"https://example.com/ru.xml": {
			{Title: "a", Published: "Tue, 30 Apr 2024 10:00:00 +0300"},
			{Title: "b", PublishedAt: &parsed},
			{Title: "c", Published: "yesterday"},
		},
		"https://example.com/ro.xml": {},
	}

	got := diagnoseFeeds(context.Background(), cfg, fetcher)
	require.Len(t, got, 3)

	byLang := map[string]feedDiagnostic{}
	for _, d := range got {
		byLang[d.Language] = d
	}
	assert.Equal(t, statusFetchError, byLang["en"].Status)
	assert.Contains(t, byLang["en"].ErrorMessage, "404")
	assert.Equal(t, statusEmpty, byLang["ro"].Status)

	ru := byLang["ru"]
	assert.Equal(t, statusOK, ru.Status)
	assert.Equal(t, 3, ru.ItemCount)
	assert.Equal(t, 1, ru.BadDates)
	assert.Equal(t, "2024-05-01T08:00:00Z", ru.LatestDate)
}

func TestFeedsCommand_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(feedsConfig), 0o600))

	fetcher := stubFetcher{
		"https://example.com/ru.xml": {{Title: "x", Published: "yesterday"}},
		"https://example.com/ro.xml": {{Title: "y", Published: "Wed, 01 May 2024 10:00:00 +0300"}},
	}
	cmd := rootCmd(nil, fetcher)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"feeds", "--json", "-c", path})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var results []feedDiagnostic
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	statuses := map[string]string{}
	for _, d := range results {
		statuses[d.Language] = d.Status
	}
	assert.Equal(t, map[string]string{"en": statusFetchError, "ro": statusOK, "ru": statusNoDates}, statuses)
}
