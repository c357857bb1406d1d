package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/resilience/retry"
)

const articleHTML = `<!DOCTYPE html>
<html><head><title>Новости дня</title></head>
<body>
<nav><a href="/">Главная</a></nav>
<article>
<h1>Новости дня</h1>
<p>Первый абзац статьи содержит достаточно текста, чтобы алгоритм readability признал его основным содержимым страницы.</p>
<p>Второй абзац продолжает рассказ и добавляет подробности о событиях, которые произошли в Кишинёве сегодня утром.</p>
<p>Третий абзац завершает материал и даёт комментарии экспертов о возможных последствиях.</p>
<p>Четвёртый абзац приводит цифры, цитаты официальных лиц и ссылки на предыдущие публикации по этой теме.</p>
<p>Пятый абзац напоминает читателям, где следить за обновлениями, и повторяет главные выводы материала.</p>
</article>
<footer>© point.md</footer>
</body></html>`

func testConfig() ContentFetchConfig {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.DenyPrivateIPs = false
	cfg.Timeout = 2 * time.Second
	return cfg
}

func TestFetchContent_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, articleHTML)
	}))
	defer srv.Close()

	f := NewReadabilityFetcher(testConfig())
	content, err := f.FetchContent(context.Background(), srv.URL+"/ru/news/1")

	require.NoError(t, err)
	assert.Contains(t, content, "Первый абзац")
}

func TestFetchContent_InvalidScheme(t *testing.T) {
	f := NewReadabilityFetcher(testConfig())

	for _, u := range []string{"ftp://point.md/file", "file:///etc/passwd", "javascript:alert(1)"} {
		_, err := f.FetchContent(context.Background(), u)
		assert.ErrorIs(t, err, ErrInvalidURL, "url %q", u)
	}
}

func TestFetchContent_PrivateIPDenied(t *testing.T) {
	cfg := testConfig()
	cfg.DenyPrivateIPs = true
	f := NewReadabilityFetcher(cfg)

	_, err := f.FetchContent(context.Background(), "http://127.0.0.1:1/article")
	assert.ErrorIs(t, err, ErrPrivateIP)
}

func TestFetchContent_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewReadabilityFetcher(testConfig())
	_, err := f.FetchContent(context.Background(), srv.URL)

	var httpErr *retry.StatusError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.Code)
	assert.True(t, retry.Retryable(err))
}

func TestFetchContent_BodyTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, strings.Repeat("a", 4096))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxBodySize = 1024
	f := NewReadabilityFetcher(cfg)

	_, err := f.FetchContent(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestFetchContent_TooManyRedirects(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxRedirects = 2
	f := NewReadabilityFetcher(cfg)

	_, err := f.FetchContent(context.Background(), srv.URL+"/a")
	assert.ErrorIs(t, err, ErrTooManyRedirects)
}

func TestFetchContent_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Timeout = 50 * time.Millisecond
	f := NewReadabilityFetcher(cfg)

	_, err := f.FetchContent(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		deny    bool
		wantErr error
	}{
		{"https ok", "https://93.184.216.34/a", true, nil},
		{"bad scheme", "gopher://point.md", true, ErrInvalidURL},
		{"empty host", "http:///path", true, ErrInvalidURL},
		{"loopback denied", "http://127.0.0.1/x", true, ErrPrivateIP},
		{"private denied", "http://10.1.2.3/x", true, ErrPrivateIP},
		{"link local denied", "http://169.254.169.254/latest", true, ErrPrivateIP},
		{"mapped loopback denied", "http://[::ffff:127.0.0.1]/x", true, ErrPrivateIP},
		{"shared space denied", "http://100.100.100.200/meta", true, ErrPrivateIP},
		{"public v6 literal ok", "https://[2606:4700::1111]/a", true, nil},
		{"loopback allowed when disabled", "http://127.0.0.1/x", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url, tt.deny)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	assert.True(t, isPrivateIP(net.ParseIP("::1")))
	assert.True(t, isPrivateIP(net.ParseIP("fd00::1")))
	assert.True(t, isPrivateIP(net.ParseIP("0.0.0.0")))
	assert.True(t, isPrivateIP(net.ParseIP("192.168.0.10")))
	assert.True(t, isPrivateIP(net.ParseIP("::ffff:10.0.0.1")), "mapped addresses judged as IPv4")
	assert.True(t, isPrivateIP(net.ParseIP("224.0.0.251")))
	assert.True(t, isPrivateIP(net.ParseIP("100.64.0.1")))
	assert.True(t, isPrivateIP(nil))
	assert.False(t, isPrivateIP(net.ParseIP("100.128.0.1")))
	assert.False(t, isPrivateIP(net.ParseIP("8.8.8.8")))
	assert.False(t, isPrivateIP(net.ParseIP("2a00:1450::1")))
}

func TestContentFetchConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.ShouldFetch(10), "disabled by default")

	cfg.Enabled = true
	assert.True(t, cfg.ShouldFetch(cfg.Threshold-1))
	assert.False(t, cfg.ShouldFetch(cfg.Threshold))

	bad := []func(c *ContentFetchConfig){
		func(c *ContentFetchConfig) { c.Threshold = -1 },
		func(c *ContentFetchConfig) { c.Timeout = 0 },
		func(c *ContentFetchConfig) { c.MaxBodySize = 10 },
		func(c *ContentFetchConfig) { c.MaxRedirects = 11 },
	}
	for i, mutate := range bad {
		c := DefaultConfig()
		mutate(&c)
		assert.Error(t, c.Validate(), "case %d", i)
	}
}

func TestReadabilityFetcher_ShouldFetch(t *testing.T) {
	cfg := testConfig()
	cfg.Threshold = 40

	f := NewReadabilityFetcher(cfg)
	assert.True(t, f.ShouldFetch(39))
	assert.False(t, f.ShouldFetch(40))

	cfg.Enabled = false
	assert.False(t, NewReadabilityFetcher(cfg).ShouldFetch(0), "disabled never fetches")
}
