package app_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/app"
	"newsdesk/internal/config"
	"newsdesk/internal/infra/db"
	"newsdesk/internal/infra/search/elasticsearch"
	entryUC "newsdesk/internal/usecase/entry"
)

type cluster struct {
	mu      sync.Mutex
	created []string
	bodies  []string
	status  int
}

func (c *cluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	body, _ := io.ReadAll(r.Body)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != 0 {
		w.WriteHeader(c.status)
		_, _ = w.Write([]byte(`{"error":{"type":"cluster_block_exception","reason":"down"}}`))
		return
	}
	if r.Method == http.MethodPut {
		c.created = append(c.created, strings.TrimPrefix(r.URL.Path, "/"))
		c.bodies = append(c.bodies, string(body))
	}
	_, _ = w.Write([]byte(`{"acknowledged":true}`))
}

func build(t *testing.T, c *cluster) (*app.App, sqlmock.Sqlmock) {
	t.Helper()
	srv := httptest.NewServer(c)
	t.Cleanup(srv.Close)

	esCfg := elasticsearch.DefaultConfig()
	esCfg.Addresses = []string{srv.URL}
	esCfg.MaxRetries = -1
	client, err := elasticsearch.NewClient(esCfg)
	require.NoError(t, err)

	database, mock, err := sqlmock.New()
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Assets.Dir = t.TempDir()

	a, err := app.Build(cfg, database, client)
	require.NoError(t, err)
	return a, mock
}

func TestBuild_WiresServices(t *testing.T) {
	a, _ := build(t, &cluster{})

	assert.NotNil(t, a.Pipeline)
	assert.NotNil(t, a.Search)
	assert.NotNil(t, a.Reader)
	assert.Equal(t, []string{"ro", "ru"}, a.Languages.Codes())
	assert.Equal(t, []string{"ro", "ru"}, a.Feeds.Languages())
	assert.DirExists(t, a.Assets.Dir())
}

func TestBuild_RejectsBadEnrichConfig(t *testing.T) {
	database, _, err := sqlmock.New()
	require.NoError(t, err)
	client, err := elasticsearch.NewClient(elasticsearch.DefaultConfig())
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Assets.Dir = t.TempDir()
	cfg.Enrich.Enabled = true
	cfg.Enrich.Threshold = -1

	_, err = app.Build(cfg, database, client)
	assert.ErrorContains(t, err, "enrich config")
}

func TestBuild_ReaderGoesThroughDatabase(t *testing.T) {
	a, mock := build(t, &cluster{})
	mock.ExpectQuery("FROM entries").
		WithArgs("ru", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"slug"}))

	_, err := a.Reader.Get(context.Background(), "ru", "missing")
	assert.ErrorIs(t, err, entryUC.ErrEntryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureIndices_CreatesOnePerLanguage(t *testing.T) {
	c := &cluster{}
	a, _ := build(t, c)

	require.NoError(t, a.EnsureIndices(context.Background()))

	sort.Strings(c.created)
	assert.Equal(t, []string{"news_ro", "news_ru"}, c.created)
	joined := strings.Join(c.bodies, "\n")
	assert.Contains(t, joined, `"analyzer":"russian"`)
	assert.Contains(t, joined, `"analyzer":"romanian"`)
}

func TestBootstrap_ClusterDownIsNotFatal(t *testing.T) {
	c := &cluster{status: http.StatusServiceUnavailable}
	a, _ := build(t, c)

	a.Bootstrap(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Empty(t, c.created)
}

func TestClose(t *testing.T) {
	a, mock := build(t, &cluster{})
	mock.ExpectClose()

	require.NoError(t, a.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, (&app.App{}).Close())
}

func TestOpen_NoDatabaseURL(t *testing.T) {
	cfg := config.Default()
	cfg.Database.URL = ""

	_, err := app.Open(context.Background(), cfg)
	assert.ErrorIs(t, err, db.ErrNoDSN)
}
