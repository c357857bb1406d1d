// Package app assembles the newsdesk components from a Config. The API
// server, the worker and newsctl share this wiring.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"newsdesk/internal/config"
	"newsdesk/internal/domain/entity"
	"newsdesk/internal/infra/adapter/persistence/postgres"
	"newsdesk/internal/infra/assets"
	"newsdesk/internal/infra/db"
	"newsdesk/internal/infra/fetcher"
	"newsdesk/internal/infra/scraper"
	"newsdesk/internal/infra/search/elasticsearch"
	"newsdesk/internal/repository"
	"newsdesk/internal/resilience/circuitbreaker"
	entryUC "newsdesk/internal/usecase/entry"
	"newsdesk/internal/usecase/feed"
	"newsdesk/internal/usecase/ingest"
	"newsdesk/internal/usecase/search"
	"newsdesk/pkg/security/sanitize"
)

// feedTimeout bounds one feed download.
const feedTimeout = 30 * time.Second

// App holds the wired services.
type App struct {
	Config    *config.Config
	Languages entity.Languages

	DB      *sql.DB
	ES      *es.Client
	Index   *elasticsearch.Index
	Entries repository.EntryRepository
	Assets  *assets.Store

	Pipeline *ingest.Service
	Feeds    *feed.Service
	Search   *search.Service
	Reader   *entryUC.Service
}

// Open connects to Postgres and Elasticsearch, migrates the schema and
// builds the App.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	database, err := db.Open(ctx, cfg.Database.URL, db.ConnectionConfigFromEnv())
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(ctx, database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	esCfg := elasticsearch.DefaultConfig()
	esCfg.Addresses = cfg.Elasticsearch.Addresses
	esCfg.Username = cfg.Elasticsearch.Username
	esCfg.Password = cfg.Elasticsearch.Password
	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	a, err := Build(cfg, database, client)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	return a, nil
}

// Build wires the services around already opened connections.
func Build(cfg *config.Config, database *sql.DB, client *es.Client) (*App, error) {
	langs := cfg.EntityLanguages()

	store, err := assets.NewStore(cfg.Assets.Dir, cfg.Assets.MaxBytes)
	if err != nil {
		return nil, err
	}
	remoteCfg := assets.DefaultRemoteConfig()
	remoteCfg.Timeout = cfg.Assets.RemoteTimeout
	remoteCfg.MaxBytes = cfg.Assets.MaxBytes
	remoteCfg.DenyPrivateIPs = cfg.Assets.DenyPrivateIPs
	remoteCfg.RatePerSecond = cfg.Assets.RatePerSecond
	remote := assets.NewRemoteFetcher(store, remoteCfg)

	entries := postgres.NewEntryRepo(circuitbreaker.GuardDB(database))
	index := elasticsearch.New(client, cfg.Search.MaxResults)

	pipeline := ingest.NewService(entries, index, sanitize.New(cfg.SanitizePolicy()), store, remote, ingest.Config{
		Collection: cfg.Collection,
		Languages:  langs,
	})

	enrichCfg := fetcher.DefaultConfig()
	enrichCfg.Enabled = cfg.Enrich.Enabled
	enrichCfg.Threshold = cfg.Enrich.Threshold
	enrichCfg.DenyPrivateIPs = cfg.Assets.DenyPrivateIPs
	if err := enrichCfg.Validate(); err != nil {
		return nil, fmt.Errorf("enrich config: %w", err)
	}
	var enricher feed.ContentFetcher
	if enrichCfg.Enabled {
		enricher = fetcher.NewReadabilityFetcher(enrichCfg)
	}

	feedClient := fetcher.NewHTTPClient(fetcher.ClientConfig{Timeout: feedTimeout, MaxRedirects: 5})
	feeds := feed.NewService(langs, scraper.NewRSSFetcher(feedClient), pipeline, enricher)

	return &App{
		Config:    cfg,
		Languages: langs,
		DB:        database,
		ES:        client,
		Index:     index,
		Entries:   entries,
		Assets:    store,
		Pipeline:  pipeline,
		Feeds:     feeds,
		Search:    search.NewService(index, langs, cfg.Collection, search.WithMaxResults(cfg.Search.MaxResults)),
		Reader:    &entryUC.Service{Repo: entries, Languages: langs},
	}, nil
}

// PingSearch checks the Elasticsearch cluster.
func (a *App) PingSearch(ctx context.Context) error {
	return elasticsearch.Ping(ctx, a.ES)
}

// EnsureIndices creates the per-language indices that do not exist yet.
func (a *App) EnsureIndices(ctx context.Context) error {
	return a.Index.EnsureIndices(ctx, a.Config.Collection, a.Languages)
}

// Bootstrap pings the cluster and ensures the indices. A cluster that is
// down is logged, not fatal: entries are still stored and the outbox
// catches up once it returns.
func (a *App) Bootstrap(ctx context.Context, logger *slog.Logger) {
	if err := a.PingSearch(ctx); err != nil {
		logger.Warn("elasticsearch unavailable at startup", slog.Any("error", err))
		return
	}
	if err := a.EnsureIndices(ctx); err != nil {
		logger.Warn("failed to ensure search indices", slog.Any("error", err))
		return
	}
	logger.Info("search indices ready",
		slog.String("collection", a.Config.Collection),
		slog.Any("languages", a.Languages.Codes()))
}

// Close releases the database pool.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	if err := a.DB.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		return err
	}
	return nil
}
