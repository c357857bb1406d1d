// Package config loads the newsdesk configuration: a YAML file, then a
// .env file when present, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"newsdesk/internal/domain/entity"
	pkgconfig "newsdesk/internal/pkg/config"
	"newsdesk/pkg/security/sanitize"
)

// DefaultPath is read when neither an explicit path nor NEWSDESK_CONFIG is set.
const DefaultPath = "config.yaml"

// Config is the complete application configuration.
type Config struct {
	SiteTitle   string `yaml:"site_title"`
	NewsPerPage int    `yaml:"news_per_page"`
	Collection  string `yaml:"collection"`

	Languages map[string]LanguageConfig `yaml:"languages"`

	// AllowedTags maps tag -> attribute -> allowed URL domains. An empty
	// domain list allows any value.
	AllowedTags map[string]map[string][]string `yaml:"allowed_tags"`

	Assets        AssetsConfig        `yaml:"assets"`
	Database      DatabaseConfig      `yaml:"database"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Search        SearchConfig        `yaml:"search"`
	Enrich        EnrichConfig        `yaml:"enrich"`
	Worker        WorkerConfig        `yaml:"worker"`
	HTTP          HTTPConfig          `yaml:"http"`
	Tracing       TracingConfig       `yaml:"tracing"`
}

// LanguageConfig describes one language partition.
type LanguageConfig struct {
	Name     string `yaml:"name"`
	Analyzer string `yaml:"analyzer"`
	FeedURL  string `yaml:"feed_url"`
}

type AssetsConfig struct {
	Dir            string        `yaml:"dir"`
	RemoteTimeout  time.Duration `yaml:"remote_timeout"`
	MaxBytes       int64         `yaml:"max_bytes"`
	DenyPrivateIPs bool          `yaml:"deny_private_ips"`
	RatePerSecond  float64       `yaml:"rate_per_second"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type ElasticsearchConfig struct {
	Addresses []string `yaml:"addresses"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
}

type SearchConfig struct {
	MaxResults int `yaml:"max_results"`
}

type EnrichConfig struct {
	Enabled   bool `yaml:"enabled"`
	Threshold int  `yaml:"threshold"`
}

// WorkerConfig seeds the worker settings; the worker applies its own
// environment overrides on top.
type WorkerConfig struct {
	CronSchedule  string        `yaml:"cron_schedule"`
	Timezone      string        `yaml:"timezone"`
	ImportTimeout time.Duration `yaml:"import_timeout"`
	ReindexBatch  int           `yaml:"reindex_batch"`
	HealthPort    int           `yaml:"health_port"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// MaxUploadBytes bounds a multipart submission, image included.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
	// WriteLimit requests per WriteWindow are allowed per client on
	// POST /entries and POST /imports.
	WriteLimit  int           `yaml:"write_limit"`
	WriteWindow time.Duration `yaml:"write_window"`
	// TrustProxy reads the client address from X-Forwarded-For.
	TrustProxy bool `yaml:"trust_proxy"`
}

type TracingConfig struct {
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Default returns the built-in configuration: the point.md feeds in
// Russian and Romanian.
func Default() *Config {
	return &Config{
		SiteTitle:   "Newsdesk",
		NewsPerPage: 20,
		Collection:  "news",
		Languages: map[string]LanguageConfig{
			"ru": {Name: "russian", FeedURL: "https://point.md/ru/rss/novosti/"},
			"ro": {Name: "romanian", FeedURL: "https://point.md/ro/rss/noutati/"},
		},
		AllowedTags: sanitize.DefaultPolicy(),
		Assets: AssetsConfig{
			Dir:            "static/images",
			RemoteTimeout:  15 * time.Second,
			MaxBytes:       10 * 1024 * 1024,
			DenyPrivateIPs: true,
			RatePerSecond:  5,
		},
		Elasticsearch: ElasticsearchConfig{Addresses: []string{"http://localhost:9200"}},
		Search:        SearchConfig{MaxResults: 100},
		Enrich:        EnrichConfig{Enabled: false, Threshold: 500},
		Worker: WorkerConfig{
			CronSchedule:  "*/30 * * * *",
			Timezone:      "UTC",
			ImportTimeout: 10 * time.Minute,
			ReindexBatch:  100,
			HealthPort:    9091,
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  12 * 1024 * 1024,
			WriteLimit:      30,
			WriteWindow:     time.Minute,
		},
		Tracing: TracingConfig{SampleRatio: 0.1},
	}
}

// Load builds the configuration. path falls back to NEWSDESK_CONFIG and then
// DefaultPath; a missing file at a defaulted path is not an error. Values
// from .env are loaded into the environment without overriding variables
// that are already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = pkgconfig.LoadEnvString("NEWSDESK_CONFIG", DefaultPath)
		explicit = os.Getenv("NEWSDESK_CONFIG") != ""
	}

	cfg, err := LoadFile(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		slog.Info("config file not found, using defaults", slog.String("path", path))
		cfg = Default()
	default:
		return nil, err
	}

	cfg.ApplyEnv(slog.Default())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes a YAML file over Default. Unknown keys are rejected.
func LoadFile(path string) (*Config, error) {
	// #nosec G304 -- path comes from the operator (flag or env), not a request
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg := Default()
	// a languages or allowed_tags section replaces the default wholesale
	cfg.Languages = nil
	cfg.AllowedTags = nil

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Languages == nil {
		cfg.Languages = Default().Languages
	}
	if cfg.AllowedTags == nil {
		cfg.AllowedTags = sanitize.DefaultPolicy()
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables. Invalid values keep the current
// setting and are logged.
func (c *Config) ApplyEnv(logger *slog.Logger) {
	c.Database.URL = pkgconfig.LoadEnvString("DATABASE_URL", c.Database.URL)
	c.Elasticsearch.Addresses = pkgconfig.LoadEnvList("ELASTICSEARCH_URL", c.Elasticsearch.Addresses)
	c.Elasticsearch.Username = pkgconfig.LoadEnvString("ELASTICSEARCH_USERNAME", c.Elasticsearch.Username)
	c.Elasticsearch.Password = pkgconfig.LoadEnvString("ELASTICSEARCH_PASSWORD", c.Elasticsearch.Password)
	c.HTTP.Addr = pkgconfig.LoadEnvString("HTTP_ADDR", c.HTTP.Addr)
	c.Assets.Dir = pkgconfig.LoadEnvString("ASSETS_DIR", c.Assets.Dir)
	c.SiteTitle = pkgconfig.LoadEnvString("SITE_TITLE", c.SiteTitle)

	perPage := pkgconfig.LoadEnvInt("NEWS_PER_PAGE", c.NewsPerPage, func(v int) error {
		return pkgconfig.ValidateIntRange(v, 1, 100)
	})
	perPage.Report(logger, nil, "news_per_page")
	c.NewsPerPage = perPage.Value

	maxResults := pkgconfig.LoadEnvInt("SEARCH_MAX_RESULTS", c.Search.MaxResults, func(v int) error {
		return pkgconfig.ValidateIntRange(v, 1, 10000)
	})
	maxResults.Report(logger, nil, "search_max_results")
	c.Search.MaxResults = maxResults.Value

	enrich := pkgconfig.LoadEnvBool("ENRICH_ENABLED", c.Enrich.Enabled)
	enrich.Report(logger, nil, "enrich_enabled")
	c.Enrich.Enabled = enrich.Value

	threshold := pkgconfig.LoadEnvInt("ENRICH_THRESHOLD", c.Enrich.Threshold, func(v int) error {
		return pkgconfig.ValidateIntRange(v, 0, 100000)
	})
	threshold.Report(logger, nil, "enrich_threshold")
	c.Enrich.Threshold = threshold.Value

	ratio := pkgconfig.LoadEnvFloat("TRACING_SAMPLE_RATIO", c.Tracing.SampleRatio, pkgconfig.ValidateRatio)
	ratio.Report(logger, nil, "tracing_sample_ratio")
	c.Tracing.SampleRatio = ratio.Value
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(field string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}

	add("news_per_page", pkgconfig.ValidateIntRange(c.NewsPerPage, 1, 100))
	if strings.TrimSpace(c.Collection) == "" {
		add("collection", errors.New("cannot be empty"))
	}
	if len(c.Languages) == 0 {
		add("languages", errors.New("at least one language is required"))
	}
	for code, lang := range c.Languages {
		add("languages."+code, entity.ValidateLanguageCode(code))
		if lang.Name == "" {
			add("languages."+code+".name", errors.New("cannot be empty"))
		}
		if lang.FeedURL != "" {
			add("languages."+code+".feed_url", entity.ValidateFeedURL(lang.FeedURL))
		}
	}
	if len(c.AllowedTags) == 0 {
		add("allowed_tags", errors.New("at least one tag is required"))
	}
	if strings.TrimSpace(c.Assets.Dir) == "" {
		add("assets.dir", errors.New("cannot be empty"))
	}
	add("assets.remote_timeout", pkgconfig.ValidatePositiveDuration(c.Assets.RemoteTimeout))
	if c.Assets.MaxBytes <= 0 {
		add("assets.max_bytes", fmt.Errorf("must be positive, got %d", c.Assets.MaxBytes))
	}
	if len(c.Elasticsearch.Addresses) == 0 {
		add("elasticsearch.addresses", errors.New("at least one address is required"))
	}
	for _, addr := range c.Elasticsearch.Addresses {
		add("elasticsearch.addresses", pkgconfig.ValidateHTTPURL(addr))
	}
	add("search.max_results", pkgconfig.ValidateIntRange(c.Search.MaxResults, 1, 10000))
	if c.Enrich.Threshold < 0 {
		add("enrich.threshold", fmt.Errorf("must be non-negative, got %d", c.Enrich.Threshold))
	}
	add("worker.cron_schedule", pkgconfig.ValidateCronSchedule(c.Worker.CronSchedule))
	add("worker.timezone", pkgconfig.ValidateTimezone(c.Worker.Timezone))
	add("worker.import_timeout", pkgconfig.ValidatePositiveDuration(c.Worker.ImportTimeout))
	add("worker.reindex_batch", pkgconfig.ValidateIntRange(c.Worker.ReindexBatch, 1, 10000))
	add("worker.health_port", pkgconfig.ValidateIntRange(c.Worker.HealthPort, 1024, 65535))
	if c.HTTP.Addr == "" {
		add("http.addr", errors.New("cannot be empty"))
	}
	add("http.read_timeout", pkgconfig.ValidatePositiveDuration(c.HTTP.ReadTimeout))
	add("http.shutdown_timeout", pkgconfig.ValidatePositiveDuration(c.HTTP.ShutdownTimeout))
	if c.HTTP.MaxUploadBytes <= 0 {
		add("http.max_upload_bytes", fmt.Errorf("must be positive, got %d", c.HTTP.MaxUploadBytes))
	}
	add("http.write_limit", pkgconfig.ValidateIntRange(c.HTTP.WriteLimit, 1, 100000))
	add("http.write_window", pkgconfig.ValidatePositiveDuration(c.HTTP.WriteWindow))
	add("tracing.sample_ratio", pkgconfig.ValidateRatio(c.Tracing.SampleRatio))

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// EntityLanguages converts the languages section. Analyzer defaults to Name.
func (c *Config) EntityLanguages() entity.Languages {
	langs := make(entity.Languages, len(c.Languages))
	for code, l := range c.Languages {
		analyzer := l.Analyzer
		if analyzer == "" {
			analyzer = l.Name
		}
		langs[code] = entity.Language{
			Code:     code,
			Name:     l.Name,
			Analyzer: analyzer,
			FeedURL:  l.FeedURL,
		}
	}
	return langs
}

// SanitizePolicy returns allowed_tags as a sanitizer whitelist.
func (c *Config) SanitizePolicy() sanitize.Policy {
	return sanitize.Policy(c.AllowedTags).Clone()
}
