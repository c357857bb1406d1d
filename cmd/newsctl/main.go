// Command newsctl runs newsdesk maintenance tasks from the shell: feed
// imports, outbox reindexing, index creation and slug previews.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"newsdesk/internal/app"
	"newsdesk/internal/config"
	"newsdesk/internal/domain/entity"
	"newsdesk/internal/domain/slug"
	"newsdesk/internal/infra/fetcher"
	"newsdesk/internal/infra/scraper"
	"newsdesk/internal/observability/logging"
	"newsdesk/internal/usecase/feed"
	"newsdesk/internal/usecase/ingest"
)

// backend is the part of the App the commands drive.
type backend interface {
	ImportLanguage(ctx context.Context, code string) (*feed.Report, error)
	ImportAll(ctx context.Context) ([]*feed.Report, error)
	ReindexPending(ctx context.Context, limit int) (*ingest.ReindexStats, error)
	EnsureIndices(ctx context.Context) error
	Close() error
}

// opener connects a backend for the loaded configuration.
type opener func(ctx context.Context, cfg *config.Config) (backend, error)

type appBackend struct {
	*app.App
}

func (b appBackend) ImportLanguage(ctx context.Context, code string) (*feed.Report, error) {
	return b.Feeds.ImportLanguage(ctx, code)
}

func (b appBackend) ImportAll(ctx context.Context) ([]*feed.Report, error) {
	return b.Feeds.ImportAll(ctx)
}

func (b appBackend) ReindexPending(ctx context.Context, limit int) (*ingest.ReindexStats, error) {
	return b.Pipeline.ReindexPending(ctx, limit)
}

func openApp(ctx context.Context, cfg *config.Config) (backend, error) {
	a, err := app.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return appBackend{a}, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := fetcher.NewHTTPClient(fetcher.ClientConfig{Timeout: 30 * time.Second, MaxRedirects: 5})
	if err := rootCmd(openApp, scraper.NewRSSFetcher(client)).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd(open opener, feeds feed.FeedFetcher) *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "newsctl",
		Short:         "Newsdesk maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// logs go to stderr so command output stays parseable
			logger := logging.New(cmd.ErrOrStderr(), os.Getenv("LOG_FORMAT"), logging.ParseLevel(logLevel))
			slog.SetDefault(logger)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML configuration (default $NEWSDESK_CONFIG or "+config.DefaultPath+")")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	withBackend := func(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, b backend) error) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		b, err := open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = b.Close() }()
		return fn(cmd.Context(), cfg, b)
	}

	cmd.AddCommand(
		importCmd(withBackend),
		reindexCmd(withBackend),
		indicesCmd(withBackend),
		slugCmd(),
		feedsCmd(feeds),
	)
	return cmd
}

type runFunc func(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, b backend) error) error

func importCmd(run runFunc) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "import [language|all]",
		Short: "Import language feeds into the store and index",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "all"
			if len(args) == 1 {
				target = strings.ToLower(strings.TrimSpace(args[0]))
			}
			return run(cmd, func(ctx context.Context, _ *config.Config, b backend) error {
				ctx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()

				if target != "all" {
					report, err := b.ImportLanguage(ctx, target)
					if report != nil {
						printReports(cmd.OutOrStdout(), []*feed.Report{report})
					}
					return err
				}
				reports, err := b.ImportAll(ctx)
				printReports(cmd.OutOrStdout(), reports)
				return err
			})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall import deadline")
	return cmd
}

func printReports(w io.Writer, reports []*feed.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "LANGUAGE\tITEMS\tINSERTED\tDUPLICATES\tFAILED\tUNINDEXED\tDURATION")
	for _, r := range reports {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			r.Language, r.FeedItems, r.Inserted, r.Duplicates, r.Failed, r.IndexFailures,
			r.Duration.Round(time.Millisecond))
	}
	_ = tw.Flush()

	for _, r := range reports {
		for _, f := range r.Failures {
			_, _ = fmt.Fprintf(w, "%s: %q: %v\n", r.Language, f.Title, f.Err)
		}
	}
}

func reindexCmd(run runFunc) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Retry index writes for entries that are stored but not searchable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, cfg *config.Config, b backend) error {
				if limit <= 0 {
					limit = cfg.Worker.ReindexBatch
				}
				stats, err := b.ReindexPending(ctx, limit)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "pending=%d indexed=%d failed=%d\n",
					stats.Pending, stats.Indexed, stats.Failed)
				return err
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "entries to process (default worker.reindex_batch)")
	return cmd
}

func indicesCmd(run runFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "indices",
		Short: "Create the per-language search indices that do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, cfg *config.Config, b backend) error {
				if err := b.EnsureIndices(ctx); err != nil {
					return err
				}
				for _, code := range cfg.EntityLanguages().Codes() {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), entity.IndexName(cfg.Collection, code))
				}
				return nil
			})
		},
	}
}

func slugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slug <title>",
		Short: "Print the entry id a title would get",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := slug.Make(strings.Join(args, " "))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}
}
