package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"newsdesk/internal/config"
	"newsdesk/internal/usecase/feed"
)

// Feed check statuses.
const (
	statusOK         = "OK"
	statusFetchError = "FETCH_ERROR"
	statusEmpty      = "EMPTY"
	statusNoDates    = "NO_DATES"
)

// feedDiagnostic is the check result for one language feed.
type feedDiagnostic struct {
	Language     string `json:"language"`
	URL          string `json:"url"`
	Status       string `json:"status"`
	ItemCount    int    `json:"item_count"`
	BadDates     int    `json:"bad_dates"`
	LatestDate   string `json:"latest_date,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	ResponseTime int64  `json:"response_time_ms"`
}

// diagnoseFeeds fetches every configured feed without storing anything.
func diagnoseFeeds(ctx context.Context, cfg *config.Config, fetcher feed.FeedFetcher) []feedDiagnostic {
	langs := cfg.EntityLanguages()
	var out []feedDiagnostic
	for _, code := range langs.Codes() {
		url := langs[code].FeedURL
		if url == "" {
			continue
		}
		d := feedDiagnostic{Language: code, URL: url}

		start := time.Now()
		items, err := fetcher.Fetch(ctx, url)
		d.ResponseTime = time.Since(start).Milliseconds()
		if err != nil {
			d.Status = statusFetchError
			d.ErrorMessage = err.Error()
			out = append(out, d)
			continue
		}

		d.ItemCount = len(items)
		var latest time.Time
		for _, item := range items {
			t, err := feed.PublishTime(item)
			if err != nil {
				d.BadDates++
				continue
			}
			if t.After(latest) {
				latest = t
			}
		}
		if !latest.IsZero() {
			d.LatestDate = latest.UTC().Format(time.RFC3339)
		}

		switch {
		case d.ItemCount == 0:
			d.Status = statusEmpty
		case d.BadDates == d.ItemCount:
			d.Status = statusNoDates
		default:
			d.Status = statusOK
		}
		out = append(out, d)
	}
	return out
}

func feedsCmd(fetcher feed.FeedFetcher) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "Fetch every configured feed and report what an import would see",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			results := diagnoseFeeds(cmd.Context(), cfg, fetcher)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			printDiagnostics(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the results as JSON")
	return cmd
}

func printDiagnostics(w io.Writer, results []feedDiagnostic) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "LANGUAGE\tSTATUS\tITEMS\tBAD DATES\tLATEST\tTIME")
	for _, d := range results {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%dms\n",
			d.Language, d.Status, d.ItemCount, d.BadDates, d.LatestDate, d.ResponseTime)
	}
	_ = tw.Flush()
	for _, d := range results {
		if d.ErrorMessage != "" {
			_, _ = fmt.Fprintf(w, "%s: %s\n", d.Language, d.ErrorMessage)
		}
	}
}
