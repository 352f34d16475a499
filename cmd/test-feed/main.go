// test-feed fetches the feed once and prints what the service would publish.
// Nothing is sent to the broker and the seen set is not consulted.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/xmer/fitgirl-rss-reader/app/catalog"
	"github.com/xmer/fitgirl-rss-reader/app/feed"
	"github.com/xmer/fitgirl-rss-reader/app/logging"
	"github.com/xmer/fitgirl-rss-reader/app/parser"
	"github.com/xmer/fitgirl-rss-reader/app/release"
	"github.com/xmer/fitgirl-rss-reader/app/tracker"
)

type options struct {
	FeedURL      string  `long:"url" env:"RSS_FEED_URL" default:"https://fitgirl-repacks.site/feed/" description:"Feed URL"`
	Category     string  `long:"category" env:"RSS_FEED_CATEGORY" default:"Lossless Repack" description:"Category an item must carry"`
	Limit        int     `long:"limit" default:"5" description:"Maximum number of items to process (0 = all)"`
	SkipCatalog  bool    `long:"no-enrich" description:"Skip the Steam lookup"`
	SteamBaseURL string  `long:"steam-url" env:"STEAM_API_URL" default:"https://store.steampowered.com" description:"Steam store base URL"`
	SteamRate    float64 `long:"steam-rate" env:"STEAM_RATE_LIMIT" default:"2" description:"Steam requests per second"`
	FailuresPath string  `long:"failures" env:"ENRICHMENT_FAILURES_PATH" default:"./data/enrichment-failures.jsonl" description:"Failure log path"`
	JSON         bool    `long:"json" description:"Print releases as JSON"`
	LogLevel     string  `long:"log-level" env:"LOG_LEVEL" default:"warn" description:"Log level"`
}

func main() {
	var opts options
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := logging.Setup(ctx, opts.LogLevel, "", "dev"); err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	httpClient := &http.Client{}
	reader := feed.NewReader(opts.FeedURL, httpClient, feed.NewParser(), feed.NewFilterer(opts.Category),
		"fitgirl-rss-reader/test-feed", 30*time.Second)
	steam := catalog.NewClient(opts.SteamBaseURL, httpClient, 0, opts.SteamRate)
	failures := tracker.NewFailureTracker(opts.FailuresPath)

	fmt.Printf("Fetching %s (category %q)\n", reader.URL(), opts.Category)

	items, err := reader.Fetch(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d matching items\n\n", len(items))

	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}

	var found, missing int
	for i, item := range items {
		if ctx.Err() != nil {
			break
		}

		title := parser.ParseTitle(item.TitleRaw)
		content := parser.ParseContent(item.ContentHTML)

		var entry *catalog.Entry
		if !opts.SkipCatalog {
			entry = steam.Lookup(ctx, title.Name)
			if entry == nil {
				missing++
				if err := failures.Record(item.TitleRaw, title.Name); err != nil {
					fmt.Fprintf(os.Stderr, "failure log: %v\n", err)
				}
			} else {
				found++
			}
		}

		rel := release.Build(item, title, content, entry)
		if opts.JSON {
			out, err := json.MarshalIndent(rel, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			continue
		}
		printRelease(i+1, rel)
	}

	fmt.Printf("\nProcessed %d items", len(items))
	if !opts.SkipCatalog {
		fmt.Printf(", %d found on Steam, %d not found (logged to %s)", found, missing, failures.Path())
	}
	fmt.Println()
	return nil
}

func printRelease(n int, rel release.Release) {
	fmt.Printf("%d. %s\n", n, rel.TitleRaw)
	fmt.Printf("   game:    %s\n", rel.GameName)
	if rel.Version != "" {
		fmt.Printf("   version: %s\n", rel.Version)
	}
	switch {
	case rel.DLCCount != nil:
		fmt.Printf("   dlcs:    included (%d)\n", *rel.DLCCount)
	case rel.DLCsIncluded:
		fmt.Println("   dlcs:    included")
	}
	fmt.Printf("   size:    %s -> %s\n", rel.SizeOriginal, rel.SizeRepack)
	fmt.Printf("   magnet:  %t\n", rel.MagnetLink != "")
	if rel.Steam != nil {
		fmt.Printf("   steam:   %s (%s)\n", rel.Steam.Name, rel.Steam.URL)
	}
	fmt.Println()
}
