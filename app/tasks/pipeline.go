package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xmer/fitgirl-rss-reader/app/feed"
	"github.com/xmer/fitgirl-rss-reader/app/messaging"
	"github.com/xmer/fitgirl-rss-reader/app/metrics"
	"github.com/xmer/fitgirl-rss-reader/app/parser"
	"github.com/xmer/fitgirl-rss-reader/app/release"
)

// Pipeline runs one poll cycle: fetch, drop seen items, parse, enrich,
// publish and mark seen.
type Pipeline struct {
	feed      FeedSource
	seen      SeenStore
	catalog   Catalog
	failures  FailureRecorder
	publisher Publisher
	journal   Journal
}

// NewPipeline wires a pipeline. journal may be nil.
func NewPipeline(feed FeedSource, seen SeenStore, catalog Catalog, failures FailureRecorder, publisher Publisher, journal Journal) *Pipeline {
	return &Pipeline{
		feed:      feed,
		seen:      seen,
		catalog:   catalog,
		failures:  failures,
		publisher: publisher,
		journal:   journal,
	}
}

func (p *Pipeline) RunCycle(ctx context.Context) CycleSummary {
	var summary CycleSummary

	items, err := p.feed.Fetch(ctx)
	if err != nil {
		slog.Error("Poll cycle failed", "url", p.feed.URL(), "error", err)
		summary.Error = err.Error()
		return summary
	}
	summary.Fetched = len(items)

	newItems := p.filterNew(ctx, items)
	summary.New = len(newItems)

	if len(newItems) == 0 {
		slog.Debug("No new releases found")
		return summary
	}

	slog.Info("Processing new releases", "count", len(newItems))

	for _, item := range newItems {
		if err := ctx.Err(); err != nil {
			slog.Warn("Poll cycle interrupted", "remaining", len(newItems)-summary.Published-summary.Failed, "error", err)
			break
		}

		rel, err := p.processItem(ctx, item)
		if err != nil {
			summary.Failed++
			metrics.RecordItem("failed")
			slog.Error("Failed to process release", "guid", item.ID, "title", item.TitleRaw, "error", err)
			continue
		}

		summary.Published++
		if rel.Steam == nil {
			summary.NotFound++
		}
		metrics.RecordItem("published")
		slog.Info("Published release", "guid", rel.GUID, "game_name", rel.GameName, "steam_found", rel.Steam != nil)
	}

	return summary
}

// filterNew keeps the items not yet seen, in feed order. Items whose seen
// state cannot be read are skipped until the next cycle.
func (p *Pipeline) filterNew(ctx context.Context, items []feed.Item) []feed.Item {
	newItems := make([]feed.Item, 0, len(items))
	for _, item := range items {
		isNew, err := p.seen.IsNew(ctx, item.ID)
		if err != nil {
			metrics.RecordItem("skipped")
			slog.Warn("Failed to check seen state, skipping item", "guid", item.ID, "error", err)
			continue
		}
		if isNew {
			newItems = append(newItems, item)
		}
	}
	return newItems
}

func (p *Pipeline) processItem(ctx context.Context, item feed.Item) (release.Release, error) {
	title := parser.ParseTitle(item.TitleRaw)
	content := parser.ParseContent(item.ContentHTML)

	entry := p.catalog.Lookup(ctx, title.Name)
	if entry == nil {
		if err := p.failures.Record(item.TitleRaw, title.Name); err != nil {
			slog.Warn("Failed to log enrichment failure", "guid", item.ID, "error", err)
		}
	}

	rel := release.Build(item, title, content, entry)

	if err := p.publisher.Publish(ctx, messaging.RoutingKeyRelease, rel); err != nil {
		return rel, fmt.Errorf("failed to publish release: %w", err)
	}

	if err := p.seen.MarkSeen(ctx, item.ID); err != nil {
		slog.Error("Failed to mark release as seen", "guid", item.ID, "error", err)
	}

	if p.journal != nil {
		if err := p.journal.RecordRelease(ctx, rel); err != nil {
			slog.Warn("Failed to record release in journal", "guid", item.ID, "error", err)
		}
	}

	return rel, nil
}
