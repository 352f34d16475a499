package tasks

import (
	"context"

	"github.com/xmer/fitgirl-rss-reader/app/catalog"
	"github.com/xmer/fitgirl-rss-reader/app/feed"
	"github.com/xmer/fitgirl-rss-reader/app/release"
)

type FeedSource interface {
	Fetch(ctx context.Context) ([]feed.Item, error)
	URL() string
}

// SeenStore is the dedup gate consulted before enrichment and updated after
// a successful publish.
type SeenStore interface {
	IsNew(ctx context.Context, id string) (bool, error)
	MarkSeen(ctx context.Context, id string) error
}

type Catalog interface {
	Lookup(ctx context.Context, name string) *catalog.Entry
}

type FailureRecorder interface {
	Record(feedTitle, parsedName string) error
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Journal keeps a local history of published releases. Optional.
type Journal interface {
	RecordRelease(ctx context.Context, r release.Release) error
}

type Cycle interface {
	RunCycle(ctx context.Context) CycleSummary
}

var (
	_ Cycle      = (*Pipeline)(nil)
	_ FeedSource = (*feed.Reader)(nil)
	_ Catalog    = (*catalog.Client)(nil)
)
