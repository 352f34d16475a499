package api

import (
	"context"

	"github.com/xmer/fitgirl-rss-reader/app/cache"
	"github.com/xmer/fitgirl-rss-reader/app/control"
	"github.com/xmer/fitgirl-rss-reader/app/database"
	"github.com/xmer/fitgirl-rss-reader/app/release"
	"github.com/xmer/fitgirl-rss-reader/app/tasks"
)

type Poller interface {
	Trigger() bool
	InFlight() bool
	Skipped() int64
	LastCycle() (tasks.CycleSummary, bool)
}

type SeenState interface {
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

type ReleaseJournal interface {
	GetRecentReleases(ctx context.Context, limit int) ([]database.Release, error)
	GetStats(ctx context.Context) (database.Stats, error)
}

type ResetHandler interface {
	HandleReset(ctx context.Context, msg control.ResetMessage) (int64, error)
}

type RefreshHandler interface {
	HandleRefresh(ctx context.Context, msg control.RefreshMessage) (release.EnrichedMessage, error)
}

var (
	_ Poller         = (*tasks.Scheduler)(nil)
	_ SeenState      = (*cache.SeenSet)(nil)
	_ ReleaseJournal = (*database.ReleaseRepository)(nil)
	_ ResetHandler   = (*control.ResetService)(nil)
	_ RefreshHandler = (*control.RefreshService)(nil)
)

type Handler struct {
	poller      Poller
	seen        SeenState
	journal     ReleaseJournal
	reset       ResetHandler
	refresh     RefreshHandler
	serviceName string
	version     string
}
