package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xmer/fitgirl-rss-reader/app/catalog"
	"github.com/xmer/fitgirl-rss-reader/app/messaging"
	"github.com/xmer/fitgirl-rss-reader/app/release"
)

type SeenClearer interface {
	Clear(ctx context.Context) (int64, error)
}

type Catalog interface {
	Lookup(ctx context.Context, name string) *catalog.Entry
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// ResetService clears the dedup state on request.
type ResetService struct {
	seen        SeenClearer
	serviceName string
}

func NewResetService(seen SeenClearer, serviceName string) *ResetService {
	return &ResetService{seen: seen, serviceName: serviceName}
}

// HandleReset clears the seen-set unless the message targets another service.
// It returns the number of cleared ids.
func (s *ResetService) HandleReset(ctx context.Context, msg ResetMessage) (int64, error) {
	target := TargetAll
	if msg.Target != nil {
		target = *msg.Target
	}

	if target != s.serviceName && target != TargetAll {
		slog.Debug("Reset message not for this service, skipping",
			"source", msg.Source, "target", target, "expected_target", s.serviceName)
		return 0, nil
	}

	slog.Info("Processing reset request", "source", msg.Source, "target", target, "reason", deref(msg.Reason))

	cleared, err := s.seen.Clear(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to reset seen state: %w", err)
	}

	slog.Info("Reset complete", "source", msg.Source, "cleared_count", cleared, "reason", deref(msg.Reason))

	return cleared, nil
}

// HandleMessage decodes and handles a reset message body.
func (s *ResetService) HandleMessage(ctx context.Context, body []byte) error {
	msg, err := DecodeReset(body, s.serviceName)
	if err != nil {
		return err
	}
	_, err = s.HandleReset(ctx, msg)
	return err
}

// RefreshService re-runs a catalog lookup under a corrected name.
type RefreshService struct {
	catalog   Catalog
	publisher Publisher
	now       func() time.Time
}

func NewRefreshService(catalog Catalog, publisher Publisher) *RefreshService {
	return &RefreshService{catalog: catalog, publisher: publisher, now: time.Now}
}

// HandleRefresh publishes the lookup result for the game, including a nil
// result.
func (s *RefreshService) HandleRefresh(ctx context.Context, msg RefreshMessage) (release.EnrichedMessage, error) {
	slog.Info("Processing steam refresh request", "game_id", msg.GameID, "corrected_name", msg.CorrectedName)

	entry := s.catalog.Lookup(ctx, msg.CorrectedName)
	enriched := release.NewEnrichedMessage(msg.GameID, entry, s.now())

	if err := s.publisher.Publish(ctx, messaging.RoutingKeyEnriched, enriched); err != nil {
		return enriched, fmt.Errorf("failed to publish enriched message: %w", err)
	}

	slog.Info("Steam refresh completed", "game_id", msg.GameID, "steam_found", entry != nil)

	return enriched, nil
}

// HandleMessage decodes and handles a refresh message body.
func (s *RefreshService) HandleMessage(ctx context.Context, body []byte) error {
	msg, err := DecodeRefresh(body)
	if err != nil {
		return err
	}
	_, err = s.HandleRefresh(ctx, msg)
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
