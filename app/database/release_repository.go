package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xmer/fitgirl-rss-reader/app/release"
)

// recordedLayout is fixed width so recorded_at sorts lexically.
const recordedLayout = "2006-01-02T15:04:05.000000Z07:00"

// ReleaseRepository handles database operations for journalled releases
type ReleaseRepository struct {
	db  *DB
	now func() time.Time
}

func NewReleaseRepository(db *DB) *ReleaseRepository {
	return &ReleaseRepository{db: db, now: time.Now}
}

// RecordRelease stores a published release. Re-publishing the same guid
// replaces the earlier record.
func (r *ReleaseRepository) RecordRelease(ctx context.Context, rel release.Release) error {
	payload, err := json.Marshal(rel)
	if err != nil {
		return fmt.Errorf("failed to encode release: %w", err)
	}

	var appID sql.NullInt64
	if rel.Steam != nil {
		appID = sql.NullInt64{Int64: rel.Steam.ID, Valid: true}
	}

	var version sql.NullString
	if rel.Version != "" {
		version = sql.NullString{String: rel.Version, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO releases (guid, game_name, title_raw, version, steam_app_id, published_at, recorded_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (guid) DO UPDATE SET
			game_name = excluded.game_name,
			title_raw = excluded.title_raw,
			version = excluded.version,
			steam_app_id = excluded.steam_app_id,
			published_at = excluded.published_at,
			recorded_at = excluded.recorded_at,
			payload = excluded.payload
	`, rel.GUID, rel.GameName, rel.TitleRaw, version, appID, rel.PubDate,
		r.now().UTC().Format(recordedLayout), string(payload))
	if err != nil {
		return fmt.Errorf("failed to record release: %w", err)
	}

	return nil
}

// GetRecentReleases returns up to limit releases, most recently recorded first.
func (r *ReleaseRepository) GetRecentReleases(ctx context.Context, limit int) ([]Release, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT guid, game_name, title_raw, COALESCE(version, ''), steam_app_id, published_at, recorded_at, payload
		FROM releases
		ORDER BY recorded_at DESC, guid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query releases: %w", err)
	}
	defer rows.Close()

	releases := make([]Release, 0, limit)
	for rows.Next() {
		var (
			rel                     Release
			appID                   sql.NullInt64
			publishedAt, recordedAt string
			payload                 string
		)

		if err := rows.Scan(&rel.GUID, &rel.GameName, &rel.TitleRaw, &rel.Version, &appID, &publishedAt, &recordedAt, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan release: %w", err)
		}

		if appID.Valid {
			id := appID.Int64
			rel.SteamAppID = &id
		}
		if rel.PublishedAt, err = time.Parse(time.RFC3339, publishedAt); err != nil {
			return nil, fmt.Errorf("invalid published_at for %s: %w", rel.GUID, err)
		}
		if rel.RecordedAt, err = time.Parse(time.RFC3339, recordedAt); err != nil {
			return nil, fmt.Errorf("invalid recorded_at for %s: %w", rel.GUID, err)
		}
		rel.Payload = json.RawMessage(payload)

		releases = append(releases, rel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate releases: %w", err)
	}

	return releases, nil
}

func (r *ReleaseRepository) GetStats(ctx context.Context) (Stats, error) {
	var (
		stats        Stats
		lastRecorded sql.NullString
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(steam_app_id), MAX(recorded_at)
		FROM releases
	`).Scan(&stats.Total, &stats.WithCatalog, &lastRecorded)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to get release stats: %w", err)
	}

	if lastRecorded.Valid {
		t, err := time.Parse(time.RFC3339, lastRecorded.String)
		if err != nil {
			return Stats{}, fmt.Errorf("invalid recorded_at: %w", err)
		}
		stats.LastRecorded = &t
	}

	return stats, nil
}
