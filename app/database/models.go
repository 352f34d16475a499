package database

import (
	"encoding/json"
	"time"
)

// Release is a journalled copy of a published release.
type Release struct {
	GUID        string          `json:"guid"`
	GameName    string          `json:"game_name"`
	TitleRaw    string          `json:"title_raw"`
	Version     string          `json:"version,omitempty"`
	SteamAppID  *int64          `json:"steam_app_id,omitempty"`
	PublishedAt time.Time       `json:"published_at"`
	RecordedAt  time.Time       `json:"recorded_at"`
	Payload     json.RawMessage `json:"payload"`
}

type Stats struct {
	Total        int        `json:"total"`
	WithCatalog  int        `json:"with_catalog"`
	LastRecorded *time.Time `json:"last_recorded,omitempty"`
}
