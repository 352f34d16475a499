package release

import (
	"time"

	"github.com/xmer/fitgirl-rss-reader/app/catalog"
	"github.com/xmer/fitgirl-rss-reader/app/feed"
	"github.com/xmer/fitgirl-rss-reader/app/parser"
)

// TimeFormat is RFC 3339 in UTC with millisecond precision.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Release is the record published for every newly observed feed item.
type Release struct {
	GUID         string         `json:"guid"`
	TitleRaw     string         `json:"title_raw"`
	GameName     string         `json:"game_name"`
	Version      string         `json:"version,omitempty"`
	DLCsIncluded bool           `json:"dlcs_included"`
	DLCCount     *int           `json:"dlc_count,omitempty"`
	URL          string         `json:"fitgirl_url"`
	PubDate      string         `json:"pub_date"`
	SizeOriginal string         `json:"size_original"`
	SizeRepack   string         `json:"size_repack"`
	Genres       []string       `json:"genres,omitempty"`
	MagnetLink   string         `json:"magnet_link,omitempty"`
	Steam        *catalog.Entry `json:"steam"`
}

// EnrichedMessage answers a refresh request with whatever the catalog
// returned for the corrected name.
type EnrichedMessage struct {
	GameID    int64          `json:"gameId"`
	Steam     *catalog.Entry `json:"steam"`
	Timestamp string         `json:"timestamp"`
}

// Build assembles a release from its parsed parts. entry may be nil.
func Build(item feed.Item, title parser.Title, content parser.Content, entry *catalog.Entry) Release {
	r := Release{
		GUID:         item.ID,
		TitleRaw:     item.TitleRaw,
		GameName:     title.Name,
		Version:      title.Version,
		DLCsIncluded: title.HasAddOns,
		DLCCount:     title.AddOnCount,
		URL:          item.URL,
		PubDate:      FormatTime(item.PublishedAt),
		SizeOriginal: content.OriginalSize,
		SizeRepack:   content.RepackSize,
		MagnetLink:   content.MagnetURI,
		Steam:        entry,
	}

	if len(item.Tags) > 0 {
		r.Genres = item.Tags
	}

	return r
}

func NewEnrichedMessage(gameID int64, entry *catalog.Entry, now time.Time) EnrichedMessage {
	return EnrichedMessage{
		GameID:    gameID,
		Steam:     entry,
		Timestamp: FormatTime(now),
	}
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}
