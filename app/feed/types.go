package feed

import (
	"time"
)

// Item is one feed entry that passed the category filter.
type Item struct {
	ID          string // dedup key derived from the entry guid
	TitleRaw    string
	URL         string
	PublishedAt time.Time
	ContentHTML string
	Tags        []string
}
