package feed

import (
	"strings"

	"github.com/mmcdole/gofeed"
)

// DefaultCategory is the tag that marks a release worth publishing.
const DefaultCategory = "Lossless Repack"

type Filterer struct {
	category string
}

func NewFilterer(category string) *Filterer {
	if category == "" {
		category = DefaultCategory
	}
	return &Filterer{category: category}
}

// Run keeps the entries tagged with the configured category, in feed order.
func (f *Filterer) Run(entries []*gofeed.Item) []*gofeed.Item {
	kept := make([]*gofeed.Item, 0, len(entries))
	for _, entry := range entries {
		if entry != nil && f.matchesCategory(entry.Categories) {
			kept = append(kept, entry)
		}
	}
	return kept
}

func (f *Filterer) matchesCategory(tags []string) bool {
	for _, tag := range tags {
		if strings.EqualFold(tag, f.category) {
			return true
		}
	}
	return false
}
