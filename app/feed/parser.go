package feed

import (
	"bytes"
	"log/slog"
	"regexp"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/text/unicode/norm"
)

// postIDPattern matches WordPress permalinks such as https://example.com/?p=12345.
var postIDPattern = regexp.MustCompile(`[?&]p=(\d+)`)

type Parser struct {
	gofeedParser *gofeed.Parser
	now          func() time.Time
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
		now:          time.Now,
	}
}

// Run parses raw feed data into its entries. A feed without an item
// collection is a ParseError; an empty collection is not.
func (p *Parser) Run(data []byte) ([]*gofeed.Item, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Message: "failed to parse feed", Err: err}
	}

	if parsed.Items == nil {
		return nil, &ParseError{Message: "feed contains no items"}
	}

	return parsed.Items, nil
}

// Normalize maps entries to items, dropping the ones without a guid or title.
func (p *Parser) Normalize(entries []*gofeed.Item) []Item {
	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		item, ok := p.normalizeItem(entry)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items
}

func (p *Parser) normalizeItem(entry *gofeed.Item) (Item, bool) {
	if entry == nil {
		return Item{}, false
	}

	id := extractID(entry.GUID)
	if id == "" {
		slog.Warn("Skipping item without valid guid", "title", entry.Title)
		return Item{}, false
	}

	if entry.Title == "" {
		slog.Warn("Skipping item without title", "guid", id)
		return Item{}, false
	}

	item := Item{
		ID:          id,
		TitleRaw:    norm.NFC.String(entry.Title),
		URL:         entry.Link,
		ContentHTML: entry.Content,
		Tags:        append([]string{}, entry.Categories...),
	}

	switch {
	case entry.PublishedParsed != nil:
		item.PublishedAt = entry.PublishedParsed.UTC()
	case entry.UpdatedParsed != nil:
		item.PublishedAt = entry.UpdatedParsed.UTC()
	default:
		item.PublishedAt = p.now().UTC()
	}

	return item, true
}

// extractID returns the post id from a permalink guid, or the guid itself.
func extractID(guid string) string {
	if m := postIDPattern.FindStringSubmatch(guid); m != nil {
		return m[1]
	}
	return guid
}
