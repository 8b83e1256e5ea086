package feed

import (
	"time"

	"github.com/ElDuke717/my-rss-reader/internal/domain"
	"github.com/ElDuke717/my-rss-reader/pkg/datetime"
	"github.com/mmcdole/gofeed"
)

const (
	untitledFeed = "Untitled Feed"
	untitledItem = "Untitled"
)

// Parser converts raw RSS 2.0 / Atom payloads into the normalized Feed shape.
// Every item field is filled: missing optional elements get defaults rather
// than being dropped, and the item count and order always mirror the source.
type Parser struct {
	formatter *datetime.Formatter

	// now is swappable for tests; LastUpdated and pubDate fallbacks come
	// from here, not from any source-provided time.
	now func() time.Time
}

func NewParser() *Parser {
	return &Parser{
		formatter: datetime.NewFormatter(),
		now:       time.Now,
	}
}

// Parse normalizes a raw payload fetched from sourceURL. It fails only when
// the payload is not recognizable as RSS/Atom XML at all; feeds that parse
// but omit optional elements normalize with defaults.
func (p *Parser) Parse(raw []byte, sourceURL string) (*domain.Feed, error) {
	parsed, err := gofeed.NewParser().ParseString(string(raw))
	if err != nil {
		return nil, &ParseError{URL: sourceURL, Err: err}
	}

	normalizedAt := p.now().UTC().Format(time.RFC3339)

	title := parsed.Title
	if title == "" {
		title = untitledFeed
	}

	items := make([]domain.FeedItem, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		items = append(items, p.normalizeItem(item, normalizedAt))
	}

	return &domain.Feed{
		URL:         sourceURL,
		Title:       title,
		Description: parsed.Description,
		Items:       items,
		LastUpdated: normalizedAt,
	}, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item, normalizedAt string) domain.FeedItem {
	title := item.Title
	if title == "" {
		title = untitledItem
	}

	// Prefer the full-content extension (content:encoded) over the summary.
	content := item.Content
	if content == "" {
		content = item.Description
	}

	return domain.FeedItem{
		Title:       title,
		Link:        item.Link,
		PubDate:     p.normalizePubDate(item, normalizedAt),
		Content:     content,
		Description: item.Description,
		Author:      itemAuthor(item),
	}
}

// normalizePubDate keeps the source's published (or Atom updated) string when
// it parses as a known date layout, and otherwise substitutes the
// normalization time so the field is always a parseable timestamp.
func (p *Parser) normalizePubDate(item *gofeed.Item, normalizedAt string) string {
	raw := item.Published
	if raw == "" {
		raw = item.Updated
	}
	if raw != "" && p.formatter.IsParseable(raw) {
		return raw
	}
	return normalizedAt
}

// itemAuthor prefers the dc:creator field over a generic author element,
// first non-empty wins.
func itemAuthor(item *gofeed.Item) string {
	if item.DublinCoreExt != nil {
		for _, creator := range item.DublinCoreExt.Creator {
			if creator != "" {
				return creator
			}
		}
	}
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	for _, author := range item.Authors {
		if author != nil && author.Name != "" {
			return author.Name
		}
	}
	return ""
}
