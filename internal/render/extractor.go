// Package render post-processes already-normalized feed items for display.
// It never mutates the normalized feed; everything here is derivation.
package render

import (
	"strings"

	"github.com/ElDuke717/my-rss-reader/internal/domain"
	"github.com/PuerkitoBio/goquery"
)

// ItemExtras holds structured fields recovered from a source-specific item
// shape. All fields are optional; an item from an unrecognized source yields
// the zero value.
type ItemExtras struct {
	ExternalLink    string `json:"externalLink,omitempty"`
	DiscussionLink  string `json:"discussionLink,omitempty"`
	Score           *int   `json:"score,omitempty"`
	DiscussionCount *int   `json:"discussionCount,omitempty"`
}

// Extractor recovers structured fields from one recognized source's item
// shape. Match is the source-signature predicate on the owning feed's URL;
// Extract must be pure and total (no match, no fields).
type Extractor interface {
	Match(feedURL string) bool
	Extract(item domain.FeedItem) ItemExtras
}

// Registry dispatches items to the first extractor whose signature matches
// the owning feed. Supporting a new source means registering a new Extractor,
// not touching the generic parser.
type Registry struct {
	extractors []Extractor
}

func NewRegistry(extractors ...Extractor) *Registry {
	return &Registry{extractors: extractors}
}

// DefaultRegistry returns a registry with all known source extractors.
func DefaultRegistry() *Registry {
	return NewRegistry(HackerNews{})
}

func (r *Registry) Register(e Extractor) {
	r.extractors = append(r.extractors, e)
}

func (r *Registry) Extract(feedURL string, item domain.FeedItem) ItemExtras {
	for _, e := range r.extractors {
		if e.Match(feedURL) {
			return e.Extract(item)
		}
	}
	return ItemExtras{}
}

// Summary reduces an item's HTML body to plain text capped at max bytes, for
// list views that want a snippet rather than the raw blob.
func Summary(item domain.FeedItem, max int) string {
	body := item.Description
	if body == "" {
		body = item.Content
	}

	text := stripHTML(body)
	if max > 0 && len(text) > max {
		text = text[:max] + "..."
	}
	return text
}

func stripHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	text := doc.Text()
	text = strings.Join(strings.Fields(text), " ")
	return strings.TrimSpace(text)
}
