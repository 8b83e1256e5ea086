package domain

import "time"

// Feed is the normalized representation of a remote RSS/Atom source. It is a
// value object: identity is the source URL, and two fetches of the same URL
// may yield different values over time.
type Feed struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Items       []FeedItem `json:"items"`
	LastUpdated string     `json:"lastUpdated"`
}

// FeedItem is one normalized entry within a Feed. Title, Link and PubDate are
// always present after normalization; Link may be the empty string, which
// callers must treat as "no link".
type FeedItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	PubDate     string `json:"pubDate"`
	Content     string `json:"content,omitempty"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author,omitempty"`
}

// UserFeed is one user-to-feed association row. Its lifecycle belongs to the
// surrounding application; the aggregator only reads and writes rows through
// the repository.
type UserFeed struct {
	UserID      string    `json:"user_id"`
	FeedURL     string    `json:"feed_url"`
	FeedTitle   string    `json:"feed_title"`
	LastFetched time.Time `json:"last_fetched"`
}

func (uf *UserFeed) Validate() error {
	if uf.UserID == "" {
		return ErrInvalidUserID
	}
	if uf.FeedURL == "" {
		return ErrInvalidFeedURL
	}
	return nil
}
