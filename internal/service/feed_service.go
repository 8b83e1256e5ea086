package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ElDuke717/my-rss-reader/internal/domain"
	"github.com/ElDuke717/my-rss-reader/internal/feed"
	"github.com/ElDuke717/my-rss-reader/internal/repository"
	"golang.org/x/sync/singleflight"
)

// FeedService runs the acquisition pipeline (sanitize, validate, cache,
// fetch, parse) and manages the user's feed collection around it.
type FeedService struct {
	userFeedRepo repository.UserFeedRepository
	fetcher      *feed.Fetcher
	parser       *feed.Parser
	cache        *feed.Cache

	// group collapses concurrent cache misses for the same sanitized URL
	// into one upstream fetch; all waiters share the first flight's result.
	group singleflight.Group
}

func NewFeedService(
	userFeedRepo repository.UserFeedRepository,
	fetcher *feed.Fetcher,
	parser *feed.Parser,
	cache *feed.Cache,
) *FeedService {
	return &FeedService{
		userFeedRepo: userFeedRepo,
		fetcher:      fetcher,
		parser:       parser,
		cache:        cache,
	}
}

// FetchFeed retrieves and normalizes the feed at rawURL, serving from the
// response cache within its freshness window. The sanitized URL is the cache
// and single-flight key, so equivalent inputs differing only in whitespace or
// a missing scheme share entries.
func (s *FeedService) FetchFeed(ctx context.Context, rawURL string) (*domain.Feed, error) {
	url := feed.Sanitize(rawURL)
	if url == "" {
		return nil, domain.ErrMissingFeedURL
	}
	if !feed.IsValid(url) {
		return nil, domain.ErrInvalidFeedURL
	}

	if cached, ok := s.cache.Get(url); ok {
		return cached, nil
	}

	v, err, shared := s.group.Do(url, func() (interface{}, error) {
		// A concurrent flight may have filled the cache while this caller
		// queued behind it.
		if cached, ok := s.cache.Get(url); ok {
			return cached, nil
		}

		raw, err := s.fetcher.Fetch(ctx, url)
		if err != nil {
			return nil, err
		}

		normalized, err := s.parser.Parse(raw, url)
		if err != nil {
			return nil, err
		}

		s.cache.Put(url, normalized)
		return normalized, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Printf("deduplicated concurrent fetch for %s", url)
	}

	return v.(*domain.Feed), nil
}

// GetUserFeeds refreshes every feed in the user's collection. Distinct URLs
// are fetched in parallel; a feed that fails to fetch or parse is logged and
// skipped so one dead source does not empty the whole dashboard. Result order
// follows the stored associations.
func (s *FeedService) GetUserFeeds(ctx context.Context, userID string) ([]domain.Feed, error) {
	associations, err := s.userFeedRepo.ListByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}

	results := make([]*domain.Feed, len(associations))
	var wg sync.WaitGroup
	for i, assoc := range associations {
		wg.Add(1)
		go func(i int, feedURL string) {
			defer wg.Done()
			f, err := s.FetchFeed(ctx, feedURL)
			if err != nil {
				log.Printf("skipping feed %s for user %s: %v", feedURL, userID, err)
				return
			}
			results[i] = f
		}(i, assoc.FeedURL)
	}
	wg.Wait()

	feeds := make([]domain.Feed, 0, len(results))
	for _, f := range results {
		if f != nil {
			feeds = append(feeds, *f)
		}
	}
	return feeds, nil
}

// AddUserFeed fetches and normalizes the feed first, then records the
// association with the fetched title. A feed that cannot be fetched is never
// persisted.
func (s *FeedService) AddUserFeed(ctx context.Context, userID, rawURL string) (*domain.Feed, error) {
	normalized, err := s.FetchFeed(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	uf := &domain.UserFeed{
		UserID:      userID,
		FeedURL:     normalized.URL,
		FeedTitle:   normalized.Title,
		LastFetched: time.Now().UTC(),
	}
	if err := s.userFeedRepo.Upsert(uf); err != nil {
		return nil, fmt.Errorf("failed to save feed: %w", err)
	}

	return normalized, nil
}

// RemoveUserFeed deletes the association. The URL is sanitized the same way
// AddUserFeed sanitized it, so callers can pass back what they originally
// typed.
func (s *FeedService) RemoveUserFeed(userID, rawURL string) error {
	url := feed.Sanitize(rawURL)
	if url == "" {
		return domain.ErrMissingFeedURL
	}

	if err := s.userFeedRepo.Delete(userID, url); err != nil {
		if err == domain.ErrFeedNotFound {
			return err
		}
		return fmt.Errorf("failed to remove feed: %w", err)
	}
	return nil
}
