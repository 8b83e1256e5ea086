package repository

import (
	"database/sql"
	"fmt"

	"github.com/ElDuke717/my-rss-reader/internal/domain"
)

// UserFeedRepository is the association store between opaque user IDs and
// feed URLs. These three operations are the whole contract; the aggregator
// core never touches the database directly.
type UserFeedRepository interface {
	ListByUserID(userID string) ([]domain.UserFeed, error)
	Upsert(uf *domain.UserFeed) error
	Delete(userID, feedURL string) error
}

type userFeedRepository struct {
	db *sql.DB
}

func NewUserFeedRepository(db *sql.DB) UserFeedRepository {
	return &userFeedRepository{db: db}
}

func (r *userFeedRepository) ListByUserID(userID string) ([]domain.UserFeed, error) {
	rows, err := r.db.Query(
		"SELECT user_id, feed_url, feed_title, last_fetched FROM user_feeds WHERE user_id = $1 ORDER BY feed_title",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list user feeds: %w", err)
	}
	defer rows.Close()

	var feeds []domain.UserFeed
	for rows.Next() {
		var uf domain.UserFeed
		if err := rows.Scan(&uf.UserID, &uf.FeedURL, &uf.FeedTitle, &uf.LastFetched); err != nil {
			return nil, fmt.Errorf("failed to scan user feed: %w", err)
		}
		feeds = append(feeds, uf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user feeds: %w", err)
	}

	return feeds, nil
}

func (r *userFeedRepository) Upsert(uf *domain.UserFeed) error {
	if err := uf.Validate(); err != nil {
		return err
	}

	_, err := r.db.Exec(
		`INSERT INTO user_feeds (user_id, feed_url, feed_title, last_fetched)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, feed_url)
		 DO UPDATE SET feed_title = EXCLUDED.feed_title, last_fetched = EXCLUDED.last_fetched`,
		uf.UserID, uf.FeedURL, uf.FeedTitle, uf.LastFetched,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user feed: %w", err)
	}

	return nil
}

func (r *userFeedRepository) Delete(userID, feedURL string) error {
	result, err := r.db.Exec(
		"DELETE FROM user_feeds WHERE user_id = $1 AND feed_url = $2",
		userID, feedURL,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user feed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrFeedNotFound
	}

	return nil
}
