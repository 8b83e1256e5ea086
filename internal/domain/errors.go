package domain

import "errors"

var (
	ErrInvalidUserID = errors.New("invalid user ID")

	ErrInvalidFeedURL = errors.New("invalid feed URL")
	ErrMissingFeedURL = errors.New("URL is required")
	ErrFeedNotFound   = errors.New("feed not found")

	ErrDatabaseConnection = errors.New("database connection error")
	ErrDatabaseQuery      = errors.New("database query error")
)
