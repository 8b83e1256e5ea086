package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ElDuke717/my-rss-reader/internal/domain"
	"github.com/ElDuke717/my-rss-reader/internal/feed"
)

// classifyError maps a pipeline failure to an HTTP status and a summary the
// UI can show as-is. Fetch failures are sorted by inspecting the underlying
// cause, since the transport layer only tells us what the last proxy said.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrMissingFeedURL):
		return http.StatusBadRequest, "URL is required"
	case errors.Is(err, domain.ErrInvalidFeedURL):
		return http.StatusBadRequest, "Invalid feed URL"
	case errors.Is(err, domain.ErrFeedNotFound):
		return http.StatusNotFound, "Feed not found"
	}

	var parseErr *feed.ParseError
	if errors.As(err, &parseErr) {
		return http.StatusBadRequest, "Unable to parse feed"
	}

	var fetchErr *feed.FetchError
	if errors.As(err, &fetchErr) {
		return classifyFetchError(fetchErr)
	}

	return http.StatusInternalServerError, "Failed to process feed"
}

func classifyFetchError(err *feed.FetchError) (int, string) {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return http.StatusTooManyRequests, "Rate limit exceeded. Please try again in a few minutes."
	case strings.Contains(msg, "connection refused"):
		return http.StatusServiceUnavailable, "Unable to connect to feed server"
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(msg, "timeout"):
		return http.StatusGatewayTimeout, "Feed server took too long to respond"
	}

	return http.StatusInternalServerError, "Failed to fetch feed"
}
