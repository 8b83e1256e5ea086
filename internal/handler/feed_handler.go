package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/ElDuke717/my-rss-reader/internal/domain"
	"github.com/ElDuke717/my-rss-reader/internal/middleware"
	"github.com/ElDuke717/my-rss-reader/internal/render"
	"github.com/ElDuke717/my-rss-reader/internal/service"
	"github.com/ElDuke717/my-rss-reader/pkg/ratelimit"
)

const summaryLength = 300

type FeedHandler struct {
	feedService    *service.FeedService
	authMiddleware *middleware.AuthMiddleware
	fetchLimiter   *ratelimit.Limiter
	extractors     *render.Registry
}

func NewFeedHandler(
	feedService *service.FeedService,
	authMiddleware *middleware.AuthMiddleware,
	fetchLimiter *ratelimit.Limiter,
) *FeedHandler {
	return &FeedHandler{
		feedService:    feedService,
		authMiddleware: authMiddleware,
		fetchLimiter:   fetchLimiter,
		extractors:     render.DefaultRegistry(),
	}
}

type feedRequest struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// FetchFeed handles POST /api/feeds: fetch and normalize a single feed URL.
func (h *FeedHandler) FetchFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authMiddleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	// Guard the relay chain: a runaway client refreshing in a loop would
	// burn through the proxies' goodwill for everyone.
	if !h.fetchLimiter.Allow(userID) {
		writeError(w, http.StatusTooManyRequests, "Too many feed requests. Please slow down.", "")
		return
	}

	var req feedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "URL is required", "")
		return
	}

	normalized, err := h.feedService.FetchFeed(r.Context(), req.URL)
	if err != nil {
		log.Printf("feed processing error for user %s: %v", userID, err)
		status, msg := classifyError(err)
		writeError(w, status, msg, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, normalized)
}

// ListUserFeeds handles GET /api/user/feeds: refresh and return the user's
// whole collection.
func (h *FeedHandler) ListUserFeeds(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authMiddleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	feeds, err := h.feedService.GetUserFeeds(r.Context(), userID)
	if err != nil {
		log.Printf("error loading feeds for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to load feeds", err.Error())
		return
	}

	if r.URL.Query().Get("rendered") == "true" {
		writeJSON(w, http.StatusOK, h.renderFeeds(feeds))
		return
	}

	writeJSON(w, http.StatusOK, feeds)
}

type renderedFeed struct {
	domain.Feed
	Items []renderedItem `json:"items"`
}

type renderedItem struct {
	domain.FeedItem
	Summary string             `json:"summary,omitempty"`
	Extras  *render.ItemExtras `json:"extras,omitempty"`
}

// renderFeeds produces the display-oriented view of a collection: plain-text
// summaries plus any source-specific fields an extractor recognizes.
func (h *FeedHandler) renderFeeds(feeds []domain.Feed) []renderedFeed {
	out := make([]renderedFeed, 0, len(feeds))
	for _, f := range feeds {
		rf := renderedFeed{Feed: f, Items: make([]renderedItem, 0, len(f.Items))}
		rf.Feed.Items = nil
		for _, item := range f.Items {
			ri := renderedItem{FeedItem: item, Summary: render.Summary(item, summaryLength)}
			if extras := h.extractors.Extract(f.URL, item); extras != (render.ItemExtras{}) {
				ri.Extras = &extras
			}
			rf.Items = append(rf.Items, ri)
		}
		out = append(out, rf)
	}
	return out
}

// AddUserFeed handles POST /api/user/feeds: fetch the feed, then save the
// association.
func (h *FeedHandler) AddUserFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authMiddleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var req feedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "URL is required", "")
		return
	}

	normalized, err := h.feedService.AddUserFeed(r.Context(), userID, req.URL)
	if err != nil {
		log.Printf("error adding feed for user %s: %v", userID, err)
		status, msg := classifyError(err)
		writeError(w, status, msg, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, normalized)
}

// RemoveUserFeed handles DELETE /api/user/feeds?url=... (the URL may also be
// supplied in a JSON body).
func (h *FeedHandler) RemoveUserFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authMiddleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	feedURL := r.URL.Query().Get("url")
	if feedURL == "" {
		var req feedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			feedURL = req.URL
		}
	}
	if feedURL == "" {
		writeError(w, http.StatusBadRequest, "URL is required", "")
		return
	}

	if err := h.feedService.RemoveUserFeed(userID, feedURL); err != nil {
		log.Printf("error removing feed for user %s: %v", userID, err)
		status, msg := classifyError(err)
		writeError(w, status, msg, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}
