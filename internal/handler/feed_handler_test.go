package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ElDuke717/my-rss-reader/internal/domain"
	"github.com/ElDuke717/my-rss-reader/internal/feed"
	"github.com/ElDuke717/my-rss-reader/internal/middleware"
	"github.com/ElDuke717/my-rss-reader/internal/service"
	"github.com/ElDuke717/my-rss-reader/pkg/ratelimit"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerRSS = `<?xml version="1.0"?><rss version="2.0"><channel>
  <title>Handler Feed</title>
  <item><title>Entry</title><link>https://example.com/entry</link></item>
</channel></rss>`

type memUserFeedRepo struct {
	rows []domain.UserFeed
}

func (r *memUserFeedRepo) ListByUserID(userID string) ([]domain.UserFeed, error) {
	var out []domain.UserFeed
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *memUserFeedRepo) Upsert(uf *domain.UserFeed) error {
	for i, row := range r.rows {
		if row.UserID == uf.UserID && row.FeedURL == uf.FeedURL {
			r.rows[i] = *uf
			return nil
		}
	}
	r.rows = append(r.rows, *uf)
	return nil
}

func (r *memUserFeedRepo) Delete(userID, feedURL string) error {
	for i, row := range r.rows {
		if row.UserID == userID && row.FeedURL == feedURL {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return domain.ErrFeedNotFound
}

type testEnv struct {
	router *mux.Router
	auth   *middleware.AuthMiddleware
	repo   *memUserFeedRepo
}

func newTestEnv(t *testing.T, fetchLimit int) *testEnv {
	t.Helper()

	repo := &memUserFeedRepo{}
	fetcher := feed.NewFetcher(feed.FetcherConfig{Proxies: []string{""}, Delay: -1})
	svc := service.NewFeedService(repo, fetcher, feed.NewParser(), feed.NewCache(5*time.Minute, 16))

	store := sessions.NewCookieStore([]byte("test-secret"))
	auth := middleware.NewAuthMiddleware(store)
	limiter := ratelimit.NewLimiter(fetchLimit, time.Minute)

	h := NewFeedHandler(svc, auth, limiter)

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth.RequireAuth)
	api.HandleFunc("/feeds", h.FetchFeed).Methods("POST")
	api.HandleFunc("/user/feeds", h.ListUserFeeds).Methods("GET")
	api.HandleFunc("/user/feeds", h.AddUserFeed).Methods("POST")
	api.HandleFunc("/user/feeds", h.RemoveUserFeed).Methods("DELETE")

	return &testEnv{router: router, auth: auth, repo: repo}
}

// sessionCookie mints the cookie an external auth provider would have set.
func (e *testEnv) sessionCookie(t *testing.T, userID string) *http.Cookie {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	require.NoError(t, e.auth.SetUserSession(rec, req, userID))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func (e *testEnv) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestFetchFeedRequiresAuth(t *testing.T) {
	env := newTestEnv(t, 30)

	rec := env.do(t, "POST", "/api/feeds", `{"url":"https://example.com/rss"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFetchFeedMissingURL(t *testing.T) {
	env := newTestEnv(t, 30)
	cookie := env.sessionCookie(t, "user-1")

	rec := env.do(t, "POST", "/api/feeds", `{}`, cookie)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "URL is required", resp.Error)
}

func TestFetchFeedInvalidURL(t *testing.T) {
	env := newTestEnv(t, 30)
	cookie := env.sessionCookie(t, "user-1")

	rec := env.do(t, "POST", "/api/feeds", `{"url":"ftp://example.com/rss"}`, cookie)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFetchFeedSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(handlerRSS))
	}))
	defer server.Close()

	env := newTestEnv(t, 30)
	cookie := env.sessionCookie(t, "user-1")

	rec := env.do(t, "POST", "/api/feeds", `{"url":"`+server.URL+`"}`, cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var f domain.Feed
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &f))
	assert.Equal(t, "Handler Feed", f.Title)
	assert.Equal(t, server.URL, f.URL)
	require.Len(t, f.Items, 1)
	assert.Equal(t, "Entry", f.Items[0].Title)
	assert.NotEmpty(t, f.Items[0].PubDate)
}

func TestFetchFeedRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(handlerRSS))
	}))
	defer server.Close()

	env := newTestEnv(t, 1)
	cookie := env.sessionCookie(t, "user-1")
	body := `{"url":"` + server.URL + `"}`

	rec := env.do(t, "POST", "/api/feeds", body, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, "POST", "/api/feeds", body, cookie)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestListUserFeedsRendered(t *testing.T) {
	const rss = `<?xml version="1.0"?><rss version="2.0"><channel>
  <title>Handler Feed</title>
  <item>
    <title>Entry</title>
    <link>https://example.com/entry</link>
    <description>&lt;p&gt;Hello &lt;b&gt;world&lt;/b&gt;, this is a body.&lt;/p&gt;</description>
  </item>
</channel></rss>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rss))
	}))
	defer server.Close()

	env := newTestEnv(t, 30)
	cookie := env.sessionCookie(t, "user-1")
	env.repo.rows = []domain.UserFeed{{UserID: "user-1", FeedURL: server.URL, FeedTitle: "Handler Feed"}}

	rec := env.do(t, "GET", "/api/user/feeds?rendered=true", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var feeds []renderedFeed
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feeds))
	require.Len(t, feeds, 1)
	require.Len(t, feeds[0].Items, 1)
	assert.Equal(t, "Hello world, this is a body.", feeds[0].Items[0].Summary)
	assert.Nil(t, feeds[0].Items[0].Extras)
}

func TestRenderFeedsExtractsRecognizedSource(t *testing.T) {
	h := NewFeedHandler(nil, nil, nil)

	feeds := []domain.Feed{{
		URL:   "https://hnrss.org/frontpage",
		Title: "Hacker News",
		Items: []domain.FeedItem{{
			Title: "Show HN: Something",
			Description: `<p>Article URL: <a href="https://example.com/post">https://example.com/post</a></p>` +
				`<p>Comments URL: <a href="https://news.ycombinator.com/item?id=1">https://news.ycombinator.com/item?id=1</a></p>` +
				`<p>Points: 42</p><p># Comments: 7</p>`,
		}},
	}}

	rendered := h.renderFeeds(feeds)
	require.Len(t, rendered, 1)
	require.Len(t, rendered[0].Items, 1)

	extras := rendered[0].Items[0].Extras
	require.NotNil(t, extras)
	assert.Equal(t, "https://example.com/post", extras.ExternalLink)
	assert.Equal(t, "https://news.ycombinator.com/item?id=1", extras.DiscussionLink)
	require.NotNil(t, extras.Score)
	assert.Equal(t, 42, *extras.Score)
	require.NotNil(t, extras.DiscussionCount)
	assert.Equal(t, 7, *extras.DiscussionCount)
	assert.NotEmpty(t, rendered[0].Items[0].Summary)
}

func TestUserFeedLifecycle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(handlerRSS))
	}))
	defer server.Close()

	env := newTestEnv(t, 30)
	cookie := env.sessionCookie(t, "user-1")

	// Add.
	rec := env.do(t, "POST", "/api/user/feeds", `{"url":"`+server.URL+`"}`, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, env.repo.rows, 1)
	assert.Equal(t, "Handler Feed", env.repo.rows[0].FeedTitle)

	// List refreshes and returns the collection.
	rec = env.do(t, "GET", "/api/user/feeds", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var feeds []domain.Feed
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feeds))
	require.Len(t, feeds, 1)
	assert.Equal(t, "Handler Feed", feeds[0].Title)

	// Remove.
	rec = env.do(t, "DELETE", "/api/user/feeds?url="+server.URL, "", cookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, env.repo.rows)

	// Removing again is a 404.
	rec = env.do(t, "DELETE", "/api/user/feeds?url="+server.URL, "", cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
