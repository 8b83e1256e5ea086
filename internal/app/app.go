package app

import (
	"net/http"
	"time"

	"github.com/ElDuke717/my-rss-reader/config"
	"github.com/ElDuke717/my-rss-reader/internal/database"
	"github.com/ElDuke717/my-rss-reader/internal/feed"
	"github.com/ElDuke717/my-rss-reader/internal/handler"
	"github.com/ElDuke717/my-rss-reader/internal/middleware"
	"github.com/ElDuke717/my-rss-reader/internal/repository"
	"github.com/ElDuke717/my-rss-reader/internal/service"
	"github.com/ElDuke717/my-rss-reader/pkg/ratelimit"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
)

type Application struct {
	Router         *mux.Router
	Config         *config.Config
	DBManager      *database.Manager
	FeedHandler    *handler.FeedHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func New(cfg *config.Config) (*Application, error) {
	dbConfig := database.Config{
		ConnectionString: cfg.DatabaseURL,
		Host:             cfg.DBHost,
		Port:             cfg.DBPort,
		User:             cfg.DBUser,
		Password:         cfg.DBPassword,
		DBName:           cfg.DBName,
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return nil, err
	}

	userFeedRepository := repository.NewUserFeedRepository(dbManager.GetDB())

	fetcher := feed.NewFetcher(feed.FetcherConfig{
		Proxies:        cfg.FeedProxies,
		AttemptTimeout: cfg.FeedFetchTimeout,
		Delay:          cfg.FeedProxyDelay,
		UserAgent:      "my-rss-reader/1.0",
	})
	parser := feed.NewParser()
	cache := feed.NewCache(cfg.FeedCacheTTL, cfg.FeedCacheEntries)
	feedService := service.NewFeedService(userFeedRepository, fetcher, parser, cache)

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}

	authMiddleware := middleware.NewAuthMiddleware(sessionStore)
	fetchLimiter := ratelimit.NewLimiter(30, time.Minute)
	feedHandler := handler.NewFeedHandler(feedService, authMiddleware, fetchLimiter)

	app := &Application{
		Router:         mux.NewRouter(),
		Config:         cfg,
		DBManager:      dbManager,
		FeedHandler:    feedHandler,
		AuthMiddleware: authMiddleware,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

func (a *Application) setupMiddleware() {
	a.Router.Use(securityHeadersMiddleware())
}

func securityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}

func (a *Application) setupRoutes() {
	a.Router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	api := a.Router.PathPrefix("/api").Subrouter()
	api.Use(a.AuthMiddleware.RequireAuth)

	api.HandleFunc("/feeds", a.FeedHandler.FetchFeed).Methods("POST")
	api.HandleFunc("/user/feeds", a.FeedHandler.ListUserFeeds).Methods("GET")
	api.HandleFunc("/user/feeds", a.FeedHandler.AddUserFeed).Methods("POST")
	api.HandleFunc("/user/feeds", a.FeedHandler.RemoveUserFeed).Methods("DELETE")
}

func (a *Application) Close() error {
	if a.DBManager != nil {
		return a.DBManager.Close()
	}
	return nil
}
