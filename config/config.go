package config

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL   string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	AppPort       string
	SessionSecret string
	Environment   string

	// Feed pipeline tunables.
	FeedProxies      []string
	FeedCacheTTL     time.Duration
	FeedCacheEntries int
	FeedFetchTimeout time.Duration
	FeedProxyDelay   time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		if _, exists := os.Stat(".env"); exists == nil {
			log.Println("Warning: .env file exists but couldn't be loaded:", err)
		}
	}

	sessionSecret := getEnv("SESSION_SECRET", "")
	if sessionSecret == "" {
		sessionSecret = generateRandomSecret("SESSION_SECRET")
	}

	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		AppPort:          getEnv("APP_PORT", "8080"),
		SessionSecret:    sessionSecret,
		Environment:      getEnv("ENVIRONMENT", "development"),
		FeedProxies:      splitList(getEnv("FEED_PROXIES", "")),
		FeedCacheTTL:     getDuration("FEED_CACHE_TTL", 5*time.Minute),
		FeedCacheEntries: getInt("FEED_CACHE_ENTRIES", 256),
		FeedFetchTimeout: getDuration("FEED_FETCH_TIMEOUT", 10*time.Second),
		FeedProxyDelay:   getDuration("FEED_PROXY_DELAY", time.Second),
	}

	log.Printf("Configuration loaded:")
	log.Printf("  Environment: %s", cfg.Environment)
	log.Printf("  APP_PORT: %s", cfg.AppPort)

	if cfg.DatabaseURL != "" {
		cfg.parseDBURL()
	} else {
		cfg.DBHost = getEnv("DB_HOST", "localhost")
		cfg.DBPort = getEnv("DB_PORT", "5432")
		cfg.DBUser = getEnv("DB_USER", "postgres")
		cfg.DBPassword = getEnv("DB_PASSWORD", "password")
		cfg.DBName = getEnv("DB_NAME", "rss_reader")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid %s %q, using %s", key, value, fallback)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid %s %q, using %d", key, value, fallback)
		return fallback
	}
	return n
}

// splitList parses a comma-separated proxy list. An entry of "direct" maps to
// the empty prefix (server-to-server fetch with no relay).
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "direct" {
			part = ""
		}
		out = append(out, part)
	}
	return out
}

func (c *Config) parseDBURL() {
	u, err := url.Parse(c.DatabaseURL)
	if err != nil {
		log.Printf("Error parsing DATABASE_URL: %v", err)
		return
	}

	c.DBHost = u.Hostname()
	c.DBPort = u.Port()
	if c.DBPort == "" {
		c.DBPort = "5432"
	}

	c.DBUser = u.User.Username()
	if password, ok := u.User.Password(); ok {
		c.DBPassword = password
	}

	c.DBName = strings.TrimPrefix(u.Path, "/")
}

func generateRandomSecret(name string) string {
	log.Printf("Warning: %s not set, generating random secret (will not persist across restarts)", name)

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("Failed to generate random secret for %s: %v", name, err)
	}

	return base64.StdEncoding.EncodeToString(b)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
