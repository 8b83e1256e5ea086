package feed

import (
	"net/url"
	"strings"
)

// Sanitize trims surrounding whitespace and prepends https:// when the
// candidate lacks an explicit scheme. It must run before IsValid and before
// any fetch, and the sanitized form is also the cache key.
func Sanitize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	return raw
}

// IsValid reports whether the candidate parses as an http or https URL with a
// host. It performs no network access and never panics on malformed input.
func IsValid(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}
