package render

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ElDuke717/my-rss-reader/internal/domain"
)

// HackerNews recognizes hnrss-style feeds, whose items embed the story's
// structured data as semi-formatted prose inside the HTML content blob:
//
//	<p>Article URL: <a href="...">...</a></p>
//	<p>Comments URL: <a href="...">...</a></p>
//	<p>Points: 42</p>
//	<p># Comments: 7</p>
type HackerNews struct{}

var hnSignatures = []string{"hnrss.org", "news.ycombinator.com"}

var (
	hnArticleURL    = regexp.MustCompile(`Article URL:\s*<a[^>]*href="([^"]+)"`)
	hnCommentsURL   = regexp.MustCompile(`Comments URL:\s*<a[^>]*href="([^"]+)"`)
	hnPoints        = regexp.MustCompile(`Points:\s*(\d+)`)
	hnCommentsCount = regexp.MustCompile(`#\s*Comments:\s*(\d+)`)
)

func (HackerNews) Match(feedURL string) bool {
	for _, sig := range hnSignatures {
		if strings.Contains(feedURL, sig) {
			return true
		}
	}
	return false
}

func (HackerNews) Extract(item domain.FeedItem) ItemExtras {
	content := item.Content
	if content == "" {
		content = item.Description
	}

	var extras ItemExtras
	if m := hnArticleURL.FindStringSubmatch(content); m != nil {
		extras.ExternalLink = m[1]
	}
	if m := hnCommentsURL.FindStringSubmatch(content); m != nil {
		extras.DiscussionLink = m[1]
	}
	if m := hnPoints.FindStringSubmatch(content); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			extras.Score = &n
		}
	}
	if m := hnCommentsCount.FindStringSubmatch(content); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			extras.DiscussionCount = &n
		}
	}
	return extras
}
