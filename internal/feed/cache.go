package feed

import (
	"container/list"
	"sync"
	"time"

	"github.com/ElDuke717/my-rss-reader/internal/domain"
)

const (
	DefaultCacheTTL        = 5 * time.Minute
	DefaultCacheMaxEntries = 256
)

// Cache memoizes normalized feeds by source URL for a freshness window.
// Staleness and eviction are separate concerns: an entry past its window is
// skipped on Get (and overwritten by the next Put), while the entry-count
// bound evicts least-recently-used entries regardless of age.
//
// Cache makes no single-flight promise. Concurrent misses on the same key may
// each fetch upstream; the last Put wins. Deduplication lives in the service
// layer.
type Cache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	ll         *list.List // front = most recently used
	entries    map[string]*list.Element

	now func() time.Time
}

type cacheEntry struct {
	key       string
	feed      *domain.Feed
	timestamp time.Time
}

func NewCache(ttl time.Duration, maxEntries int) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultCacheMaxEntries
	}
	return &Cache{
		ttl:        ttl,
		maxEntries: maxEntries,
		ll:         list.New(),
		entries:    make(map[string]*list.Element),
		now:        time.Now,
	}
}

// Get returns the cached feed for key when it is still within the freshness
// window. A stale entry behaves as a miss but is not removed; it stays until
// the next Put for its key or until LRU pressure pushes it out.
func (c *Cache) Get(key string) (*domain.Feed, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(elem)

	entry := elem.Value.(*cacheEntry)
	if c.now().Sub(entry.timestamp) >= c.ttl {
		return nil, false
	}
	return entry.feed, true
}

// Put stores a freshly normalized feed, replacing any previous entry for the
// key wholesale and evicting the least-recently-used entry when the bound is
// exceeded.
func (c *Cache) Put(key string, feed *domain.Feed) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.ll.MoveToFront(elem)
		elem.Value = &cacheEntry{key: key, feed: feed, timestamp: c.now()}
		return
	}

	elem := c.ll.PushFront(&cacheEntry{key: key, feed: feed, timestamp: c.now()})
	c.entries[key] = elem

	if c.ll.Len() > c.maxEntries {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len reports the number of resident entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
