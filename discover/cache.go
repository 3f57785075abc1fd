package discover

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/burrowblog/burrow/models"
)

// DefaultTTL bounds how stale a served feed page can be.
const DefaultTTL = 5 * time.Minute

// Cache memoizes computed feed pages for a short TTL. Readers may see a
// stale but never corrupt snapshot; nothing writes through the cache, it is
// invalidated only by expiry. Concurrent misses on one key collapse to a
// single recomputation via singleflight.
type Cache struct {
	builder *Builder
	ttl     time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

type cacheEntry struct {
	posts   []*models.Post
	expires time.Time
}

func NewCache(builder *Builder, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		builder: builder,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func cacheKey(req FeedRequest) string {
	return fmt.Sprintf("%s|%d|%s", req.Sort, req.Page, req.Locale)
}

// Build returns the cached page for the request, recomputing it on miss or
// expiry.
func (c *Cache) Build(req FeedRequest, now time.Time) ([]*models.Post, error) {
	req = req.Normalize()
	key := cacheKey(req)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.posts, nil
	}

	posts, err, _ := c.group.Do(key, func() (any, error) {
		posts, err := c.builder.Build(req, now)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = cacheEntry{posts: posts, expires: now.Add(c.ttl)}
		c.mu.Unlock()
		return posts, nil
	})
	if err != nil {
		return nil, err
	}
	return posts.([]*models.Post), nil
}
