package gateway

// cache.go implements the offline fallback for GET lookups.  Bodies of
// successful responses are stored in Redis keyed by the full request
// URL; when the store is unreachable the last known copy is served so
// the map keeps working through short outages.  Cache failures are
// never fatal – a miss simply means the original error is returned.

import (
	"context"
	"crypto/sha1"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores response bodies in Redis with a TTL.  A nil *Cache is
// valid and disables caching.
type Cache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCache builds a Cache on the given Redis client.  Returns nil
// when rdb is nil so callers can wire the result straight into
// NewClient.  A non-positive ttl defaults to five minutes.
func NewCache(rdb *redis.Client, prefix string, ttl time.Duration) *Cache {
	if rdb == nil {
		return nil
	}
	if prefix == "" {
		prefix = "gateway"
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *Cache) key(requestURL string) string {
	sum := sha1.Sum([]byte(requestURL))
	return fmt.Sprintf("%s:%x", c.prefix, sum[:])
}

// Get returns the cached body for the request URL, if present.
func (c *Cache) Get(ctx context.Context, requestURL string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	body, err := c.rdb.Get(ctx, c.key(requestURL)).Bytes()
	if err != nil {
		return nil, false
	}
	return body, true
}

// Set stores the body for the request URL.  Errors are logged and
// swallowed; caching is best effort.
func (c *Cache) Set(ctx context.Context, requestURL string, body []byte) {
	if c == nil {
		return
	}
	if err := c.rdb.SetEx(ctx, c.key(requestURL), body, c.ttl).Err(); err != nil {
		log.Printf("gateway: cache store failed: %v", err)
	}
}
