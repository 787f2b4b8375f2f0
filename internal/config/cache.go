package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// CacheConfig defines settings for the facade's response cache
// middleware.  When Enabled is false or no Redis client is configured,
// caching is disabled.  Methods lists the HTTP methods to cache.  TTL
// defines the lifetime of cache entries.  KeyStrategy determines which
// parts of the request contribute to the cache key.  Prefix and
// MaxBodyBytes allow control over namespacing and the maximum size of
// responses to cache.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
	Exclude      map[string]bool
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.  All methods are
// upper-cased.  Exclude lists route paths that must never be served
// from cache: the move-mode pool and the conflict views change with
// every assignment, so even a short TTL would show operators state
// the engine has already left behind.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      getenv("CACHE_ENABLED", "true") == "true",
		Methods:      parseMethods(getenv("CACHE_METHODS", "GET")),
		TTL:          parseDur(getenv("CACHE_TTL", "10s")),
		KeyStrategy:  getenv("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       getenv("CACHE_PREFIX", "cache"),
		MaxBodyBytes: atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")),
		Exclude:      parsePaths(getenv("CACHE_EXCLUDE", "/v1/move-mode/pool,/v1/conflicts/:id")),
	}
}

// OfflineCacheConfig controls the gateway's offline fallback: how
// long a successful store lookup stays servable after the store goes
// away.
type OfflineCacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadOfflineCacheConfig reads the offline-cache settings.  The TTL
// default is deliberately generous; a stale pool listing beats a dead
// map during a store outage.
func LoadOfflineCacheConfig() OfflineCacheConfig {
	return OfflineCacheConfig{
		Enabled: getenv("OFFLINE_CACHE_ENABLED", "true") == "true",
		TTL:     parseDur(getenv("OFFLINE_CACHE_TTL", "15m")),
		Prefix:  getenv("OFFLINE_CACHE_PREFIX", "gateway"),
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}

// parsePaths splits a comma-separated list of registered route paths
// (as echo reports them, parameters included, e.g. "/v1/conflicts/:id").
func parsePaths(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			m[p] = true
		}
	}
	return m
}

// Helper functions reused from redis.go and ratelimit.go
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
