package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/azulmar/beach-map-service/internal/config"
)

func TestCacheSkipsExcludedRoutes(t *testing.T) {
	cfg := config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{"GET": true},
		TTL:         time.Second,
		KeyStrategy: "route_query",
		Prefix:      "cache",
		Exclude:     map[string]bool{"/v1/move-mode/pool": true},
	}
	// Nothing listens here; lookup and store errors are swallowed, so
	// the middleware still marks cacheable routes as misses.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	mw := NewRedisCache(cfg, rdb)

	e := echo.New()
	e.GET("/v1/move-mode/pool", func(c echo.Context) error { return c.String(http.StatusOK, "pool") }, mw)
	e.GET("/v1/journal", func(c echo.Context) error { return c.String(http.StatusOK, "journal") }, mw)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/move-mode/pool", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("X-Cache"))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/journal", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "MISS", rec.Header().Get("X-Cache"))
}

func TestCacheDisabledWithoutRedis(t *testing.T) {
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}
	mw := NewRedisCache(cfg, nil)

	e := echo.New()
	e.GET("/v1/journal", func(c echo.Context) error { return c.String(http.StatusOK, "journal") }, mw)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/journal", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("X-Cache"))
}
