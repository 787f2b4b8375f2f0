package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCacheConfigDefaults(t *testing.T) {
	cfg := LoadCacheConfig()
	require.True(t, cfg.Enabled)
	require.True(t, cfg.Methods["GET"])

	// Live engine views are excluded from response caching by default.
	require.True(t, cfg.Exclude["/v1/move-mode/pool"])
	require.True(t, cfg.Exclude["/v1/conflicts/:id"])
}

func TestParsePaths(t *testing.T) {
	m := parsePaths(" /a , /b/:id ,, ")
	require.Equal(t, map[string]bool{"/a": true, "/b/:id": true}, m)
	require.Empty(t, parsePaths(""))
}
