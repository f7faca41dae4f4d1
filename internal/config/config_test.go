package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zeno-labs/museum-companion/internal/config"
)

func TestLoadCacheConfigDefaults(t *testing.T) {
	cfg := config.LoadCacheConfig()
	require.True(t, cfg.Enabled)
	require.True(t, cfg.Methods["GET"])
	require.False(t, cfg.Methods["POST"])
	require.Equal(t, 30*time.Second, cfg.TTL)
	require.Equal(t, "route_query", cfg.KeyStrategy)
	require.Equal(t, "cache", cfg.Prefix)
	require.Equal(t, 1048576, cfg.MaxBodyBytes)
}

func TestLoadCacheConfigFromEnv(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "2m")

	cfg := config.LoadCacheConfig()
	require.False(t, cfg.Enabled)
	require.True(t, cfg.Methods["GET"])
	require.True(t, cfg.Methods["HEAD"])
	require.Equal(t, 2*time.Minute, cfg.TTL)
}

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	cfg := config.LoadRateLimitConfig()
	require.True(t, cfg.Enabled)
	require.Equal(t, 60, cfg.Capacity)
	require.Equal(t, 1, cfg.RefillTokens)
	require.Equal(t, time.Second, cfg.RefillInterval)
	require.Equal(t, "ip_user_route", cfg.KeyStrategy)
	require.Equal(t, "rl", cfg.Prefix)
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "5s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := config.LoadRateLimitConfig()
	require.Equal(t, 1, cfg.Capacity)
	require.Equal(t, 1, cfg.RefillTokens)
	require.Equal(t, 5*time.Second, cfg.RefillInterval)
	// TTL is lifted to several refill intervals so idle buckets do not
	// vanish mid-burst.
	require.Equal(t, 25*time.Second, cfg.TTL)
}

func TestLoadRateLimitConfigBurstOverride(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "60")
	t.Setenv("RATE_LIMIT_BURST", "10")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "500ms")

	cfg := config.LoadRateLimitConfig()
	require.Equal(t, 10, cfg.Capacity)
	require.Equal(t, 1, cfg.RefillTokens)
	require.Equal(t, 500*time.Millisecond, cfg.RefillInterval)
}
