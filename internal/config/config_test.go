package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STR", "hello")
	assert.Equal(t, "hello", envStr("TEST_STR", "def"))
	assert.Equal(t, "def", envStr("TEST_STR_MISSING", "def"))

	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_INT_BAD", "forty-two")
	assert.Equal(t, 42, envInt("TEST_INT", 7))
	assert.Equal(t, 7, envInt("TEST_INT_BAD", 7))
	assert.Equal(t, 7, envInt("TEST_INT_MISSING", 7))

	t.Setenv("TEST_BOOL_ON", "true")
	t.Setenv("TEST_BOOL_OFF", "0")
	assert.True(t, envBool("TEST_BOOL_ON", false))
	assert.False(t, envBool("TEST_BOOL_OFF", true))
	assert.True(t, envBool("TEST_BOOL_MISSING", true))

	t.Setenv("TEST_DUR", "90s")
	t.Setenv("TEST_DUR_BAD", "soon")
	assert.Equal(t, 90*time.Second, envDur("TEST_DUR", time.Minute))
	assert.Equal(t, time.Minute, envDur("TEST_DUR_BAD", time.Minute))
}

func TestLoadRateLimitConfigNormalizesValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
	// TTL is raised to cover several refill intervals.
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadCacheConfigParsesMethods(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	cfg := LoadCacheConfig()
	assert.True(t, cfg.Methods["GET"])
	assert.True(t, cfg.Methods["HEAD"])
	assert.False(t, cfg.Methods["POST"])
}
