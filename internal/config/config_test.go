package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"FEED_WS_URL", "FEED_HISTORY_CAPACITY", "FEED_BACKOFF_BASE_MS",
		"FEED_BACKOFF_MAX_MS", "FEED_BACKOFF_MAX_EXPONENT", "RISK_API_URL",
		"KAFKA_BROKERS", "REDIS_ENABLED",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "ws://localhost:8000/ws/ai-feed", cfg.Feed.URL)
	assert.Equal(t, 100, cfg.Feed.HistoryCapacity)
	assert.Equal(t, time.Second, cfg.Feed.BackoffBase)
	assert.Equal(t, 30*time.Second, cfg.Feed.BackoffMax)
	assert.Equal(t, 6, cfg.Feed.BackoffMaxExp)
	assert.Equal(t, "http://localhost:8000", cfg.Risk.APIURL)
	assert.False(t, cfg.Kafka.Enabled())
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FEED_WS_URL", "wss://engine.internal/ws/ai-feed")
	t.Setenv("FEED_HISTORY_CAPACITY", "50")
	t.Setenv("RISK_API_URL", "https://engine.internal/")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,,")
	t.Setenv("REDIS_ENABLED", "false")

	cfg := Load()

	assert.Equal(t, "wss://engine.internal/ws/ai-feed", cfg.Feed.URL)
	assert.Equal(t, 50, cfg.Feed.HistoryCapacity)
	// Trailing slash is trimmed so paths can be appended
	assert.Equal(t, "https://engine.internal", cfg.Risk.APIURL)
	require.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_InvalidNumberFallsBackToDefault(t *testing.T) {
	t.Setenv("FEED_HISTORY_CAPACITY", "lots")

	cfg := Load()

	assert.Equal(t, 100, cfg.Feed.HistoryCapacity)
}
