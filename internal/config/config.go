package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	Feed   FeedConfig
	Risk   RiskConfig
	Kafka  KafkaConfig
	Redis  RedisConfig
	Log    LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// FeedConfig holds the live AI feed connection settings
type FeedConfig struct {
	URL             string
	HistoryCapacity int
	BackoffBase     time.Duration
	BackoffMax      time.Duration
	BackoffMaxExp   int
}

// RiskConfig holds the risk snapshot endpoint settings
type RiskConfig struct {
	APIURL  string
	Timeout time.Duration
}

// KafkaConfig holds Kafka/Redpanda configuration for republishing feed events.
// An empty broker list disables the Kafka sink.
type KafkaConfig struct {
	Brokers   []string
	FeedTopic string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled     bool
	Host        string
	Port        string
	Password    string
	DB          int
	FeedChannel string
	SnapshotTTL time.Duration
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8082"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Feed: FeedConfig{
			URL:             getEnv("FEED_WS_URL", "ws://localhost:8000/ws/ai-feed"),
			HistoryCapacity: getEnvInt("FEED_HISTORY_CAPACITY", 100),
			BackoffBase:     getEnvMillis("FEED_BACKOFF_BASE_MS", 1000),
			BackoffMax:      getEnvMillis("FEED_BACKOFF_MAX_MS", 30000),
			BackoffMaxExp:   getEnvInt("FEED_BACKOFF_MAX_EXPONENT", 6),
		},
		Risk: RiskConfig{
			APIURL:  strings.TrimRight(getEnv("RISK_API_URL", "http://localhost:8000"), "/"),
			Timeout: getEnvMillis("RISK_API_TIMEOUT_MS", 5000),
		},
		Kafka: KafkaConfig{
			Brokers:   parseBrokers(getEnv("KAFKA_BROKERS", "")),
			FeedTopic: getEnv("KAFKA_FEED_TOPIC", "openclaw.ai-feed"),
		},
		Redis: RedisConfig{
			Enabled:     getEnvBool("REDIS_ENABLED", true),
			Host:        getEnv("REDIS_HOST", "localhost"),
			Port:        getEnv("REDIS_PORT", "6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvInt("REDIS_DB", 0),
			FeedChannel: getEnv("REDIS_FEED_CHANNEL", "openclaw:ai-feed"),
			SnapshotTTL: getEnvMillis("REDIS_SNAPSHOT_TTL_MS", 60000),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvMillis(key string, defaultMillis int) time.Duration {
	return time.Duration(getEnvInt(key, defaultMillis)) * time.Millisecond
}

// parseBrokers splits a comma-separated broker list
func parseBrokers(brokers string) []string {
	parts := strings.Split(brokers, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Address returns the Redis address in host:port format
func (r *RedisConfig) Address() string {
	return r.Host + ":" + r.Port
}

// Enabled reports whether a Kafka sink should be created
func (k *KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}
