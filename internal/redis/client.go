package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/trogers1052/ai-feed-monitor/internal/config"
	"github.com/trogers1052/ai-feed-monitor/internal/models"
)

// RiskSnapshotKey holds the cached copy of the startup risk snapshot
const RiskSnapshotKey = "openclaw:risk-state"

// Client wraps the Redis client with feed-specific operations
type Client struct {
	rdb         *redis.Client
	feedChannel string
}

// New creates a new Redis client
func New(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewFromClient(rdb, cfg.FeedChannel), nil
}

// NewFromClient wraps an existing go-redis client
func NewFromClient(rdb *redis.Client, feedChannel string) *Client {
	return &Client{rdb: rdb, feedChannel: feedChannel}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks if Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Name identifies the Redis sink in logs and metrics
func (c *Client) Name() string {
	return "redis"
}

// PublishEvent republishes a feed event on the feed channel
func (c *Client) PublishEvent(ctx context.Context, event models.FeedEvent) error {
	return c.Publish(ctx, c.feedChannel, event)
}

// Publish publishes a message to a channel
func (c *Client) Publish(ctx context.Context, channel string, message interface{}) error {
	jsonData, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return c.rdb.Publish(ctx, channel, jsonData).Err()
}

// Risk snapshot caching

// SetRiskSnapshot caches the risk snapshot with TTL
func (c *Client) SetRiskSnapshot(ctx context.Context, snapshot models.RiskSnapshot, ttl time.Duration) error {
	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal risk snapshot: %w", err)
	}
	return c.rdb.Set(ctx, RiskSnapshotKey, jsonData, ttl).Err()
}

// GetRiskSnapshot retrieves the cached risk snapshot
func (c *Client) GetRiskSnapshot(ctx context.Context) (*models.RiskSnapshot, error) {
	jsonData, err := c.rdb.Get(ctx, RiskSnapshotKey).Bytes()
	if err != nil {
		return nil, err
	}

	var snapshot models.RiskSnapshot
	if err := json.Unmarshal(jsonData, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal risk snapshot: %w", err)
	}
	return &snapshot, nil
}
