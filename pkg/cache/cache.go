// Package cache provides a Redis-backed cache for derived price
// insights.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/redis/go-redis/v9"

	"github.com/Ramsey-B/clover/pkg/models"
)

// Config holds Redis connection configuration
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

// Client wraps the Redis client with insight-specific operations.
// Insights are derived data, so every entry expires; a miss just means
// recomputing from history.
type Client struct {
	rdb    *redis.Client
	logger ectologger.Logger
	ttl    time.Duration
}

// NewClient creates a new cache client
func NewClient(cfg Config, logger ectologger.Logger) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	logger.Infof("Connected to Redis at %s", addr)

	return &Client{
		rdb:    rdb,
		logger: logger,
		ttl:    cfg.TTL,
	}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks if Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// insightKey scopes entries by product key and the full claim they
// were computed against. The fake-discount verdict depends on the
// claimed MRP, so it is part of the key; a missing MRP gets a fixed
// marker so claims with and without one never share an entry.
func insightKey(productKey string, claimedPrice float64, claimedMRP *float64) string {
	mrp := "none"
	if claimedMRP != nil {
		mrp = fmt.Sprintf("%.2f", *claimedMRP)
	}
	return fmt.Sprintf("insights:%s:%.2f:%s", productKey, claimedPrice, mrp)
}

// GetInsights returns cached insights, or nil on a miss.
func (c *Client) GetInsights(ctx context.Context, productKey string, claimedPrice float64, claimedMRP *float64) (*models.PriceInsights, error) {
	raw, err := c.rdb.Get(ctx, insightKey(productKey, claimedPrice, claimedMRP)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var insights models.PriceInsights
	if err := json.Unmarshal([]byte(raw), &insights); err != nil {
		return nil, err
	}
	return &insights, nil
}

// SetInsights caches insights for the configured TTL.
func (c *Client) SetInsights(ctx context.Context, claimedPrice float64, claimedMRP *float64, insights models.PriceInsights) error {
	raw, err := json.Marshal(insights)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, insightKey(insights.ProductKey, claimedPrice, claimedMRP), raw, c.ttl).Err()
}

// InvalidateProduct drops all cached insights for a product, called
// after a new observation lands.
func (c *Client) InvalidateProduct(ctx context.Context, productKey string) error {
	pattern := fmt.Sprintf("insights:%s:*", productKey)

	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
