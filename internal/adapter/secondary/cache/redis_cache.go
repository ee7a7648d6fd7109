package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/payflow/payment-orchestrator/internal/port/output"
)

const keyPrefix = "idempotency:"

// RedisIdempotencyCache is a secondary adapter that implements the
// IdempotencyCache output port on Redis. SET NX gives the atomic
// insert-if-absent the contract requires, and the TTL handles expiry.
type RedisIdempotencyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisIdempotencyCache creates a new Redis-backed idempotency cache
func NewRedisIdempotencyCache(addr string, ttl time.Duration) (*RedisIdempotencyCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisIdempotencyCache{client: client, ttl: ttl}, nil
}

// Get returns the cached response for a token, if any
func (c *RedisIdempotencyCache) Get(ctx context.Context, token string) (*output.CachedResponse, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read idempotency entry: %w", err)
	}

	var resp output.CachedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, false, fmt.Errorf("failed to decode idempotency entry: %w", err)
	}
	return &resp, true, nil
}

// PutIfAbsent stores the response under the token unless one already exists
func (c *RedisIdempotencyCache) PutIfAbsent(ctx context.Context, token string, response output.CachedResponse) error {
	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to encode idempotency entry: %w", err)
	}

	if err := c.client.SetNX(ctx, keyPrefix+token, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotency entry: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisIdempotencyCache) Close() error {
	return c.client.Close()
}
