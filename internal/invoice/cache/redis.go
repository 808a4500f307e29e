package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var redisGetDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "invoiceguard_text_cache_get_duration_ms",
	Help:    "Latency of extracted-text cache lookups in Redis in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

const textKeyPrefix = "invoice:text:"

// Redis is a TextCache shared between instances.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis constructs a Redis-backed TextCache. A non-positive ttl uses
// DefaultTTL.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

// Get reads the cached text. redis.Nil is a miss, not an error.
func (c *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	defer func() {
		redisGetDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	text, err := c.client.Get(ctx, textKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get text: %w", err)
	}
	return text, true, nil
}

// Set stores text with the cache TTL.
func (c *Redis) Set(ctx context.Context, key, text string) error {
	if err := c.client.Set(ctx, textKeyPrefix+key, text, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set text: %w", err)
	}
	return nil
}
