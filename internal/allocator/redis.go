package allocator

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var redisNextDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "chronoledger_allocator_redis_next_duration_ms",
	Help:    "Latency of Redis identifier allocation in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

// DefaultRedisKey is the counter key used when none is configured.
const DefaultRedisKey = "chronoledger:ids"

// Redis allocates identifiers with INCR so every replica sharing the Redis
// instance draws from the same sequence and identifiers survive restarts.
type Redis struct {
	client *redis.Client
	key    string
}

// RedisOption configures a Redis allocator.
type RedisOption func(*Redis)

// WithKey overrides the counter key.
func WithKey(key string) RedisOption {
	return func(r *Redis) {
		if key != "" {
			r.key = key
		}
	}
}

// NewRedis constructs a Redis-backed allocator. The client lifecycle is managed
// by the caller.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{client: client, key: DefaultRedisKey}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Redis) Next(ctx context.Context) (uint64, error) {
	start := time.Now()
	defer func() {
		redisNextDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	v, err := r.client.Incr(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", r.key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("incr %s: non-positive counter %d", r.key, v)
	}
	return uint64(v), nil
}
