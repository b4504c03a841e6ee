package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Cache shared between API instances.
type Redis struct {
	client *redis.Client
	log    *slog.Logger
}

var _ Cache = (*Redis)(nil)

// NewRedis parses a redis:// URL and returns a Redis cache. The connection is
// established lazily; call Ping to check it up front.
func NewRedis(url string, log *slog.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cache.NewRedis: %w", err)
	}
	return &Redis{client: redis.NewClient(opts), log: log}, nil
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache.Redis.Ping: %w", err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.WarnContext(ctx, "cache get failed", "backend", "redis", "key", key, "error", err)
		}
		return nil, false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, key, val, ttl).Err(); err != nil {
		r.log.WarnContext(ctx, "cache set failed", "backend", "redis", "key", key, "error", err)
	}
}

func (r *Redis) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.log.WarnContext(ctx, "cache delete failed", "backend", "redis", "key", key, "error", err)
	}
}

func (r *Redis) Incr(ctx context.Context, key string) (int64, error) {
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("cache.Redis.Incr: %w", err)
	}
	return n, nil
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
