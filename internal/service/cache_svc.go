package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/yt-analytics/yt-analytics-go/internal/metrics"
)

// Redis key TTLs.
const (
	SearchCacheTTL      = time.Hour
	TopChannelsCacheTTL = 24 * time.Hour
	RegionsCacheTTL     = 24 * time.Hour
	ChannelCacheTTL     = 15 * time.Minute
)

// Cache is the JSON cache-aside contract the services rely on.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CacheService is a Redis-backed Cache. With a nil client every operation is a
// no-op and every lookup misses.
type CacheService struct {
	rdb *redis.Client
}

// NewCacheService connects to redisURL. If the URL is empty or the connection
// fails, it returns a CacheService with a nil client (caching disabled).
func NewCacheService(redisURL string, log zerolog.Logger) *CacheService {
	if redisURL == "" {
		log.Warn().Msg("redis: no URL configured, caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis: invalid URL, caching disabled")
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis: connection failed, caching disabled")
		_ = rdb.Close()
		return &CacheService{}
	}

	log.Info().Str("addr", opts.Addr).Msg("redis: connected, caching enabled")
	return &CacheService{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// GetJSON decodes the value at key into dst. It reports false on a miss.
func (c *CacheService) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if c.rdb == nil {
		return false, nil
	}
	name := cacheName(key)

	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheMisses.WithLabelValues(name).Inc()
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		metrics.CacheMisses.WithLabelValues(name).Inc()
		return false, err
	}

	metrics.CacheHits.WithLabelValues(name).Inc()
	return true, nil
}

// SetJSON stores v at key for ttl.
func (c *CacheService) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// Delete removes key.
func (c *CacheService) Delete(ctx context.Context, key string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, key).Err()
}

// ClearPattern deletes every key matching a glob pattern and returns how many
// were removed.
func (c *CacheService) ClearPattern(ctx context.Context, pattern string) (int64, error) {
	if c.rdb == nil {
		return 0, nil
	}

	var removed int64
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			n, err := c.rdb.Del(ctx, batch...).Result()
			if err != nil {
				return removed, err
			}
			removed += n
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	if len(batch) > 0 {
		n, err := c.rdb.Del(ctx, batch...).Result()
		if err != nil {
			return removed, err
		}
		removed += n
	}
	return removed, nil
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// cacheName is the metrics label for a key: everything before the first colon.
func cacheName(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
