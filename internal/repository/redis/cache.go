package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shorturl/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces our keys in a shared Redis
const keyPrefix = "short_urls:"

// Cache keeps resolved mappings in Redis
// This implements the CACHE-ASIDE PATTERN for Resolve:
// 1. Check cache first
// 2. If miss, get from the mapping store
// 3. Store in cache for next time
//
// Mappings never change once written, so entries only leave the cache by TTL
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a new Redis cache
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
	}
}

func key(id string) string {
	return keyPrefix + id
}

// GetURL retrieves the long URL cached for id
// Returns "" and a nil error on a cache miss
func (c *Cache) GetURL(ctx context.Context, id string) (string, error) {
	start := time.Now()
	defer func() {
		metrics.CacheOperationDuration.WithLabelValues("get").Observe(time.Since(start).Seconds())
	}()

	longURL, err := c.client.Get(ctx, key(id)).Result()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheMiss()
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get error: %w", err)
	}

	metrics.RecordCacheHit()
	return longURL, nil
}

// SetURL stores the long URL for id with the configured TTL
func (c *Cache) SetURL(ctx context.Context, id, longURL string) error {
	start := time.Now()
	defer func() {
		metrics.CacheOperationDuration.WithLabelValues("set").Observe(time.Since(start).Seconds())
	}()

	if err := c.client.Set(ctx, key(id), longURL, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

// Close closes the underlying client
func (c *Cache) Close() error {
	return c.client.Close()
}

// InitRedis creates a new Redis client and checks the connection
func InitRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		// Connection pool settings
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
