package rates

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Cache stores the last fetched quote.
type Cache interface {
	Get(ctx context.Context, key string) (*Quote, bool, error)
	Set(ctx context.Context, key string, q Quote, ttl time.Duration) error
}

// NoopCache never stores anything.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*Quote, bool, error) { return nil, false, nil }

func (NoopCache) Set(context.Context, string, Quote, time.Duration) error { return nil }

// RedisCache keeps quotes as JSON strings with a Redis TTL.
type RedisCache struct {
	client redis.UniversalClient
}

func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Quote, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var q Quote
	if err := json.Unmarshal([]byte(val), &q); err != nil {
		return nil, false, err
	}
	return &q, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, q Quote, ttl time.Duration) error {
	payload, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

// MemoryCache is an in-process cache for single-instance deployments.
type MemoryCache struct {
	mu    sync.Mutex
	now   func() time.Time
	items map[string]memoryItem
}

type memoryItem struct {
	quote   Quote
	expires time.Time
}

func NewMemoryCache(now func() time.Time) *MemoryCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{now: now, items: make(map[string]memoryItem)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*Quote, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[key]
	if !ok || !c.now().Before(it.expires) {
		return nil, false, nil
	}
	q := it.quote
	return &q, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, q Quote, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = memoryItem{quote: q, expires: c.now().Add(ttl)}
	return nil
}
