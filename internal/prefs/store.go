package prefs

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Entry is one stored preference. A nil ExpiresAt never expires.
type Entry struct {
	Key       string     `json:"key"`
	Value     any        `json:"value"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (e Entry) expired(now time.Time) bool {
	return e.ExpiresAt != nil && !now.Before(*e.ExpiresAt)
}

// Store persists entries under fully scoped keys.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, e Entry) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore is a thread-safe in-memory store with expiry.
type MemoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]Entry
}

func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{now: now, entries: make(map[string]Entry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false, nil
	}
	if e.expired(s.now()) {
		delete(s.entries, key)
		return Entry{}, false, nil
	}
	return e, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Purge drops expired entries and returns how many were removed.
func (s *MemoryStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
			n++
		}
	}
	return n
}

// StartPurge evicts expired entries every interval until ctx is done.
func (s *MemoryStore) StartPurge(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Purge()
			}
		}
	}()
}

// RedisStore keeps entries as JSON with a matching key TTL, so Redis does the expiry.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		return Entry{}, false, err
	}
	if e.expired(s.now()) {
		return Entry{}, false, nil
	}
	return e, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, e Entry) error {
	var ttl time.Duration
	if e.ExpiresAt != nil {
		ttl = e.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return s.client.Del(ctx, s.prefix+key).Err()
		}
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+key, payload, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
