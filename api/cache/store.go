package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/morikuni/failure/v2"
	"github.com/redis/go-redis/v9"
)

// MemoryStore keeps entries for the lifetime of the process
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[T]
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{entries: make(map[string]Entry[T])}
}

func (s *MemoryStore[T]) Load(_ context.Context, key string) (Entry[T], bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok, nil
}

func (s *MemoryStore[T]) Save(_ context.Context, key string, entry Entry[T]) error {
	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// RedisStore shares entries between processes. Values are stored as JSON
// and redis drops them shortly after they expire.
type RedisStore[T any] struct {
	client *redis.Client
	prefix string
}

func NewRedisStore[T any](client *redis.Client, prefix string) *RedisStore[T] {
	return &RedisStore[T]{client: client, prefix: prefix}
}

func (s *RedisStore[T]) Load(ctx context.Context, key string) (Entry[T], bool, error) {
	var e Entry[T]
	b, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err == redis.Nil {
		return e, false, nil
	}
	if err != nil {
		return e, false, failure.Wrap(err, failure.Context{"key": key})
	}
	if err := json.Unmarshal(b, &e); err != nil {
		return e, false, failure.Wrap(err, failure.Context{"key": key})
	}
	return e, true, nil
}

func (s *RedisStore[T]) Save(ctx context.Context, key string, entry Entry[T]) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return failure.Wrap(err, failure.Context{"key": key})
	}
	ttl := time.Until(entry.ExpiresAt) + time.Minute
	if ttl < time.Minute {
		ttl = time.Minute
	}
	if err := s.client.Set(ctx, s.prefix+key, b, ttl).Err(); err != nil {
		return failure.Wrap(err, failure.Context{"key": key})
	}
	return nil
}
