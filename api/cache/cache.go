package cache

import (
	"context"
	"strings"
	"time"

	"github.com/aggieseek/seatwatch/log"
)

// DefaultTTL is the default time-to-live for memoized values
var DefaultTTL = 5 * time.Minute

// Entry represents a cached item
type Entry[T any] struct {
	Value     T         `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is no longer usable at now
func (e Entry[T]) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Store holds entries by key. Stores return expired entries as they
// are; deciding liveness is up to the Memo.
type Store[T any] interface {
	Load(ctx context.Context, key string) (Entry[T], bool, error)
	Save(ctx context.Context, key string, entry Entry[T]) error
}

// Producer computes a value on a cache miss
type Producer[T any] func(ctx context.Context) (T, error)

// Memo wraps expensive lookups with a keyed, TTL-bound cache.
//
// Concurrent misses on the same key are not coalesced: each caller runs
// the producer and the last writer wins. Values for one key are expected
// to be interchangeable within the TTL, so duplicate upstream calls under
// a race are accepted.
type Memo[T any] struct {
	store Store[T]
	ttl   time.Duration
	now   func() time.Time
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates a Memo over store with a default ttl
func New[T any](store Store[T], ttl time.Duration, opts ...Option) *Memo[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memo[T]{store: store, ttl: ttl, now: o.now}
}

// GetOrSet retrieves a value from cache or stores it if it doesn't exist
func (m *Memo[T]) GetOrSet(ctx context.Context, key string, fn Producer[T], forceUpdate bool) (T, error) {
	if !forceUpdate {
		if v, ok := m.lookup(ctx, key); ok {
			return v, nil
		}
	}
	return m.produce(ctx, key, m.ttl, fn)
}

// Memoize returns the live value under key, or runs fn and keeps its
// result for ttl. Producer errors are returned and never cached.
func (m *Memo[T]) Memoize(ctx context.Context, key string, ttl time.Duration, fn Producer[T]) (T, error) {
	if v, ok := m.lookup(ctx, key); ok {
		return v, nil
	}
	return m.produce(ctx, key, ttl, fn)
}

func (m *Memo[T]) lookup(ctx context.Context, key string) (T, bool) {
	var zero T
	entry, ok, err := m.store.Load(ctx, key)
	if err != nil {
		log.Warn("Cache load failed", "key", key, "error", err)
		return zero, false
	}
	if !ok || entry.Expired(m.now()) {
		log.Debug("Cache miss", "key", key)
		return zero, false
	}
	log.Debug("Cache hit", "key", key)
	return entry.Value, true
}

func (m *Memo[T]) produce(ctx context.Context, key string, ttl time.Duration, fn Producer[T]) (T, error) {
	value, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	now := m.now()
	entry := Entry[T]{
		Value:     value,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := m.store.Save(ctx, key, entry); err != nil {
		// the value is still good even if it could not be kept
		log.Warn("Cache save failed", "key", key, "error", err)
	}
	return value, nil
}

// Key joins a function identity and its arguments into a cache key
func Key(fn string, args ...string) string {
	return normalizeKey(strings.Join(append([]string{fn}, args...), ":"))
}

// normalizeKey converts a cache key into a safe format
func normalizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') ||
			r == '-' || r == '_' || r == '.' || r == ':' {
			return r
		}
		return '_'
	}, key)
}
