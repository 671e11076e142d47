// Package snapshot keeps timestamped captures of a full dataset and
// serves the latest one while it is fresh.
//
// Snapshot names are the capture time in UTC rendered with NameLayout.
// The layout is fixed width and zero padded, so sorting names as strings
// orders them by capture time and the latest snapshot is found without
// opening any file.
package snapshot

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/aggieseek/seatwatch/log"
	"github.com/morikuni/failure/v2"
)

// NameLayout renders capture times into snapshot names
const NameLayout = "2006-01-02_15-04-05.000000000"

const ext = ".json"

// DefaultWindow is how long a snapshot stays fresh
const DefaultWindow = time.Hour

type ErrorCode string

const (
	// ErrExists represents a write that would replace a snapshot
	ErrExists ErrorCode = "SnapshotExists"
	// ErrStorage represents a failure of the underlying storage
	ErrStorage ErrorCode = "SnapshotStorage"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// Storage lists, reads and appends named snapshots within a namespace.
// Append must fail with ErrExists rather than replace an existing name.
type Storage interface {
	List(ctx context.Context, ns string) ([]string, error)
	Read(ctx context.Context, ns, name string) ([]byte, error)
	Append(ctx context.Context, ns, name string, data []byte) error
}

// Cache reads and writes snapshots of T
type Cache[T any] struct {
	storage Storage
	window  time.Duration
	now     func() time.Time
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

func New[T any](storage Storage, window time.Duration, opts ...Option) *Cache[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Cache[T]{storage: storage, window: window, now: o.now}
}

// Read returns the latest snapshot of ns if it was captured within the
// freshness window. Missing, stale, unreadable and corrupt snapshots all
// read as absent.
func (c *Cache[T]) Read(ctx context.Context, ns string) (T, bool) {
	var zero T
	logger := log.Logger.With("namespace", ns)

	names, err := c.storage.List(ctx, ns)
	if err != nil {
		logger.Warn("Failed to list snapshots", "error", err)
		return zero, false
	}
	name, captured, ok := latest(names)
	if !ok {
		logger.Debug("No snapshot")
		return zero, false
	}

	age := c.now().Sub(captured)
	if age < 0 {
		age = -age
	}
	if age > c.window {
		logger.Debug("Snapshot is stale", "name", name, "age", age)
		return zero, false
	}

	data, err := c.storage.Read(ctx, ns, name)
	if err != nil {
		logger.Warn("Failed to read snapshot", "name", name, "error", err)
		return zero, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		logger.Warn("Snapshot is corrupt", "name", name, "error", err)
		return zero, false
	}
	logger.Debug("Snapshot hit", "name", name)
	return v, true
}

// Write appends a new snapshot of ns captured now
func (c *Cache[T]) Write(ctx context.Context, ns string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return failure.Wrap(err, failure.Context{"namespace": ns})
	}
	name := Name(c.now())
	if err := c.storage.Append(ctx, ns, name, data); err != nil {
		return failure.Wrap(err, failure.Context{"namespace": ns, "name": name})
	}
	log.Debug("Snapshot written", "namespace", ns, "name", name)
	return nil
}

// Name is the snapshot name for a capture at t
func Name(t time.Time) string {
	return t.UTC().Format(NameLayout) + ext
}

// latest picks the last snapshot name in sort order and parses its
// capture time. Names that do not parse are ignored.
func latest(names []string) (string, time.Time, bool) {
	names = slices.Clone(names)
	slices.Sort(names)
	for i := len(names) - 1; i >= 0; i-- {
		base, found := strings.CutSuffix(names[i], ext)
		if !found {
			continue
		}
		t, err := time.ParseInLocation(NameLayout, base, time.UTC)
		if err != nil {
			continue
		}
		return names[i], t, true
	}
	return "", time.Time{}, false
}
