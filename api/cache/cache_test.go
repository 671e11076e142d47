package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func counter(calls *int, value []string) Producer[[]string] {
	return func(context.Context) ([]string, error) {
		*calls++
		return value, nil
	}
}

func TestMemoizeHitWithinTTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)}
	m := New[[]string](NewMemoryStore[[]string](), time.Minute, WithClock(clock.Now))

	calls := 0
	want := []string{"CSCE", "MATH"}
	for i := 0; i < 3; i++ {
		got, err := m.Memoize(ctx, "subjects:202431", time.Minute, counter(&calls, want))
		if err != nil {
			t.Fatalf("Memoize() error = %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Memoize() mismatch (-want +got):\n%s", diff)
		}
		clock.Advance(10 * time.Second)
	}
	if calls != 1 {
		t.Errorf("producer called %d times, want 1", calls)
	}
}

func TestMemoizeRecomputesAfterTTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore[[]string]()
	m := New[[]string](store, time.Minute, WithClock(clock.Now))

	calls := 0
	if _, err := m.Memoize(ctx, "k", time.Minute, counter(&calls, []string{"a"})); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Minute + time.Second)
	got, err := m.Memoize(ctx, "k", time.Minute, counter(&calls, []string{"b"}))
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("producer called %d times, want 2", calls)
	}
	if diff := cmp.Diff([]string{"b"}, got); diff != "" {
		t.Errorf("Memoize() mismatch (-want +got):\n%s", diff)
	}
	if store.Len() != 1 {
		t.Errorf("store holds %d entries, want 1", store.Len())
	}
}

func TestMemoizeKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	m := New[[]string](NewMemoryStore[[]string](), time.Minute)

	calls := 0
	a, _ := m.Memoize(ctx, Key("classes", "202431"), time.Minute, counter(&calls, []string{"fall"}))
	b, _ := m.Memoize(ctx, Key("classes", "202511"), time.Minute, counter(&calls, []string{"spring"}))
	if calls != 2 {
		t.Errorf("producer called %d times, want 2", calls)
	}
	if a[0] != "fall" || b[0] != "spring" {
		t.Errorf("got %v and %v", a, b)
	}
}

func TestMemoizeDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	m := New[[]string](NewMemoryStore[[]string](), time.Minute)

	boom := errors.New("upstream down")
	calls := 0
	failing := func(context.Context) ([]string, error) {
		calls++
		return nil, boom
	}
	if _, err := m.Memoize(ctx, "k", time.Minute, failing); !errors.Is(err, boom) {
		t.Fatalf("Memoize() error = %v, want %v", err, boom)
	}
	got, err := m.Memoize(ctx, "k", time.Minute, counter(&calls, []string{"ok"}))
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("producer called %d times, want 2", calls)
	}
	if diff := cmp.Diff([]string{"ok"}, got); diff != "" {
		t.Errorf("Memoize() mismatch (-want +got):\n%s", diff)
	}
}

func TestGetOrSetForceUpdate(t *testing.T) {
	ctx := context.Background()
	m := New[[]string](NewMemoryStore[[]string](), time.Minute)

	calls := 0
	if _, err := m.GetOrSet(ctx, "k", counter(&calls, []string{"a"}), false); err != nil {
		t.Fatal(err)
	}
	got, err := m.GetOrSet(ctx, "k", counter(&calls, []string{"b"}), true)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 || got[0] != "b" {
		t.Errorf("GetOrSet(force) = %v after %d calls", got, calls)
	}
	got, _ = m.GetOrSet(ctx, "k", counter(&calls, []string{"c"}), false)
	if calls != 2 || got[0] != "b" {
		t.Errorf("GetOrSet() = %v after %d calls, want cached b", got, calls)
	}
}

type brokenStore struct{}

func (brokenStore) Load(context.Context, string) (Entry[int], bool, error) {
	return Entry[int]{}, false, errors.New("load failed")
}

func (brokenStore) Save(context.Context, string, Entry[int]) error {
	return errors.New("save failed")
}

func TestMemoizeSurvivesStoreFailures(t *testing.T) {
	m := New[int](brokenStore{}, time.Minute)
	got, err := m.Memoize(context.Background(), "k", time.Minute, func(context.Context) (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Memoize() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Memoize() = %d, want 42", got)
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		fn   string
		args []string
		want string
	}{
		{"classes", []string{"202431"}, "classes:202431"},
		{"terms", nil, "terms"},
		{"search", []string{"a b/c"}, "search:a_b_c"},
	}
	for _, tt := range tests {
		if got := Key(tt.fn, tt.args...); got != tt.want {
			t.Errorf("Key(%q, %v) = %q, want %q", tt.fn, tt.args, got, tt.want)
		}
	}
}
