package api

import (
	"context"
	"time"

	"github.com/aggieseek/seatwatch/api/cache"
	"github.com/aggieseek/seatwatch/api/portal"
	"github.com/aggieseek/seatwatch/api/section"
	"github.com/aggieseek/seatwatch/api/snapshot"
	"github.com/aggieseek/seatwatch/log"
	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
)

// Portal is everything the service needs from the registration portal
type Portal interface {
	DetailSource
	LinkBuilder
	SeatSource
	Classes(ctx context.Context, term string) ([]section.Class, error)
	Terms(ctx context.Context) ([]section.Term, error)
}

var _ Portal = (*portal.Client)(nil)

// ClassCache fronts the term listing fetch. Fetch errors must pass
// through uncached.
type ClassCache interface {
	Classes(ctx context.Context, term string, fetch cache.Producer[[]section.Class]) ([]section.Class, error)
}

// Options configures a Service
type Options struct {
	FanoutLimit      int
	AggregateTimeout time.Duration
	// Resources defaults to portal.Resources
	Resources []section.Resource
	// ClassCache defaults to an in-memory memo with cache.DefaultTTL
	ClassCache ClassCache
	// TermsTTL defaults to cache.DefaultTTL
	TermsTTL time.Duration
}

// Service is the entry point of the route layer, the CLI and the MCP
// server. It owns the process-wide caches.
type Service struct {
	portal    Portal
	agg       *Aggregator
	resources []section.Resource
	limit     int
	classes   ClassCache
	terms     *cache.Memo[[]section.Term]
}

func NewService(p Portal, opts Options) *Service {
	resources := opts.Resources
	if resources == nil {
		resources = portal.Resources
	}
	classes := opts.ClassCache
	if classes == nil {
		classes = NewMemoClassCache(cache.NewMemoryStore[[]section.Class](), cache.DefaultTTL)
	}
	return &Service{
		portal: p,
		agg: NewAggregator(p, p, AggregatorOptions{
			Limit:   opts.FanoutLimit,
			Timeout: opts.AggregateTimeout,
		}),
		resources: resources,
		limit:     opts.FanoutLimit,
		classes:   classes,
		terms:     cache.New[[]section.Term](cache.NewMemoryStore[[]section.Term](), opts.TermsTTL),
	}
}

// Section returns the merged detail record of ref
func (s *Service) Section(ctx context.Context, ref section.Ref) *section.Record {
	return s.agg.Aggregate(ctx, ref, s.resources)
}

// Seats returns the seat page of one section
func (s *Service) Seats(ctx context.Context, ref section.Ref) (section.SeatPage, error) {
	return s.portal.Seats(ctx, ref)
}

// SeatBatch returns one stub per ref, enriched with seats where the seat
// page could be read
func (s *Service) SeatBatch(ctx context.Context, refs []section.Ref) []section.Class {
	stubs := lo.Map(refs, func(ref section.Ref, _ int) section.Class {
		return section.Class{section.ClassKeyTerm: ref.Term, section.ClassKeyCRN: ref.CRN}
	})
	EnrichSeats(ctx, s.portal, stubs, s.limit)
	return stubs
}

// Classes returns the listing of term. An empty listing fails with
// ErrNoClasses and a failed fetch with ErrClassesUnavailable; neither
// is cached.
func (s *Service) Classes(ctx context.Context, term string) ([]section.Class, error) {
	return s.classes.Classes(ctx, term, func(ctx context.Context) ([]section.Class, error) {
		classes, err := s.portal.Classes(ctx, term)
		if err != nil {
			return nil, failure.Wrap(err, failure.WithCode(ErrClassesUnavailable),
				failure.Message("Failed to fetch classes"),
				failure.Context{"term": term})
		}
		if len(classes) == 0 {
			return nil, failure.New(ErrNoClasses,
				failure.Message("No classes found"),
				failure.Context{"term": term})
		}
		return classes, nil
	})
}

// Terms returns every term the portal knows
func (s *Service) Terms(ctx context.Context) ([]section.Term, error) {
	return s.terms.GetOrSet(ctx, cache.Key("terms"), s.portal.Terms, false)
}

// Term returns the term record whose code is code
func (s *Service) Term(ctx context.Context, code string) (section.Term, error) {
	terms, err := s.Terms(ctx)
	if err != nil {
		return nil, err
	}
	term, ok := lo.Find(terms, func(t section.Term) bool {
		return t.Code() == code
	})
	if !ok {
		return nil, failure.New(ErrTermNotFound,
			failure.Message("Term not found"),
			failure.Context{"term": code})
	}
	return term, nil
}

// Subjects returns the subjects offered in term
func (s *Service) Subjects(ctx context.Context, term string) ([]string, error) {
	classes, err := s.Classes(ctx, term)
	if err != nil {
		return nil, err
	}
	return Subjects(classes), nil
}

// Courses returns the course numbers offered under subject in term
func (s *Service) Courses(ctx context.Context, term, subject string) ([]string, error) {
	classes, err := s.Classes(ctx, term)
	if err != nil {
		return nil, err
	}
	return Courses(classes, subject), nil
}

// Sections returns the seat-enriched sections of one course
func (s *Service) Sections(ctx context.Context, term, subject, course string) ([]section.Class, error) {
	classes, err := s.Classes(ctx, term)
	if err != nil {
		return nil, err
	}
	sections := Sections(classes, subject, course)
	EnrichSeats(ctx, s.portal, sections, s.limit)
	return sections, nil
}

// SyllabusURL returns the syllabus link of ref
func (s *Service) SyllabusURL(ref section.Ref) string {
	return s.portal.SyllabusURL(ref)
}

type memoClassCache struct {
	memo *cache.Memo[[]section.Class]
	ttl  time.Duration
}

// NewMemoClassCache caches listings per term in store for ttl
func NewMemoClassCache(store cache.Store[[]section.Class], ttl time.Duration, opts ...cache.Option) ClassCache {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &memoClassCache{memo: cache.New(store, ttl, opts...), ttl: ttl}
}

func (c *memoClassCache) Classes(ctx context.Context, term string, fetch cache.Producer[[]section.Class]) ([]section.Class, error) {
	return c.memo.Memoize(ctx, cache.Key("classes", term), c.ttl, fetch)
}

type snapshotClassCache struct {
	snapshots *snapshot.Cache[[]section.Class]
}

// NewSnapshotClassCache keeps one snapshot history per term in storage
// and serves the latest one while it is younger than window
func NewSnapshotClassCache(storage snapshot.Storage, window time.Duration, opts ...snapshot.Option) ClassCache {
	return &snapshotClassCache{snapshots: snapshot.New[[]section.Class](storage, window, opts...)}
}

func (c *snapshotClassCache) Classes(ctx context.Context, term string, fetch cache.Producer[[]section.Class]) ([]section.Class, error) {
	if classes, ok := c.snapshots.Read(ctx, term); ok {
		return classes, nil
	}
	classes, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.snapshots.Write(ctx, term, classes); err != nil {
		log.Warn("Failed to write class snapshot", "term", term, "error", err)
	}
	return classes, nil
}
