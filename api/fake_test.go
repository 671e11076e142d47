package api

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aggieseek/seatwatch/api/portal"
	"github.com/aggieseek/seatwatch/api/section"
	"github.com/morikuni/failure/v2"
)

// fakePortal is an in-memory Portal that counts calls
type fakePortal struct {
	general section.Result

	// results by resource name; resources without one succeed with
	// a payload naming the resource
	results map[string]section.Result
	// delay by resource name
	delay map[string]time.Duration
	// block makes the named resource wait for its context
	block map[string]bool

	seats    map[string]section.SeatPage
	seatErrs map[string]error

	classes    []section.Class
	classesErr error
	terms      []section.Term

	mu          sync.Mutex
	fetchCalls  map[string]int
	generalHits int
	classCalls  int
	termCalls   int
	seatCalls   int

	inflight    atomic.Int32
	maxInflight atomic.Int32
}

var _ Portal = (*fakePortal)(nil)

func newFakePortal() *fakePortal {
	return &fakePortal{
		general:    section.Succeeded(portal.GeneralInfoName, map[string]any{"DEPT": "CSCE", "COURSE_NUMBER": "121"}),
		results:    map[string]section.Result{},
		delay:      map[string]time.Duration{},
		block:      map[string]bool{},
		seats:      map[string]section.SeatPage{},
		seatErrs:   map[string]error{},
		fetchCalls: map[string]int{},
	}
}

func (p *fakePortal) GeneralInfo(ctx context.Context, ref section.Ref) section.Result {
	p.mu.Lock()
	p.generalHits++
	p.mu.Unlock()
	return p.general
}

func (p *fakePortal) Fetch(ctx context.Context, res section.Resource, ref section.Ref) section.Result {
	n := p.inflight.Add(1)
	defer p.inflight.Add(-1)
	for {
		m := p.maxInflight.Load()
		if n <= m || p.maxInflight.CompareAndSwap(m, n) {
			break
		}
	}

	p.mu.Lock()
	p.fetchCalls[res.Name]++
	r, ok := p.results[res.Name]
	d := p.delay[res.Name]
	block := p.block[res.Name]
	p.mu.Unlock()

	if block {
		<-ctx.Done()
		return section.Failed(res.Name, section.StatusException, 0, ctx.Err().Error())
	}
	if d > 0 {
		time.Sleep(d)
	}
	if ok {
		return r
	}
	return section.Succeeded(res.Name, map[string]any{"resource": res.Name})
}

func (p *fakePortal) totalFetches() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, n := range p.fetchCalls {
		total += n
	}
	return total
}

func (p *fakePortal) SyllabusURL(ref section.Ref) string {
	return "https://compass.test/syllabus?term=" + ref.Term + "&crn=" + ref.CRN
}

func (p *fakePortal) CVURL(pidm, name string) string {
	return "https://compass.test/cv?pidm=" + pidm + "&name=" + name
}

func (p *fakePortal) Seats(ctx context.Context, ref section.Ref) (section.SeatPage, error) {
	p.mu.Lock()
	p.seatCalls++
	page, ok := p.seats[ref.CRN]
	err := p.seatErrs[ref.CRN]
	p.mu.Unlock()

	if err := ref.Validate(); err != nil {
		return section.SeatPage{}, err
	}
	if err != nil {
		return section.SeatPage{}, err
	}
	if !ok {
		return section.SeatPage{}, failure.New(portal.ErrSectionNotFound)
	}
	return page, nil
}

func (p *fakePortal) Classes(ctx context.Context, term string) ([]section.Class, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.classCalls++
	if p.classesErr != nil {
		return nil, p.classesErr
	}
	return p.classes, nil
}

func (p *fakePortal) Terms(ctx context.Context) ([]section.Term, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.termCalls++
	return p.terms, nil
}

func testResources() []section.Resource {
	return portal.Resources
}
