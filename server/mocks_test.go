package server_test

import (
	"context"

	"github.com/aggieseek/seatwatch/api/section"
)

type mockService struct {
	sectionFn  func(ctx context.Context, ref section.Ref) *section.Record
	seatsFn    func(ctx context.Context, ref section.Ref) (section.SeatPage, error)
	classesFn  func(ctx context.Context, term string) ([]section.Class, error)
	termsFn    func(ctx context.Context) ([]section.Term, error)
	termFn     func(ctx context.Context, code string) (section.Term, error)
	subjectsFn func(ctx context.Context, term string) ([]string, error)
	coursesFn  func(ctx context.Context, term, subject string) ([]string, error)
	sectionsFn func(ctx context.Context, term, subject, course string) ([]section.Class, error)
}

func (m *mockService) Section(ctx context.Context, ref section.Ref) *section.Record {
	if m.sectionFn != nil {
		return m.sectionFn(ctx, ref)
	}
	return section.NewRecord()
}

func (m *mockService) Seats(ctx context.Context, ref section.Ref) (section.SeatPage, error) {
	if m.seatsFn != nil {
		return m.seatsFn(ctx, ref)
	}
	return section.SeatPage{}, nil
}

func (m *mockService) Classes(ctx context.Context, term string) ([]section.Class, error) {
	if m.classesFn != nil {
		return m.classesFn(ctx, term)
	}
	return nil, nil
}

func (m *mockService) Terms(ctx context.Context) ([]section.Term, error) {
	if m.termsFn != nil {
		return m.termsFn(ctx)
	}
	return nil, nil
}

func (m *mockService) Term(ctx context.Context, code string) (section.Term, error) {
	if m.termFn != nil {
		return m.termFn(ctx, code)
	}
	return nil, nil
}

func (m *mockService) Subjects(ctx context.Context, term string) ([]string, error) {
	if m.subjectsFn != nil {
		return m.subjectsFn(ctx, term)
	}
	return nil, nil
}

func (m *mockService) Courses(ctx context.Context, term, subject string) ([]string, error) {
	if m.coursesFn != nil {
		return m.coursesFn(ctx, term, subject)
	}
	return nil, nil
}

func (m *mockService) Sections(ctx context.Context, term, subject, course string) ([]section.Class, error) {
	if m.sectionsFn != nil {
		return m.sectionsFn(ctx, term, subject, course)
	}
	return nil, nil
}
