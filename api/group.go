package api

import (
	"maps"
	"slices"
	"strings"

	"github.com/aggieseek/seatwatch/api/section"
	"github.com/samber/lo"
)

// Subjects returns the sorted subjects offered in a listing
func Subjects(classes []section.Class) []string {
	bySubject := lo.GroupBy(classes, func(c section.Class) string {
		return strings.ToUpper(c.Subject())
	})
	delete(bySubject, "")
	subjects := lo.Keys(bySubject)
	slices.Sort(subjects)
	return subjects
}

// Courses returns the sorted course numbers offered under subject
func Courses(classes []section.Class, subject string) []string {
	courses := lo.FilterMap(classes, func(c section.Class, _ int) (string, bool) {
		return c.Course(), c.Course() != "" && strings.EqualFold(c.Subject(), subject)
	})
	courses = lo.Uniq(courses)
	slices.Sort(courses)
	return courses
}

// Sections returns copies of the listing records of one course, in
// listing order. The copies are safe to enrich without touching a
// cached listing.
func Sections(classes []section.Class, subject, course string) []section.Class {
	return lo.FilterMap(classes, func(c section.Class, _ int) (section.Class, bool) {
		if !strings.EqualFold(c.Subject(), subject) || c.Course() != course {
			return nil, false
		}
		return maps.Clone(c), true
	})
}
