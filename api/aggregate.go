package api

import (
	"context"
	"strings"
	"time"

	"github.com/aggieseek/seatwatch/api/portal"
	"github.com/aggieseek/seatwatch/api/section"
	"github.com/aggieseek/seatwatch/log"
	"github.com/mitchellh/mapstructure"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// ErrGeneralInfo is the only error of a record whose section does not exist
const ErrGeneralInfo = "failed to fetch general info"

var tracer = otel.Tracer("github.com/aggieseek/seatwatch/api")

// DetailSource issues the primary and secondary detail calls
type DetailSource interface {
	portal.Fetcher
	GeneralInfo(ctx context.Context, ref section.Ref) section.Result
}

// LinkBuilder derives document links without network calls
type LinkBuilder interface {
	SyllabusURL(ref section.Ref) string
	CVURL(pidm, name string) string
}

// AggregatorOptions configures an Aggregator
type AggregatorOptions struct {
	// Limit caps concurrent sub-resource calls. Zero or less means one
	// call per resource.
	Limit int
	// Timeout bounds a whole aggregate. Zero means each call only runs
	// under its own timeout.
	Timeout time.Duration
}

// Aggregator merges the primary detail call and the sub-resource calls
// of one section into a Record
type Aggregator struct {
	source  DetailSource
	links   LinkBuilder
	limit   int
	timeout time.Duration
}

func NewAggregator(source DetailSource, links LinkBuilder, opts AggregatorOptions) *Aggregator {
	return &Aggregator{
		source:  source,
		links:   links,
		limit:   opts.Limit,
		timeout: opts.Timeout,
	}
}

// Aggregate builds the detail record of ref. It never fails: a section
// the portal does not know yields a record holding only ErrGeneralInfo,
// and each failed sub-resource leaves an empty payload plus an error
// entry. The primary call gates the fan-out, so no sub-resource is
// queried for a missing section.
func (a *Aggregator) Aggregate(ctx context.Context, ref section.Ref, resources []section.Resource) *section.Record {
	ctx, span := tracer.Start(ctx, "api.Aggregate", trace.WithAttributes(
		attribute.String("term", ref.Term),
		attribute.String("crn", ref.CRN),
		attribute.Int("resources", len(resources)),
	))
	defer span.End()

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	record := section.NewRecord()

	fields, ok := primaryFields(a.source.GeneralInfo(ctx, ref))
	if !ok {
		log.Info("Section not found", "term", ref.Term, "crn", ref.CRN)
		record.AddError(ErrGeneralInfo)
		span.SetStatus(codes.Error, ErrGeneralInfo)
		return record
	}
	record.Fields = fields
	record.CourseName = courseName(fields)

	record.OtherAttributes = make(map[string]any, len(resources))
	for _, r := range a.fanOut(ctx, ref, resources) {
		record.OtherAttributes[r.Name] = r.Payload
		if !r.OK() {
			record.AddError("failed to fetch %s: %s", r.Name, r.Reason)
		}
	}

	record.Syllabus = a.links.SyllabusURL(ref)
	record.Instructor = section.NotAssigned
	if in, ok := firstInstructor(record.OtherAttributes[portal.ResourceMeetingTimes]); ok {
		record.Instructor = in.Name
		record.CV = a.links.CVURL(in.PIDM, in.Name)
	}

	span.SetAttributes(attribute.Int("errors", len(record.Errors)))
	return record
}

// fanOut issues every resource concurrently. Results land at the index
// of their resource, so completion order does not matter.
func (a *Aggregator) fanOut(ctx context.Context, ref section.Ref, resources []section.Resource) []section.Result {
	results := make([]section.Result, len(resources))

	var g errgroup.Group
	if a.limit > 0 {
		g.SetLimit(a.limit)
	}
	for i, res := range resources {
		g.Go(func() error {
			results[i] = a.source.Fetch(ctx, res, ref)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// primaryFields extracts the flat general info record. The portal may
// wrap it in a one element list.
func primaryFields(r section.Result) (map[string]any, bool) {
	if !r.OK() || portal.IsEmpty(r.Payload) {
		return nil, false
	}
	payload := r.Payload
	if list, ok := payload.([]any); ok {
		payload = list[0]
	}
	fields, ok := payload.(map[string]any)
	if !ok || portal.IsEmpty(fields) {
		return nil, false
	}
	return fields, true
}

type generalInfo struct {
	Dept         string `mapstructure:"DEPT"`
	CourseNumber string `mapstructure:"COURSE_NUMBER"`
}

func courseName(fields map[string]any) string {
	var info generalInfo
	if err := weakDecode(fields, &info); err != nil {
		log.Debug("Unexpected general info shape", "error", err)
	}
	return strings.TrimSpace(info.Dept + " " + info.CourseNumber)
}

type instructor struct {
	Name string `mapstructure:"NAME"`
	// PIDM is the portal's internal person id
	PIDM string `mapstructure:"MORE"`
}

// maxInstructorDepth bounds the search through meeting payloads
const maxInstructorDepth = 4

// firstInstructor finds the first entry carrying a NAME in a meeting
// times payload. Meetings either list instructors directly or nest them
// under an instructor list column.
func firstInstructor(payload any) (instructor, bool) {
	return findInstructor(payload, 0)
}

func findInstructor(v any, depth int) (instructor, bool) {
	if depth > maxInstructorDepth {
		return instructor{}, false
	}
	switch v := v.(type) {
	case []any:
		for _, item := range v {
			if in, ok := findInstructor(item, depth+1); ok {
				return in, true
			}
		}
	case map[string]any:
		if _, ok := v["NAME"]; ok {
			var in instructor
			if err := weakDecode(v, &in); err == nil {
				in.Name = stripPrimaryMark(in.Name)
				if in.Name != "" {
					return in, true
				}
			}
		}
		for _, key := range []string{section.ClassKeyInstructors, "instructors"} {
			if in, ok := findInstructor(v[key], depth+1); ok {
				return in, true
			}
		}
	}
	return instructor{}, false
}

// stripPrimaryMark removes a trailing parenthetical such as "(P)"
func stripPrimaryMark(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasSuffix(name, ")") {
		if i := strings.LastIndex(name, "("); i >= 0 {
			name = strings.TrimSpace(name[:i])
		}
	}
	return name
}

func weakDecode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
