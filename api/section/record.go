package section

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Keys the aggregate adds on top of the primary fields
const (
	KeyCourseName      = "COURSE_NAME"
	KeyInstructor      = "INSTRUCTOR"
	KeyCV              = "CV"
	KeySyllabus        = "SYLLABUS"
	KeyOtherAttributes = "OTHER_ATTRIBUTES"
	KeyErrors          = "ERRORS"
)

// NotAssigned is the instructor name used when no instructor is listed
const NotAssigned = "Not assigned"

// Record is the merged detail of one section. It is owned by the caller
// that requested it and is never cached.
type Record struct {
	// Fields are the primary general info fields, flattened
	Fields map[string]any
	// OtherAttributes maps each sub-resource name to its payload
	OtherAttributes map[string]any

	CourseName string
	Instructor string
	CV         string
	Syllabus   string

	Errors []string
}

// NewRecord creates an empty record with a non-nil error list
func NewRecord() *Record {
	return &Record{Errors: []string{}}
}

// Found reports whether the primary call produced a section
func (r *Record) Found() bool {
	return len(r.Fields) > 0
}

// AddError appends a diagnostic to the record
func (r *Record) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Map flattens the record into the shape served to clients. Primary
// fields win over derived keys on collision; ERRORS is always present.
// A record without primary fields carries only ERRORS.
func (r *Record) Map() map[string]any {
	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}
	if !r.Found() {
		return map[string]any{KeyErrors: errs}
	}

	out := map[string]any{
		KeyCourseName:      r.CourseName,
		KeyInstructor:      r.Instructor,
		KeySyllabus:        r.Syllabus,
		KeyOtherAttributes: r.OtherAttributes,
	}
	if r.CV != "" {
		out[KeyCV] = r.CV
	}
	maps.Copy(out, r.Fields)
	out[KeyErrors] = errs
	return out
}

func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}
