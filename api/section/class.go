package section

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Portal listing keys
const (
	ClassKeyTerm    = "SWV_CLASS_SEARCH_TERM"
	ClassKeyCRN     = "SWV_CLASS_SEARCH_CRN"
	ClassKeySubject = "SWV_CLASS_SEARCH_SUBJECT"
	ClassKeyCourse  = "SWV_CLASS_SEARCH_COURSE"
	ClassKeySection = "SWV_CLASS_SEARCH_SECTION"
	ClassKeyTitle   = "SWV_CLASS_SEARCH_TITLE"

	ClassKeyInstructors = "SWV_CLASS_SEARCH_INSTRCTR_JSON"

	// KeySeats holds the seat sub-mapping merged in by seat enrichment
	KeySeats = "SEATS"

	TermKeyCode = "STVTERM_CODE"
	TermKeyDesc = "STVTERM_DESC"
)

// Class is one flat record of a term listing. It doubles as the section
// stub that seat enrichment mutates in place.
type Class map[string]any

func (c Class) Term() string { return stringValue(c[ClassKeyTerm]) }
func (c Class) CRN() string { return stringValue(c[ClassKeyCRN]) }
func (c Class) Subject() string { return stringValue(c[ClassKeySubject]) }
func (c Class) Course() string { return stringValue(c[ClassKeyCourse]) }

// Ref returns the identity of the class
func (c Class) Ref() Ref {
	return NewRef(c.Term(), c.CRN())
}

// HasSeats reports whether seat enrichment succeeded for the class
func (c Class) HasSeats() bool {
	_, ok := c[KeySeats]
	return ok
}

// Term is one record of the term listing
type Term map[string]any

func (t Term) Code() string { return stringValue(t[TermKeyCode]) }

// Seats are the three counters scraped from the seat page
type Seats struct {
	Actual    int `json:"ACTUAL"`
	Capacity  int `json:"CAPACITY"`
	Remaining int `json:"REMAINING"`
}

// Map returns the seat sub-mapping stored on a Class
func (s Seats) Map() map[string]any {
	return map[string]any{
		"ACTUAL":    s.Actual,
		"CAPACITY":  s.Capacity,
		"REMAINING": s.Remaining,
	}
}

// SeatPage is everything the seat page exposes for one section
type SeatPage struct {
	Seats   Seats  `json:"SEATS"`
	CRN     string `json:"CRN"`
	Title   string `json:"TITLE"`
	Course  string `json:"COURSE"`
	Section string `json:"SECTION"`
	Term    string `json:"TERM"`
}

// simpleKeys renames listing keys; keys missing from the table are dropped
var simpleKeys = map[string]string{
	ClassKeyCRN:                      "crn",
	ClassKeyTitle:                    "title",
	ClassKeySubject:                  "subject",
	ClassKeyCourse:                   "course",
	ClassKeySection:                  "section",
	"SWV_CLASS_SEARCH_SITE":          "site",
	"SWV_CLASS_SEARCH_PTRM":          "partOfTerm",
	"SWV_CLASS_SEARCH_SCHD":          "type",
	"SWV_CLASS_SEARCH_INST_TYPE":     "instructorType",
	"SWV_CLASS_SEARCH_INSTRCTR_JSON": "instructors",
	"SWV_CLASS_SEARCH_JSON_CLOB":     "datetime",
	"SWV_CLASS_SEARCH_ATTRIBUTES":    "attributes",
	"SWV_CLASS_SEARCH_SESSION":       "duration",
	"HRS_COLUMN_FIELD":               "hours",
	KeySeats:                         "seats",
}

// Simplify reshapes listing records into short lowercase keys. JSON
// columns are decoded and the attribute column is split on "|".
func Simplify(classes []Class) []map[string]any {
	return lo.Map(classes, func(c Class, _ int) map[string]any {
		out := make(map[string]any, len(simpleKeys))
		for k, v := range c {
			name, ok := simpleKeys[k]
			if !ok {
				continue
			}
			out[name] = v
		}
		for _, k := range []string{"datetime", "instructors"} {
			if s, ok := out[k].(string); ok {
				var decoded any
				if err := json.Unmarshal([]byte(s), &decoded); err == nil {
					out[k] = decoded
				}
			}
		}
		if s, ok := out["attributes"].(string); ok {
			out["attributes"] = lo.Map(strings.Split(s, "|"), func(a string, _ int) string {
				return strings.TrimSpace(a)
			})
		}
		return out
	})
}

func stringValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
