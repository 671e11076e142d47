package section

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/morikuni/failure/v2"
)

// ErrorCode defines error types for section identity
type ErrorCode string

const (
	ErrInvalidRef      ErrorCode = "InvalidRef"
	ErrInvalidSemester ErrorCode = "InvalidSemester"
	ErrInvalidCampus   ErrorCode = "InvalidCampus"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

var validate = validator.New()

// Ref identifies one class offering within a term
type Ref struct {
	// Term is the six digit term code, e.g. 202431
	Term string `json:"term" validate:"required,len=6,numeric"`
	// CRN is opaque; it is not guaranteed to be numeric across portals
	CRN string `json:"crn" validate:"required"`
}

// NewRef creates a Ref from raw user input, trimming surrounding space
func NewRef(term, crn string) Ref {
	return Ref{Term: strings.TrimSpace(term), CRN: strings.TrimSpace(crn)}
}

// Validate reports whether both identity fields are usable
func (r Ref) Validate() error {
	if err := validate.Struct(r); err != nil {
		return failure.Wrap(err, failure.WithCode(ErrInvalidRef),
			failure.Message("Invalid term code or CRN"),
			failure.Context{"term": r.Term, "crn": r.CRN},
		)
	}
	return nil
}

func (r Ref) String() string {
	return r.Term + "/" + r.CRN
}

// Semester is the middle digit of a term code
type Semester string

const (
	SemesterSpring Semester = "spring"
	SemesterSummer Semester = "summer"
	SemesterFall   Semester = "fall"
)

// Campus is the last digit of a term code
type Campus string

const (
	CampusCollegeStation Campus = "cs"
	CampusGalveston      Campus = "gv"
	CampusOther          Campus = "un"
)

var (
	semesterIndex = map[Semester]int{SemesterSpring: 1, SemesterSummer: 2, SemesterFall: 3}
	campusIndex   = map[Campus]int{CampusCollegeStation: 1, CampusGalveston: 2, CampusOther: 3}
)

// TermCode builds a term code as [year][semester][campus], e.g. 2024 fall cs -> 202431
func TermCode(year int, semester Semester, campus Campus) (string, error) {
	s, ok := semesterIndex[Semester(strings.ToLower(string(semester)))]
	if !ok {
		return "", failure.New(ErrInvalidSemester,
			failure.Message("Semester must be one of spring, summer, fall"),
			failure.Context{"semester": string(semester)},
		)
	}
	c, ok := campusIndex[Campus(strings.ToLower(string(campus)))]
	if !ok {
		return "", failure.New(ErrInvalidCampus,
			failure.Message("Campus must be one of cs, gv, un"),
			failure.Context{"campus": string(campus)},
		)
	}
	return fmt.Sprintf("%04d%d%d", year, s, c), nil
}
