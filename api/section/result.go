package section

// Status is the outcome of one sub-resource fetch
type Status string

const (
	StatusOK        Status = "ok"
	StatusHTTPError Status = "http-error"
	StatusException Status = "exception"
)

// Resource is one named secondary query issued per section.
// Name doubles as the merge key and must be unique within a catalog.
type Resource struct {
	Name string
	// Path is relative to the portal base URL
	Path string
}

// Payload is the request body sent for ref. The portal ignores subject
// and course when a CRN is present but rejects bodies without them.
func (r Resource) Payload(ref Ref) map[string]any {
	return map[string]any{
		"term":    ref.Term,
		"subject": nil,
		"course":  nil,
		"crn":     ref.CRN,
	}
}

// Result is the tagged outcome of one fetch. A failed result carries an
// empty mapping as its payload and never aborts an aggregate.
type Result struct {
	Name       string
	Status     Status
	StatusCode int
	Payload    any
	Reason     string
}

// OK reports whether the fetch succeeded
func (r Result) OK() bool {
	return r.Status == StatusOK
}

// Succeeded builds a successful result
func Succeeded(name string, payload any) Result {
	return Result{Name: name, Status: StatusOK, StatusCode: 200, Payload: payload}
}

// Failed builds a failed result with an empty payload
func Failed(name string, status Status, code int, reason string) Result {
	return Result{
		Name:       name,
		Status:     status,
		StatusCode: code,
		Payload:    map[string]any{},
		Reason:     reason,
	}
}
