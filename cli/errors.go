package cli

// ErrorCode defines error types for CLI operations
type ErrorCode string

const (
	InvalidArguments ErrorCode = "InvalidArguments"
	SectionNotFound  ErrorCode = "SectionNotFound"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}
