package portal

import (
	"errors"
	"strings"

	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
)

type ErrorCode string

const (
	// ErrHTTPStatus represents a non-2xx answer from the portal
	ErrHTTPStatus ErrorCode = "HTTPStatus"
	// ErrDecode represents a body that could not be decoded or parsed
	ErrDecode ErrorCode = "Decode"
	// ErrTransport represents a request that never produced a response
	ErrTransport ErrorCode = "Transport"
	// ErrSectionNotFound represents a seat page without seat markup
	ErrSectionNotFound ErrorCode = "SectionNotFound"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

var reasonCodes = []ErrorCode{ErrTransport, ErrDecode, ErrHTTPStatus, ErrSectionNotFound}

// reason condenses err into the one line kept on a failed result.
// Errors without a message keep their text.
func reason(err error) string {
	msg := failure.MessageOf(err)
	if msg == "" {
		return err.Error()
	}
	parts := []string{msg.String()}
	if code, ok := lo.Find(reasonCodes, func(c ErrorCode) bool { return failure.Is(err, c) }); ok {
		parts = append([]string{string(code)}, parts...)
	}
	if cause := rootCause(err); cause != err && !lo.Contains(parts, cause.Error()) {
		parts = append(parts, cause.Error())
	}
	return strings.Join(parts, ": ")
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
