// Package fault carries the protocol's short rejection codes. Codes are
// stable API surface: clients and tests match on them, messages are advisory.
package fault

import "errors"

type Error struct {
	Code    string
	Message string
}

func New(code, message string) *Error { return &Error{Code: code, Message: message} }

func (e *Error) Error() string { return e.Code + ": " + e.Message }

// CodeOf extracts the short code, or "" for foreign errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
