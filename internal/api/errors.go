package api

import (
	"errors"
	"fmt"
)

// ErrUnexpectedResponse is returned when the server answers with something
// that is not the documented JSON payload.
var ErrUnexpectedResponse = errors.New("unexpected response from server")

// Error is an application-level failure: the server answered with
// success=false.
type Error struct {
	StatusCode int
	Reason     string
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Reason
}

// IsApplicationError reports whether err carries a server-provided reason,
// as opposed to a transport failure.
func IsApplicationError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
