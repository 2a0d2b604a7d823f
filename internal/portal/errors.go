package portal

import (
	"errors"
	"fmt"
)

// Portal errors.
var (
	ErrSessionExpired     = errors.New("session expired: a new session cookie is required")
	ErrTokenNotFound      = errors.New("csrf token not found on page")
	ErrInitialDataMissing = errors.New("schedule grid initial data not found on page")
	ErrMalformedResponse  = errors.New("malformed component response")
	ErrCursorStuck        = errors.New("remote cursor does not converge")
)

// StatusError is returned for non-success HTTP responses.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}
