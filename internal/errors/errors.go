// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrInvalidRepoFormat is returned when a repository string in the config is not in 'owner/name' format.
type ErrInvalidRepoFormat struct {
	Repo string
}

func (e *ErrInvalidRepoFormat) Error() string {
	return fmt.Sprintf("invalid repository format: %q, expected 'owner/name'", e.Repo)
}

// RequestError is returned when a GitHub API request fails, either in transport
// or with a non-success HTTP status.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// ParseError is returned when an issue timestamp is missing or malformed.
type ParseError struct {
	Issue int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("issue #%d: cannot parse %s %q: %v", e.Issue, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NegativeDurationError is returned under the reject policy when an issue
// appears to have been closed before it was created.
type NegativeDurationError struct {
	Issue int
	Days  int
}

func (e *NegativeDurationError) Error() string {
	return fmt.Sprintf("issue #%d: negative resolution time of %d days", e.Issue, e.Days)
}

// InsufficientDataError is returned when too few complete records remain to
// compute a correlation.
type InsufficientDataError struct {
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d complete records, need at least %d", e.Have, e.Need)
}

// ErrConstantInput is returned when one of the ranked sequences has no variance.
var ErrConstantInput = errors.New("correlation undefined: input is constant")

// ErrMissingClosedAt is wrapped by ParseError when closed_at is absent.
var ErrMissingClosedAt = errors.New("field is missing")
