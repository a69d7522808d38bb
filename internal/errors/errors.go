// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when GITHUB_TOKEN or GITHUB_USERNAME is missing.
var ErrNotConfigured = errors.New("GitHub service not configured")

// UpstreamUnavailableError is returned when a call to GitHub fails in transport or with a non-2xx status.
type UpstreamUnavailableError struct {
	Op  string
	Err error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error {
	return e.Err
}

// InvalidSortError is returned when a listing is requested with an unknown sort key.
type InvalidSortError struct {
	Sort string
}

func (e *InvalidSortError) Error() string {
	return fmt.Sprintf("invalid sort: %q, expected one of 'updated', 'created', 'pushed', 'full_name'", e.Sort)
}
