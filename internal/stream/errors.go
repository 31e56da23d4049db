package stream

import (
	"errors"
	"fmt"
)

// ErrNetworkFailure wraps every error that aborted a scan before a body
// could be interpreted: non-2xx statuses, connection errors and failed
// reads.
var ErrNetworkFailure = errors.New("network failure")

// ErrNilResponse is returned when Parse is given no response.
var ErrNilResponse = errors.New("nil response")

// StatusError reports a non-2xx HTTP status.
type StatusError struct {
	StatusCode int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.StatusCode)
}

func networkFailure(cause error) error {
	return fmt.Errorf("%w: %w", ErrNetworkFailure, cause)
}
