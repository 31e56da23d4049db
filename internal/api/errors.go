package api

import "errors"

var (
	// ErrInvalidBaseURL is returned by New for a base URL that is not an
	// absolute http or https URL.
	ErrInvalidBaseURL = errors.New("invalid backend base URL")

	// ErrBackendFailed wraps every failure of a one-shot scan.
	ErrBackendFailed = errors.New("backend scan failed")

	// ErrHistoryUnavailable wraps every failure to list remote history.
	ErrHistoryUnavailable = errors.New("scan history unavailable")

	// ErrAwarenessUnavailable wraps every failure to fetch awareness content.
	ErrAwarenessUnavailable = errors.New("awareness content unavailable")
)
