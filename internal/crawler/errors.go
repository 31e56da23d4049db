package crawler

import "errors"

var (
	// ErrInvalidURL is returned for targets that are not http(s) URLs.
	ErrInvalidURL = errors.New("invalid target URL")

	// ErrDisallowedByRobots is returned when robots.txt forbids fetching
	// the target with the configured user agent.
	ErrDisallowedByRobots = errors.New("disallowed by robots.txt")

	// ErrNoPolicyLink is returned when a page has no privacy policy link.
	ErrNoPolicyLink = errors.New("no privacy policy link found")
)
