// Package detector finds third-party trackers embedded in a document.
//
// Detection looks at the src attribute of script, iframe and img elements,
// in that order, skips resources served from the page's own host, and
// derives a short tracker name and a category from each remaining host.
// Results are deduplicated on name and domain, first occurrence winning.
//
// Merge combines a backend-supplied tracker list with a local detection
// result: backend records come first, followed by local records the backend
// did not already report.
//
// Detection never fails. Elements whose URL cannot be resolved are skipped
// and, when a logger is configured, reported at debug level.
package detector
