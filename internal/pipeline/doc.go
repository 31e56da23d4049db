// Package pipeline runs one PrivacyPulse scan as an ordered list of steps:
// fetch the page, resolve its privacy policy link, ask the backend for a
// summary, and merge locally detected trackers into it.
//
// Each step receives the report built so far and records its own failures
// on it. A failed step does not stop the scan unless it halts the pipeline,
// which the backend step does on a network failure.
//
// BatchProcessor runs independent scans concurrently with errgroup. Every
// scan owns its pipeline and therefore its parser state.
package pipeline
