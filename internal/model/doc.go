// Package model defines the data structures shared by the privacypulse
// packages.
//
// The main types are:
//   - TrackerRecord: one third-party tracker embedded in a page
//   - ScanSummary: the merged result object of one scan (backend policy
//     summary plus trackers), also the value persisted as "last summary"
//   - Summary: a tagged union for the backend's "summary" field, which is
//     either plain text or a nested summary object
//   - Page: a document snapshot produced by the page fetcher
//   - ScanReport: one scan attempt with its warnings, outcome and timing
//   - Comparison: two scan reports side by side
//
// Types live in their own package because the detector, the stream parser,
// the pipeline and the report writers all exchange them.
//
// Everything here serializes to JSON for report output and database storage.
package model
