// Package api is the client for the PrivacyPulse scan backend.
//
// The backend accepts a privacy policy URL on POST /api/scan/ and answers
// with a summary object, streamed or in one piece, and serves recent scans
// on GET /api/dashboard/history. Streamed answers are handed to the
// incremental parser in package stream.
package api
