// Package stream interprets scan backend responses incrementally.
//
// The backend answers a scan request with a body that may arrive in many
// chunks, may be JSON or plain text, and may be cut off before it is
// complete. Parser reads the body chunk by chunk, publishes a partial
// summary after every chunk, and once the body ends picks one of these
// outcomes:
//
//   - empty body: the response has no body stream; its text is read once
//     and used as the summary
//   - JSON: the accumulated text parses as JSON
//   - repaired JSON: the text parses after a missing "]" and "}" are added
//   - malformed JSON: repair failed; the cleaned text becomes the summary
//   - plain text: the response was not JSON; the cleaned text becomes the
//     summary
//
// Partial summaries never involve JSON parsing; only the final result
// does. A non-2xx status or a transport error yields the fixed error
// summary (model.NewErrorSummary) and a warning.
//
// Results are delivered to an Observer, or as Snapshot values on a channel
// with Parser.Stream. Each Parse call owns its state, so one Parser may
// serve concurrent scans.
package stream
