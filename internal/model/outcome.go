package model

// Outcome is how a backend response was interpreted.
type Outcome string

const (
	// OutcomeEmptyBody means the response had no readable body stream.
	OutcomeEmptyBody Outcome = "empty_body"

	// OutcomeJSON means a JSON response parsed as sent.
	OutcomeJSON Outcome = "json"

	// OutcomeRepaired means a truncated JSON response parsed after closing
	// brackets were appended.
	OutcomeRepaired Outcome = "repaired_json"

	// OutcomeMalformed means a JSON response could not be parsed even after
	// repair; the cleaned text was used as the summary.
	OutcomeMalformed Outcome = "malformed_json"

	// OutcomePlainText means a non-JSON response used as summary text.
	OutcomePlainText Outcome = "plain_text"

	// OutcomeNetworkFailure means the request failed or returned a non-2xx
	// status.
	OutcomeNetworkFailure Outcome = "network_failure"

	// OutcomeCancelled means the caller stopped the scan mid-stream.
	OutcomeCancelled Outcome = "cancelled"
)

// String returns the outcome name.
func (o Outcome) String() string {
	return string(o)
}

// Degraded reports whether the summary was produced from something other
// than a well-formed body.
func (o Outcome) Degraded() bool {
	switch o {
	case OutcomeJSON, OutcomePlainText:
		return false
	default:
		return true
	}
}
