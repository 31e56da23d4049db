package model

import (
	"bytes"
	"encoding/json"
	"errors"
)

// DefaultTone is the tone reported when the backend does not send one.
const DefaultTone = "unknown"

// ClassificationUnknown is the classification used when no scan result is
// available.
const ClassificationUnknown = "Unknown"

// Fixed summary texts produced on failure paths.
const (
	// FetchFailedText is the summary of a streamed scan whose request failed.
	FetchFailedText = "Failed to fetch scan results"

	// BackendFailedText is the summary of a one-shot scan whose request failed.
	BackendFailedText = "Backend scan failed"

	// NoDataText replaces an empty response body.
	NoDataText = "No data returned from server."

	// NoPolicyLinkText is the error recorded when a page has no link to a
	// privacy policy.
	NoPolicyLinkText = "No privacy policy link found"
)

// ScanSummary is the result object of one scan: the backend's policy
// summary merged with locally detected trackers.
//
// The opaque lists (cookies, bullets, highlights, policy, risks) are passed
// through from the backend without interpretation.
type ScanSummary struct {
	// URL is the scanned page, or the policy page when the backend echoes it.
	URL string `json:"url"`

	// Summary is the cleaned summary text, at most 1000 runes.
	Summary string `json:"summary"`

	// Score is the backend transparency score, nominally 0-100. Higher is
	// more transparent.
	// It is passed through unvalidated.
	Score float64 `json:"score"`

	// Classification is the backend risk class (for example "High Risk").
	Classification string `json:"classification,omitempty"`

	// Trackers lists backend trackers followed by locally detected ones.
	Trackers []TrackerRecord `json:"trackers"`

	// Cookies lists cookies reported by the backend.
	Cookies []json.RawMessage `json:"cookies"`

	// Bullets are short summary points.
	Bullets []json.RawMessage `json:"bullets"`

	// Highlights are notable policy passages.
	Highlights []json.RawMessage `json:"highlights"`

	// Policy holds policy sections.
	Policy []json.RawMessage `json:"policy"`

	// Risks lists identified privacy risks.
	Risks []json.RawMessage `json:"risks"`

	// Tone is the backend's assessment of the policy's tone.
	Tone string `json:"tone"`

	// Error is set when the scan could not run at all, for example when the
	// page has no privacy policy link.
	Error string `json:"error,omitempty"`
}

// NewScanSummary returns a summary with every default applied: score 0,
// empty lists and tone "unknown".
func NewScanSummary() ScanSummary {
	return ScanSummary{
		Trackers:   []TrackerRecord{},
		Cookies:    []json.RawMessage{},
		Bullets:    []json.RawMessage{},
		Highlights: []json.RawMessage{},
		Policy:     []json.RawMessage{},
		Risks:      []json.RawMessage{},
		Tone:       DefaultTone,
	}
}

// NewErrorSummary returns the fixed summary used when fetching a streamed
// scan fails.
func NewErrorSummary() ScanSummary {
	s := NewScanSummary()
	s.Summary = FetchFailedText
	return s
}

// NewBackendFailedSummary returns the summary used when a one-shot backend
// scan of url fails.
func NewBackendFailedSummary(url string) ScanSummary {
	s := NewScanSummary()
	s.URL = url
	s.Summary = BackendFailedText
	s.Classification = ClassificationUnknown
	return s
}

// NewNoPolicyLinkSummary returns the result stored when a page offers no
// privacy policy link.
func NewNoPolicyLinkSummary(url string) ScanSummary {
	s := NewScanSummary()
	s.URL = url
	s.Error = NoPolicyLinkText
	return s
}

// Normalize replaces nil lists with empty ones and an empty tone with
// DefaultTone.
func (s *ScanSummary) Normalize() {
	if s.Trackers == nil {
		s.Trackers = []TrackerRecord{}
	}
	for _, list := range []*[]json.RawMessage{&s.Cookies, &s.Bullets, &s.Highlights, &s.Policy, &s.Risks} {
		if *list == nil {
			*list = []json.RawMessage{}
		}
	}
	if s.Tone == "" {
		s.Tone = DefaultTone
	}
}

// UnmarshalJSON decodes a backend object field by field. A field with an
// unexpected type keeps its default instead of failing the whole object,
// unknown fields are ignored, and the "summary" field may be a string or a
// nested summary object (see Summary).
func (s *ScanSummary) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	out := NewScanSummary()
	decodeField(fields, "url", &out.URL)
	decodeField(fields, "score", &out.Score)
	decodeField(fields, "classification", &out.Classification)
	decodeField(fields, "tone", &out.Tone)
	decodeField(fields, "error", &out.Error)

	if raw, ok := fields["summary"]; ok {
		var sum Summary
		if err := json.Unmarshal(raw, &sum); err == nil {
			out.Summary = sum.Text()
		}
	}
	if raw, ok := fields["trackers"]; ok {
		out.Trackers = decodeTrackers(raw)
	}
	decodeField(fields, "cookies", &out.Cookies)
	decodeField(fields, "bullets", &out.Bullets)
	decodeField(fields, "highlights", &out.Highlights)
	decodeField(fields, "policy", &out.Policy)
	decodeField(fields, "risks", &out.Risks)

	out.Normalize()
	*s = out
	return nil
}

// decodeField decodes fields[name] into dst and leaves dst untouched when
// the field is missing, null or of the wrong type.
func decodeField[T any](fields map[string]json.RawMessage, name string, dst *T) {
	raw, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return
	}
	*dst = v
}

// errSummaryShape is returned for a summary field holding an array.
var errSummaryShape = errors.New("summary must be a string or an object")

// Summary is the backend's "summary" field, which is either plain text or
// a nested summary object whose own Summary holds the text. It is
// normalized once, at decoding time, with Text.
type Summary struct {
	text       string
	structured *ScanSummary
}

// PlainText returns a text summary.
func PlainText(text string) Summary {
	return Summary{text: text}
}

// Structured returns a summary wrapping a nested object.
func Structured(s ScanSummary) Summary {
	return Summary{structured: &s}
}

// IsStructured reports whether the summary wraps a nested object.
func (s Summary) IsStructured() bool {
	return s.structured != nil
}

// Object returns the nested object, or false for a text summary.
func (s Summary) Object() (ScanSummary, bool) {
	if s.structured == nil {
		return ScanSummary{}, false
	}
	return *s.structured, true
}

// Text returns the summary text.
func (s Summary) Text() string {
	if s.structured != nil {
		return s.structured.Summary
	}
	return s.text
}

// UnmarshalJSON accepts a string, an object, or null. Numbers and booleans
// are kept as their JSON text.
func (s *Summary) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*s = Summary{}
		return nil
	case data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = PlainText(text)
		return nil
	case data[0] == '{':
		var nested ScanSummary
		if err := json.Unmarshal(data, &nested); err != nil {
			return err
		}
		*s = Structured(nested)
		return nil
	case data[0] == '[':
		return errSummaryShape
	default:
		*s = PlainText(string(data))
		return nil
	}
}

// MarshalJSON writes the summary text.
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Text())
}
