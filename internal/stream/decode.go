package stream

import (
	"bytes"
	"encoding/json"

	"github.com/nao1215/privacypulse/internal/model"
)

// DecodeSummary decodes a JSON document into a ScanSummary with every
// default applied. It reports false when data is not valid JSON or is the
// literal null.
//
// A valid document that is not an object yields a default summary. When
// the document has no usable "summary" field, raw is used instead. The
// summary text is always cleaned.
func DecodeSummary(data []byte, raw string) (model.ScanSummary, bool) {
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) || bytes.Equal(trimmed, []byte("null")) {
		return model.ScanSummary{}, false
	}

	out := model.NewScanSummary()
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return model.ScanSummary{}, false
		}
	}
	if !hasSummaryField(trimmed) {
		out.Summary = raw
	}
	out.Summary = CleanRepetitiveText(out.Summary)
	return out, true
}

// hasSummaryField reports whether data is an object whose "summary" field
// is a string or an object.
func hasSummaryField(data []byte) bool {
	if data[0] != '{' {
		return false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return false
	}
	field, ok := fields["summary"]
	if !ok || bytes.Equal(bytes.TrimSpace(field), []byte("null")) {
		return false
	}
	var s model.Summary
	return json.Unmarshal(field, &s) == nil
}
