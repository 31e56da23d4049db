package report

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/privacypulse/internal/model"
)

// Writer writes single-site scan reports.
type Writer interface {
	// Write outputs the report and returns the number of bytes written.
	Write(report *model.ScanReport) (int, error)
}

// ComparisonWriter writes two-site comparisons.
type ComparisonWriter interface {
	// WriteComparison outputs the comparison and returns the number of
	// bytes written.
	WriteComparison(c *model.Comparison) (int, error)
}

// MultiWriter writes to several Writers in turn.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to every writer and returns the total bytes
// written. It stops at the first error.
func (m *MultiWriter) Write(report *model.ScanReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter holds the output destination shared by all writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// Placeholder texts shown for missing values.
const (
	noSummaryText  = "No summary"
	unknownText    = "Unknown"
	noTrackersText = "No trackers found"
	noCookiesText  = "No cookies listed"
)

// strict removes every HTML element from backend text. A bluemonday policy
// is safe for concurrent use once built.
var strict = bluemonday.StrictPolicy()

// sanitize strips HTML from s and collapses runs of whitespace.
func sanitize(s string) string {
	return strings.Join(strings.Fields(strict.Sanitize(s)), " ")
}

// title capitalizes each word of s. It builds a caser per call because a
// cases.Caser is not safe for concurrent use.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

// rawText renders an opaque backend list item: strings are unquoted,
// anything else is shown as compact JSON.
func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func rawTexts(items []json.RawMessage) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, rawText(item))
	}
	return out
}

// summaryText returns the report's summary text or a placeholder.
func summaryText(s model.ScanSummary) string {
	if s.Summary == "" {
		return noSummaryText
	}
	return s.Summary
}

// siteText returns the summary URL, falling back to the report target.
func siteText(r *model.ScanReport) string {
	if r.Summary.URL != "" {
		return r.Summary.URL
	}
	if r.Target != "" {
		return r.Target
	}
	return unknownText
}

// classificationText returns the classification or a placeholder.
func classificationText(s model.ScanSummary) string {
	if s.Classification == "" {
		return unknownText
	}
	return s.Classification
}

// statusText describes how the scan ended.
func statusText(r *model.ScanReport) string {
	switch {
	case r.Cancelled:
		return "Cancelled (partial results)"
	case r.Summary.Error != "":
		return "Error - " + r.Summary.Error
	case r.Failed:
		return "Backend unavailable (local results only)"
	case r.Outcome.Degraded():
		return "Complete with warnings"
	default:
		return "Complete"
	}
}

// truncateString truncates s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// categoryCounts counts trackers per category in first-seen order.
func categoryCounts(trackers []model.TrackerRecord) ([]model.Category, map[model.Category]int) {
	var order []model.Category
	counts := make(map[model.Category]int)
	for _, t := range trackers {
		c := t.Category
		if c == "" {
			c = model.CategoryUnknown
		}
		if _, ok := counts[c]; !ok {
			order = append(order, c)
		}
		counts[c]++
	}
	return order, counts
}
