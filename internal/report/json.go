package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/privacypulse/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is written alongside the report when set.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion wraps every document in an envelope carrying the
// PrivacyPulse version.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Envelope wraps a document with the version that produced it.
type Envelope struct {
	Version string `json:"version"`
	Report  any    `json:"report"`
}

// ComparisonJSON is the JSON form of a comparison: both reports plus the
// derived figures.
type ComparisonJSON struct {
	A                *model.ScanReport `json:"a"`
	B                *model.ScanReport `json:"b"`
	ScoreDelta       float64           `json:"score_delta"`
	TrackerDelta     int               `json:"tracker_delta"`
	TransparencyDiff float64           `json:"transparency_diff"`
	SharedTrackers   []string          `json:"shared_trackers"`

	// MoreTransparent is the URL of the more transparent site, empty on a
	// tie.
	MoreTransparent string `json:"more_transparent,omitempty"`
}

// NewComparisonJSON derives the JSON form of c.
func NewComparisonJSON(c *model.Comparison) *ComparisonJSON {
	out := &ComparisonJSON{
		A:                c.A,
		B:                c.B,
		ScoreDelta:       c.ScoreDelta(),
		TrackerDelta:     c.TrackerDelta(),
		TransparencyDiff: c.TransparencyDiff(),
		SharedTrackers:   c.SharedTrackers(),
	}
	if out.SharedTrackers == nil {
		out.SharedTrackers = []string{}
	}
	if winner := c.MoreTransparent(); winner != nil {
		out.MoreTransparent = siteText(winner)
	}
	return out
}

// Write outputs the report in JSON format.
func (w *JSONWriter) Write(report *model.ScanReport) (int, error) {
	return w.writeJSON(report)
}

// WriteComparison outputs the comparison in JSON format.
func (w *JSONWriter) WriteComparison(c *model.Comparison) (int, error) {
	return w.writeJSON(NewComparisonJSON(c))
}

// WriteSummary outputs a bare result object, as stored by the last scan.
func (w *JSONWriter) WriteSummary(s *model.ScanSummary) (int, error) {
	return w.writeJSON(s)
}

// writeJSON marshals v, wrapped in an Envelope when a version is set, and
// writes it followed by a newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	if w.version != "" {
		v = Envelope{Version: w.version, Report: v}
	}

	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
