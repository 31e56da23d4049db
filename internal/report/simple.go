package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/privacypulse/internal/model"
)

// ruleWidth is the width of section separators.
const ruleWidth = 70

// SimpleWriter outputs human-readable text for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose adds page details, pipeline steps and the opaque backend
	// lists.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "PRIVACYPULSE REPORT")
	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeTrackers(&sb, report.Summary.Trackers)
	w.writeCookies(&sb, report.Summary)
	if w.verbose {
		w.writeDetails(&sb, report)
	}
	w.writeMessages(&sb, report)
	writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// WriteComparison outputs two reports side by side.
func (w *SimpleWriter) WriteComparison(c *model.Comparison) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "PRIVACYPULSE COMPARISON")
	fmt.Fprintf(&sb, "%-16s %-26s %-26s\n", "", truncateString(siteText(c.A), 26), truncateString(siteText(c.B), 26))
	fmt.Fprintf(&sb, "%-16s %-26s %-26s\n", "Score:", scoreText(c.A), scoreText(c.B))
	fmt.Fprintf(&sb, "%-16s %-26s %-26s\n", "Classification:",
		classificationText(c.A.Summary), classificationText(c.B.Summary))
	fmt.Fprintf(&sb, "%-16s %-26d %-26d\n", "Trackers:", len(c.A.Summary.Trackers), len(c.B.Summary.Trackers))
	fmt.Fprintf(&sb, "%-16s %-26s %-26s\n", "Status:", statusText(c.A), statusText(c.B))
	sb.WriteString("\n")

	writeSection(&sb, "VERDICT")
	sb.WriteString("  " + verdictText(c) + "\n")
	fmt.Fprintf(&sb, "  Transparency difference: %g points\n", c.TransparencyDiff())
	if shared := c.SharedTrackers(); len(shared) > 0 {
		fmt.Fprintf(&sb, "  Shared trackers: %s\n", strings.Join(shared, ", "))
	} else {
		sb.WriteString("  Shared trackers: none\n")
	}
	sb.WriteString("\n")
	writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ScanReport) {
	fmt.Fprintf(sb, "Site:           %s\n", siteText(report))
	if report.PolicyURL != "" {
		fmt.Fprintf(sb, "Policy:         %s\n", report.PolicyURL)
	}
	fmt.Fprintf(sb, "Scan Date:      %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Mode:           %s\n", report.Mode)
	fmt.Fprintf(sb, "Status:         %s\n", statusText(report))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.ScanReport) {
	writeSection(sb, "SUMMARY")
	fmt.Fprintf(sb, "  Score:          %s (%s transparency)\n", scoreText(report), report.Band())
	fmt.Fprintf(sb, "  Classification: %s\n", classificationText(report.Summary))
	fmt.Fprintf(sb, "  Tone:           %s\n", report.Summary.Tone)
	sb.WriteString("\n")
	sb.WriteString("  " + summaryText(report.Summary) + "\n\n")
}

func (w *SimpleWriter) writeTrackers(sb *strings.Builder, trackers []model.TrackerRecord) {
	writeSection(sb, fmt.Sprintf("TRACKERS (%d)", len(trackers)))
	if len(trackers) == 0 {
		sb.WriteString("  " + noTrackersText + "\n\n")
		return
	}
	for _, t := range trackers {
		line := "  [+] " + t.Name
		if t.Domain != "" {
			line += " (" + t.Domain + ")"
		}
		if t.Category != "" {
			line += " - " + string(t.Category)
		}
		if w.verbose && t.Source != "" {
			line += " via <" + string(t.Source) + ">"
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeCookies(sb *strings.Builder, s model.ScanSummary) {
	writeSection(sb, "COOKIES")
	if len(s.Cookies) == 0 {
		sb.WriteString("  " + noCookiesText + "\n\n")
		return
	}
	for _, c := range s.Cookies {
		sb.WriteString("  * " + rawText(c) + "\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeDetails(sb *strings.Builder, report *model.ScanReport) {
	writeSection(sb, "DETAILS")
	if p := report.Page; p != nil {
		fmt.Fprintf(sb, "  Page:     %s (HTTP %d)\n", p.URL, p.StatusCode)
		if p.Title != "" {
			fmt.Fprintf(sb, "  Title:    %s\n", p.Title)
		}
		fmt.Fprintf(sb, "  Elements: %d scripts, %d iframes, %d images\n", p.Scripts, p.Iframes, p.Images)
		if len(p.Cookies) > 0 {
			fmt.Fprintf(sb, "  Cookies:  %s\n", strings.Join(p.Cookies, ", "))
		}
	}
	fmt.Fprintf(sb, "  Added locally: %d trackers\n", len(report.AddedTrackers))
	if report.Outcome != "" {
		fmt.Fprintf(sb, "  Response: %s\n", report.Outcome)
	}
	if len(report.Steps) > 0 {
		fmt.Fprintf(sb, "  Steps:    %s\n", strings.Join(report.Steps, " -> "))
	}
	fmt.Fprintf(sb, "  Duration: %s\n", report.Duration())
	for _, list := range []struct {
		name  string
		items []string
	}{
		{"Bullets", rawTexts(report.Summary.Bullets)},
		{"Highlights", rawTexts(report.Summary.Highlights)},
		{"Risks", rawTexts(report.Summary.Risks)},
	} {
		if len(list.items) == 0 {
			continue
		}
		fmt.Fprintf(sb, "  %s:\n", list.name)
		for _, item := range list.items {
			sb.WriteString("    - " + item + "\n")
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeMessages(sb *strings.Builder, report *model.ScanReport) {
	if len(report.Warnings) == 0 && len(report.Errors) == 0 {
		return
	}
	writeSection(sb, "NOTICES")
	for _, msg := range report.Warnings {
		sb.WriteString("  [!] " + msg + "\n")
	}
	for _, msg := range report.Errors {
		sb.WriteString("  [x] " + msg + "\n")
	}
	sb.WriteString("\n")
}

func writeBanner(sb *strings.Builder, heading string) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	pad := max((ruleWidth-len(heading))/2, 0)
	sb.WriteString(strings.Repeat(" ", pad) + heading + "\n")
	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n\n")
}

func writeSection(sb *strings.Builder, heading string) {
	sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	sb.WriteString(heading + "\n")
	sb.WriteString(strings.Repeat("-", ruleWidth) + "\n\n")
}

func writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	sb.WriteString("Report generated by PrivacyPulse\n")
	sb.WriteString("https://github.com/nao1215/privacypulse\n")
	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
}

// scoreText formats the score as a percentage.
func scoreText(r *model.ScanReport) string {
	return fmt.Sprintf("%g%%", r.Summary.Score)
}

// verdictText names the more transparent site.
func verdictText(c *model.Comparison) string {
	winner := c.MoreTransparent()
	if winner == nil {
		return "Both sites are equally transparent."
	}
	return siteText(winner) + " is more transparent."
}
