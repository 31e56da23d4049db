package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/privacypulse/internal/model"
)

// MarkdownWriter outputs reports in GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeTrackers(md, report.Summary.Trackers)
	w.writeLists(md, report.Summary)
	w.writeNotices(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteComparison outputs the comparison in Markdown format.
func (w *MarkdownWriter) WriteComparison(c *model.Comparison) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("PrivacyPulse Comparison")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", cell(siteText(c.A)), cell(siteText(c.B))},
		Rows: [][]string{
			{"Score", scoreText(c.A), scoreText(c.B)},
			{"Transparency", title(c.A.Band().String()), title(c.B.Band().String())},
			{"Classification", cell(classificationText(c.A.Summary)), cell(classificationText(c.B.Summary))},
			{"Trackers", strconv.Itoa(len(c.A.Summary.Trackers)), strconv.Itoa(len(c.B.Summary.Trackers))},
			{"Status", statusText(c.A), statusText(c.B)},
		},
	})
	md.PlainText("")

	md.H2("Verdict")
	md.PlainText("")
	if winner := c.MoreTransparent(); winner != nil {
		md.Tip(sanitize(siteText(winner)) + fmt.Sprintf(" is more transparent by %g points.", c.TransparencyDiff()))
	} else {
		md.Note("Both sites are equally transparent.")
	}
	md.PlainText("")

	md.H2("Shared Trackers")
	md.PlainText("")
	if shared := c.SharedTrackers(); len(shared) > 0 {
		md.BulletList(sanitizeAll(shared)...)
	} else {
		md.PlainText("No trackers in common.")
	}
	md.PlainText("")
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	md.H1("PrivacyPulse Report")
	md.PlainText("")

	rows := [][]string{
		{"Site", "`" + cell(siteText(report)) + "`"},
	}
	if report.PolicyURL != "" {
		rows = append(rows, []string{"Privacy Policy", "`" + cell(report.PolicyURL) + "`"})
	}
	rows = append(rows,
		[]string{"Scan Date", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
		[]string{"Mode", string(report.Mode)},
		[]string{"Status", statusText(report)},
	)
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.ScanReport) {
	s := report.Summary

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Score", "Transparency", "Classification", "Tone"},
		Rows: [][]string{{
			scoreText(report),
			title(report.Band().String()),
			cell(classificationText(s)),
			cell(title(s.Tone)),
		}},
	})
	md.PlainText("")
	w.writeAlert(md, report)
	md.PlainText(sanitize(summaryText(s)))
	md.PlainText("")
}

// writeAlert picks an alert by the score band.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.ScanReport) {
	score := report.Summary.Score
	switch {
	case report.Summary.Error != "":
		md.Cautionf("The scan could not run: %s.", sanitize(report.Summary.Error))
	case report.Failed:
		md.Warningf("The scan backend was unavailable. Only %d locally detected tracker(s) are shown.",
			len(report.Summary.Trackers))
	case report.Band() == model.BandLow:
		md.Cautionf("Low transparency (score %g). This policy discloses little about how data is used.", score)
	case report.Band() == model.BandMedium:
		md.Importantf("Medium transparency (score %g). Review the highlighted risks.", score)
	default:
		md.Tip(fmt.Sprintf("High transparency (score %g).", score))
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeTrackers(md *markdown.Markdown, trackers []model.TrackerRecord) {
	md.H2(fmt.Sprintf("Trackers (%d)", len(trackers)))
	md.PlainText("")
	if len(trackers) == 0 {
		md.PlainText(noTrackersText + ".")
		md.PlainText("")
		return
	}

	w.writePieChart(md, trackers)

	rows := make([][]string, len(trackers))
	for i, t := range trackers {
		rows[i] = []string{
			cell(t.Name),
			dash(cell(t.Domain)),
			dash(string(t.Category)),
			dash(string(t.Source)),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Name", "Domain", "Category", "Element"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of tracker categories.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, trackers []model.TrackerRecord) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Trackers by Category"),
		piechart.WithShowData(true),
	)
	order, counts := categoryCounts(trackers)
	for _, c := range order {
		chart.LabelAndIntValue(string(c), uint64(counts[c]))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeLists writes the backend's cookie, bullet, highlight and risk lists.
func (w *MarkdownWriter) writeLists(md *markdown.Markdown, s model.ScanSummary) {
	md.H2("Cookies")
	md.PlainText("")
	if len(s.Cookies) == 0 {
		md.PlainText(noCookiesText + ".")
	} else {
		md.BulletList(sanitizeAll(rawTexts(s.Cookies))...)
	}
	md.PlainText("")

	for _, section := range []struct {
		heading string
		items   []string
	}{
		{"Key Points", rawTexts(s.Bullets)},
		{"Highlights", rawTexts(s.Highlights)},
		{"Risks", rawTexts(s.Risks)},
	} {
		if len(section.items) == 0 {
			continue
		}
		md.H2(section.heading)
		md.PlainText("")
		md.BulletList(sanitizeAll(section.items)...)
		md.PlainText("")
	}

	if len(s.Policy) > 0 {
		md.Details("Policy sections", strings.Join(sanitizeAll(rawTexts(s.Policy)), "\n\n"))
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeNotices(md *markdown.Markdown, report *model.ScanReport) {
	if len(report.Warnings) == 0 && len(report.Errors) == 0 {
		return
	}
	md.H2("Notices")
	md.PlainText("")
	items := make([]string, 0, len(report.Warnings)+len(report.Errors))
	for _, msg := range report.Warnings {
		items = append(items, "Warning: "+sanitize(msg))
	}
	for _, msg := range report.Errors {
		items = append(items, "Error: "+sanitize(msg))
	}
	md.BulletList(items...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [PrivacyPulse](https://github.com/nao1215/privacypulse)*")
}

// cell sanitizes s for use inside a table cell.
func cell(s string) string {
	return strings.ReplaceAll(sanitize(s), "|", `\|`)
}

func sanitizeAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = sanitize(s)
	}
	return out
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
