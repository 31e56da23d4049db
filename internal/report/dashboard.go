package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/nao1215/privacypulse/internal/model"
)

// HistoryWriter writes the backend's scan history.
type HistoryWriter interface {
	// WriteHistory outputs the history and returns the number of bytes
	// written.
	WriteHistory(h *model.History) (int, error)
}

// AwarenessWriter writes privacy education content.
type AwarenessWriter interface {
	// WriteAwareness outputs the content and returns the number of bytes
	// written.
	WriteAwareness(a *model.Awareness) (int, error)
}

const emptyHistoryText = "The scan backend has no history."

// WriteHistory outputs the dashboard figures followed by one line per scan.
func (w *SimpleWriter) WriteHistory(h *model.History) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "PRIVACYPULSE DASHBOARD")
	if len(h.Entries) == 0 {
		sb.WriteString("  " + emptyHistoryText + "\n\n")
		writeFooter(&sb)
		return io.WriteString(w.output, sb.String())
	}

	writeSection(&sb, "OVERVIEW")
	for _, row := range statsRows(h.Stats) {
		fmt.Fprintf(&sb, "  %-22s %s\n", row[0]+":", row[1])
	}
	sb.WriteString("\n")

	writeSection(&sb, fmt.Sprintf("SCANS (%d)", len(h.Entries)))
	fmt.Fprintf(&sb, "  %-6s  %-16s  %s\n", "Score", "Classification", "Site")
	for _, s := range h.Entries {
		fmt.Fprintf(&sb, "  %-6g  %-16s  %s\n", s.Score,
			truncateString(classificationText(s), 16), summarySite(s))
	}
	sb.WriteString("\n")
	writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// WriteAwareness outputs the tip, the quiz with answers and the leaderboard.
func (w *SimpleWriter) WriteAwareness(a *model.Awareness) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "PRIVACY AWARENESS")
	writeSection(&sb, "TIP OF THE DAY")
	sb.WriteString("  " + dash(sanitize(a.Tip)) + "\n\n")

	if len(a.Quiz) > 0 {
		writeSection(&sb, "QUIZ")
		for i, q := range a.Quiz {
			fmt.Fprintf(&sb, "  %d. %s\n     Answer: %s\n", i+1, sanitize(q.Question), sanitize(q.Answer))
		}
		sb.WriteString("\n")
	}
	if len(a.Leaderboard) > 0 {
		writeSection(&sb, "LEADERBOARD")
		for i, e := range a.Leaderboard {
			fmt.Fprintf(&sb, "  %d. %-20s %g\n", i+1, truncateString(sanitize(e.Name), 20), e.Score)
		}
		sb.WriteString("\n")
	}
	writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// WriteHistory outputs the history and its statistics in JSON format.
func (w *JSONWriter) WriteHistory(h *model.History) (int, error) {
	return w.writeJSON(h)
}

// WriteAwareness outputs the content in JSON format.
func (w *JSONWriter) WriteAwareness(a *model.Awareness) (int, error) {
	return w.writeJSON(a)
}

// WriteHistory outputs the dashboard figures and a table of scans.
func (w *MarkdownWriter) WriteHistory(h *model.History) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("PrivacyPulse Dashboard")
	md.PlainText("")
	if len(h.Entries) == 0 {
		md.Note(emptyHistoryText)
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	md.H2("Overview")
	md.PlainText("")
	md.Table(markdown.TableSet{Header: []string{"Metric", "Value"}, Rows: statsRows(h.Stats)})
	md.PlainText("")

	md.H2(fmt.Sprintf("Scans (%d)", len(h.Entries)))
	md.PlainText("")
	rows := make([][]string, 0, len(h.Entries))
	for _, s := range h.Entries {
		rows = append(rows, []string{
			cell(summarySite(s)),
			fmt.Sprintf("%g", s.Score),
			cell(classificationText(s)),
			strconv.Itoa(len(s.Trackers)),
			strconv.Itoa(len(s.Cookies)),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Site", "Score", "Classification", "Trackers", "Cookies"},
		Rows:   rows,
	})
	md.PlainText("")
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteAwareness outputs the content in Markdown format.
func (w *MarkdownWriter) WriteAwareness(a *model.Awareness) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Privacy Awareness")
	md.PlainText("")
	md.Tip(dash(sanitize(a.Tip)))
	md.PlainText("")

	if len(a.Quiz) > 0 {
		md.H2("Quiz")
		md.PlainText("")
		rows := make([][]string, 0, len(a.Quiz))
		for _, q := range a.Quiz {
			rows = append(rows, []string{cell(q.Question), cell(q.Answer)})
		}
		md.Table(markdown.TableSet{Header: []string{"Question", "Answer"}, Rows: rows})
		md.PlainText("")
	}
	if len(a.Leaderboard) > 0 {
		md.H2("Leaderboard")
		md.PlainText("")
		rows := make([][]string, 0, len(a.Leaderboard))
		for i, e := range a.Leaderboard {
			rows = append(rows, []string{strconv.Itoa(i + 1), cell(e.Name), fmt.Sprintf("%g", e.Score)})
		}
		md.Table(markdown.TableSet{Header: []string{"Rank", "Name", "Score"}, Rows: rows})
		md.PlainText("")
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func statsRows(s model.HistoryStats) [][]string {
	return [][]string{
		{"Websites analyzed", strconv.Itoa(s.WebsitesAnalyzed)},
		{"Average score", fmt.Sprintf("%g%%", s.AverageScore)},
		{"Data shared", fmt.Sprintf("%g%%", s.DataShared())},
		{"Total cookies", strconv.Itoa(s.TotalCookies)},
		{"Sites with cookies", strconv.Itoa(s.SitesWithCookies)},
		{"Sites with trackers", strconv.Itoa(s.SitesWithTrackers)},
		{"High risk sites", strconv.Itoa(s.HighRiskSites)},
		{"Safe sites", strconv.Itoa(s.SafeSites)},
		{"Unsafe sites", strconv.Itoa(s.UnsafeSites)},
	}
}

func summarySite(s model.ScanSummary) string {
	if s.URL == "" {
		return unknownText
	}
	return s.URL
}
