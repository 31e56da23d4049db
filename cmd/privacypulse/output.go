package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/privacypulse/internal/config"
	"github.com/nao1215/privacypulse/internal/model"
	"github.com/nao1215/privacypulse/internal/report"
	"github.com/nao1215/privacypulse/internal/stream"
)

// formatWriter writes every document the CLI prints.
type formatWriter interface {
	report.Writer
	report.ComparisonWriter
	report.HistoryWriter
	report.AwarenessWriter
}

// addOutputFlags registers the report format flags shared by scan and
// compare.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// readOutputFlags copies the report format flags into cfg.
func readOutputFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}
	return nil
}

// openOutput returns the report destination: the report file when one is
// configured, stdout otherwise. The returned close function is never nil.
func openOutput(cmd *cobra.Command, cfg *config.Config) (io.Writer, func() error, error) {
	if cfg.ReportFile == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports may name cookies and internal URLs.
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// newFormatWriter returns the writer for the configured format.
func newFormatWriter(out io.Writer, cfg *config.Config) formatWriter {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(out, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}
}

// progressObserver shows how much of a streamed summary has arrived.
type progressObserver struct {
	w       io.Writer
	started bool
}

// OnPartial implements stream.Observer.
func (p *progressObserver) OnPartial(partial model.ScanSummary) {
	p.started = true
	fmt.Fprintf(p.w, "\rReceiving summary... %d characters", len([]rune(partial.Summary)))
}

// OnFinal implements stream.Observer.
func (p *progressObserver) OnFinal(result stream.Result) {
	if p.started {
		fmt.Fprintln(p.w)
	}
	if result.Warning != "" {
		fmt.Fprintf(p.w, "Warning: %s\n", result.Warning)
	}
}

// describeSummary renders the stored result object for "last".
func describeSummary(w io.Writer, s *model.ScanSummary) {
	site := s.URL
	if site == "" {
		site = "Unknown"
	}
	summary := s.Summary
	if summary == "" {
		summary = "No summary"
	}

	fmt.Fprintf(w, "Site:     %s\n", site)
	if s.Error != "" {
		fmt.Fprintf(w, "Error:    %s\n", s.Error)
	}
	fmt.Fprintf(w, "Score:    %g (%s transparency)\n", s.Score, model.BandForScore(s.Score))
	fmt.Fprintf(w, "Summary:  %s\n", summary)

	if len(s.Trackers) == 0 {
		fmt.Fprintln(w, "Trackers: No trackers found")
		return
	}
	names := make([]string, len(s.Trackers))
	for i, t := range s.Trackers {
		names[i] = t.Name
	}
	fmt.Fprintf(w, "Trackers: %s\n", strings.Join(names, ", "))
}
