package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/privacypulse/internal/config"
	"github.com/nao1215/privacypulse/internal/database"
	"github.com/nao1215/privacypulse/internal/model"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "List past scans",
		Long: `History lists scans saved in the local database, newest first.

With a URL only that site's scans are listed. Use --show to print a stored
report in full, or --remote to list the scan backend's recent scans with
its dashboard figures (average score, cookies, trackers, high-risk sites).

Examples:
  # List the 20 most recent scans
  privacypulse history

  # List the scans of one site
  privacypulse history https://shop.example.com

  # Print a stored report as Markdown
  privacypulse history --show 2f1c... --markdown

  # List the backend's 50 most recent scans
  privacypulse history --remote --limit 50`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit, "Maximum number of scans to list")
	cmd.Flags().BoolP("remote", "r", false, "List the scan backend's history")
	cmd.Flags().String("show", "", "Print the stored report with this ID")
	cmd.MarkFlagsMutuallyExclusive("remote", "show")
	addOutputFlags(cmd)

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := readOutputFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	remote, err := cmd.Flags().GetBool("remote")
	if err != nil {
		return err
	}
	showID, err := cmd.Flags().GetString("show")
	if err != nil {
		return err
	}

	if remote {
		return listRemoteHistory(cmd, cfg, limit)
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	if db == nil {
		return errDatabaseDisabled
	}
	defer db.Close()

	if showID != "" {
		return showStoredReport(cmd, cfg, db, showID)
	}

	target := ""
	if len(args) == 1 {
		target = args[0]
	}
	return listLocalHistory(cmd, db, target, limit)
}

// listLocalHistory prints stored report metadata.
func listLocalHistory(cmd *cobra.Command, db *database.DB, target string, limit int) error {
	reports, err := db.ListScanReports(cmd.Context(), target, limit)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(reports) == 0 {
		if target != "" {
			fmt.Fprintf(out, "No scan history found for %s\n", target)
		} else {
			fmt.Fprintln(out, "No scan history found.")
		}
		fmt.Fprintln(out, "\nUse 'privacypulse scan <url>' to scan a site.")
		return nil
	}

	fmt.Fprintf(out, "Scan history (%d scans):\n\n", len(reports))
	fmt.Fprintf(out, "  %-36s  %-19s  %-6s  %-8s  %s\n", "ID", "Date", "Score", "Trackers", "Site")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 100))
	for _, meta := range reports {
		score := fmt.Sprintf("%g", meta.Score)
		if meta.Failed {
			score = "failed"
		}
		fmt.Fprintf(out, "  %-36s  %-19s  %-6s  %-8d  %s\n",
			meta.ID,
			meta.Timestamp.Local().Format("2006-01-02 15:04:05"),
			score,
			meta.TrackerCount,
			meta.Target,
		)
	}
	fmt.Fprintln(out, "\nUse 'privacypulse history --show <id>' to print a stored report.")
	return nil
}

// showStoredReport prints one stored report in the configured format.
func showStoredReport(cmd *cobra.Command, cfg *config.Config, db *database.DB, id string) error {
	r, err := db.GetScanReportByID(cmd.Context(), id)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("%w with ID %s", errNoStoredReport, id)
	}

	out, closeOut, err := openOutput(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeOut() //nolint:errcheck // best effort on exit

	_, err = newFormatWriter(out, cfg).Write(r)
	return err
}

// listRemoteHistory prints the backend's recent scans and their dashboard
// figures in the configured format.
func listRemoteHistory(cmd *cobra.Command, cfg *config.Config, limit int) error {
	logger := setupLogger(cfg.Verbose)
	sess, err := newSession(cmd.Context(), cfg, logger, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer sess.Close()

	summaries, err := sess.api.History(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeOut() //nolint:errcheck // best effort on exit

	_, err = newFormatWriter(out, cfg).WriteHistory(model.NewHistory(summaries))
	return err
}
