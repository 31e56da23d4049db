package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/privacypulse/internal/database"
	"github.com/nao1215/privacypulse/internal/report"
)

// noScanText is shown when no result has been stored yet.
const noScanText = "No scan performed yet."

// errDatabaseDisabled is returned by commands that need the database when
// dbDir is empty.
var errDatabaseDisabled = errors.New("the database is disabled (dbDir is empty)")

// NewLastCmd creates the last command.
func NewLastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "last",
		Short: "Show the result of the last scan",
		Long: `Last prints the result object stored by the most recent scan: site,
transparency score, summary and trackers.

Examples:
  # Show the last result
  privacypulse last

  # Print the stored result object as JSON
  privacypulse last --json`,
		Args: cobra.NoArgs,
		RunE: runLastCmd,
	}
	cmd.Flags().BoolP("json", "j", false, "Print the stored result object as JSON")
	return cmd
}

// runLastCmd executes the last command.
func runLastCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	if db == nil {
		return errDatabaseDisabled
	}
	defer db.Close()

	var repo database.Repository = db
	summary, err := repo.Load(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if summary == nil {
		fmt.Fprintln(out, noScanText)
		return nil
	}
	if jsonOutput {
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).WriteSummary(summary)
		return err
	}
	describeSummary(out, summary)
	return nil
}
