package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/privacypulse/internal/config"
	"github.com/nao1215/privacypulse/internal/database"
	"github.com/nao1215/privacypulse/internal/model"
	"github.com/nao1215/privacypulse/internal/pipeline"
)

// errNoStoredReport is returned by compare --stored when a site has never
// been scanned.
var errNoStoredReport = errors.New("no stored scan found")

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <urlA> <urlB>",
		Short: "Compare the privacy of two sites",
		Long: `Compare scans two sites in parallel and shows them side by side:
- Transparency scores and the difference between them
- Tracker counts and the trackers both sites share
- Which site is more transparent

With --stored, the latest scans saved in the local database are compared
instead and no network access is needed.

Examples:
  # Compare two sites
  privacypulse compare https://shop.example.com https://news.example.org

  # Compare the last saved scans of two sites
  privacypulse compare --stored https://shop.example.com https://news.example.org

  # Output the comparison as JSON
  privacypulse compare --json example.com example.org`,
		Args: cobra.ExactArgs(2),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("stored", "s", false, "Compare the latest stored scans instead of scanning")
	cmd.Flags().Bool("one-shot", false, "Wait for the complete backend answers")
	addOutputFlags(cmd)

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := readOutputFlags(cmd, cfg); err != nil {
		return err
	}
	if cfg.OneShot, err = cmd.Flags().GetBool("one-shot"); err != nil {
		return err
	}
	stored, err := cmd.Flags().GetBool("stored")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	var comparison *model.Comparison
	if stored {
		comparison, err = storedComparison(ctx, db, args[0], args[1])
	} else {
		comparison, err = liveComparison(ctx, cmd, cfg, db, logger)
	}
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeOut() //nolint:errcheck // best effort on exit

	_, err = newFormatWriter(out, cfg).WriteComparison(comparison)
	return err
}

// liveComparison scans both targets concurrently and saves both reports to
// the history.
func liveComparison(ctx context.Context, cmd *cobra.Command, cfg *config.Config, db *database.DB, logger *slog.Logger) (*model.Comparison, error) {
	sess, err := newSession(ctx, cfg, logger, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	fmt.Fprintf(cmd.ErrOrStderr(), "Comparing %s and %s...\n\n", cfg.Targets[0], cfg.Targets[1])

	bp := pipeline.NewBatchProcessor(
		func(int) *pipeline.Pipeline { return sess.newPipeline(nil) },
		pipeline.WithConcurrency(2),
		pipeline.WithMode(sess.mode()),
		pipeline.WithBatchLogger(logger),
	)
	reports, err := bp.ProcessBatch(ctx, cfg.Targets)
	if err != nil {
		return nil, err
	}

	if db != nil {
		for _, r := range reports {
			if err := db.SaveScanReport(context.WithoutCancel(ctx), r); err != nil {
				logger.Error("failed to save scan report", "target", r.Target, "error", err)
			}
		}
	}
	return model.NewComparison(reports[0], reports[1]), nil
}

// storedComparison pairs the latest stored reports of both targets.
func storedComparison(ctx context.Context, db *database.DB, a, b string) (*model.Comparison, error) {
	if db == nil {
		return nil, errDatabaseDisabled
	}
	ra, err := latestReport(ctx, db, a)
	if err != nil {
		return nil, err
	}
	rb, err := latestReport(ctx, db, b)
	if err != nil {
		return nil, err
	}
	return model.NewComparison(ra, rb), nil
}

func latestReport(ctx context.Context, db *database.DB, target string) (*model.ScanReport, error) {
	r, err := db.GetLatestScanReport(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	if r == nil {
		return nil, fmt.Errorf("%w for %s (use 'privacypulse scan %s' first)", errNoStoredReport, target, target)
	}
	return r, nil
}
