package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/privacypulse/internal/config"
	"github.com/nao1215/privacypulse/internal/database"
	"github.com/nao1215/privacypulse/internal/model"
	"github.com/nao1215/privacypulse/internal/pipeline"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url...]",
		Short: "Audit web pages for privacy risks",
		Long: `Scan audits one or more web pages.

For each page it:
- Fetches the page and finds its privacy policy link
- Sends the policy to the scan backend for a transparency score and summary
- Detects third-party scripts, iframes and tracking pixels

By default the backend answer is streamed and shown as it arrives. Use
--one-shot to wait for the complete answer instead, the way the browser
extension does.

Examples:
  # Scan a single page
  privacypulse scan https://www.example.com

  # Scan several pages, four at a time
  privacypulse scan --batch 4 example.com example.org example.net

  # Output a Markdown report to a file
  privacypulse scan --markdown -o report.md https://www.example.com

  # Scan through a local Tor proxy
  privacypulse scan --proxy 127.0.0.1:9050 https://www.example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	cmd.Flags().Bool("stream", true, "Stream the backend answer (default)")
	cmd.Flags().Bool("one-shot", false, "Wait for the complete backend answer")
	cmd.MarkFlagsMutuallyExclusive("stream", "one-shot")

	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of concurrent scans")
	addOutputFlags(cmd)

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := readScanFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := cfg.ValidateTargets(); err != nil {
		return err
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScan(ctx, cmd, cfg, logger)
}

// readScanFlags copies the scan command's own flags into cfg.
func readScanFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	if cfg.OneShot, err = cmd.Flags().GetBool("one-shot"); err != nil {
		return err
	}
	if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
		return err
	}
	return readOutputFlags(cmd, cfg)
}

// runScan scans every target and writes one report per target.
func runScan(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"targets", len(cfg.Targets),
		"oneShot", cfg.OneShot,
		"batchSize", cfg.BatchSize,
	)

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	sess, err := newSession(ctx, cfg, logger, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer sess.Close()

	out, closeOut, err := openOutput(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeOut() //nolint:errcheck // best effort on exit
	w := newFormatWriter(out, cfg)

	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		return runBatchScan(ctx, cmd, sess, db, w)
	}
	return runSequentialScan(ctx, cmd, sess, db, w)
}

// runSequentialScan scans targets one at a time, showing streamed progress.
func runSequentialScan(ctx context.Context, cmd *cobra.Command, sess *session, db *database.DB, w formatWriter) error {
	status := cmd.ErrOrStderr()
	for _, target := range sess.cfg.Targets {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintf(status, "Scanning %s...\n", target)
		start := time.Now()

		report := model.NewScanReport(target, sess.mode())
		p := sess.newPipeline(&progressObserver{w: status})
		if err := p.Execute(ctx, report); err != nil {
			sess.logger.Warn("scan stopped early", "target", target, "error", err)
			fmt.Fprintf(status, "Scan error for %s: %v\n", target, err)
		}
		fmt.Fprintf(status, "Scan completed in %s\n\n", time.Since(start).Round(time.Millisecond))

		finishScan(ctx, sess.logger, db, w, report)
		if report.Cancelled {
			return context.Cause(ctx)
		}
	}
	return nil
}

// runBatchScan scans targets concurrently and writes reports as they
// finish.
func runBatchScan(ctx context.Context, cmd *cobra.Command, sess *session, db *database.DB, w formatWriter) error {
	status := cmd.ErrOrStderr()
	targets := sess.cfg.Targets
	fmt.Fprintf(status, "Starting batch scan of %d targets (concurrency: %d)...\n\n",
		len(targets), sess.cfg.BatchSize)
	start := time.Now()

	bp := pipeline.NewBatchProcessor(
		func(int) *pipeline.Pipeline { return sess.newPipeline(nil) },
		pipeline.WithConcurrency(sess.cfg.BatchSize),
		pipeline.WithMode(sess.mode()),
		pipeline.WithBatchLogger(sess.logger),
	)

	var mu sync.Mutex
	_, err := bp.ProcessBatchWithCallback(ctx, targets, func(report *model.ScanReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintf(status, "[%d/%d] Scan completed: %s\n", index+1, len(targets), report.Target)
		finishScan(ctx, sess.logger, db, w, report)
	})

	fmt.Fprintf(status, "\nBatch scan completed in %s\n", time.Since(start).Round(time.Millisecond))
	return err
}

// finishScan writes the report and persists it. Cancelled scans are
// written but not saved.
func finishScan(ctx context.Context, logger *slog.Logger, db *database.DB, w formatWriter, report *model.ScanReport) {
	if _, err := w.Write(report); err != nil {
		logger.Error("report failed", "target", report.Target, "error", err)
	}
	if report.Cancelled {
		return
	}
	// The scan may have been interrupted after it finished.
	if err := saveScanReport(context.WithoutCancel(ctx), db, report, logger); err != nil {
		logger.Error("failed to save scan report", "target", report.Target, "error", err)
	}
}

// saveScanReport stores the result object as the last scan and adds the
// report to the history. If db is nil, this function is a no-op.
func saveScanReport(ctx context.Context, db *database.DB, report *model.ScanReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}
	var repo database.Repository = db
	if err := repo.Save(ctx, report.Summary); err != nil {
		return err
	}
	if err := db.SaveScanReport(ctx, report); err != nil {
		return err
	}
	logger.Info("scan report saved to database", "target", report.Target, "id", report.ID)
	return nil
}
