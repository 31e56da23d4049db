package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/privacypulse/internal/model"
)

// DefaultConcurrency is the number of scans a BatchProcessor runs at once.
const DefaultConcurrency = 4

// Factory builds a fresh pipeline for the scan at index i. Pipelines are
// never shared between scans.
type Factory func(i int) *Pipeline

// BatchProcessor runs one pipeline per target concurrently.
type BatchProcessor struct {
	factory     Factory
	mode        model.ScanMode
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the processor's logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency limits the number of concurrent scans. Values below 1
// are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithMode sets the scan mode of every report.
func WithMode(mode model.ScanMode) BatchOption {
	return func(b *BatchProcessor) {
		b.mode = mode
	}
}

// NewBatchProcessor returns a BatchProcessor using factory.
func NewBatchProcessor(factory Factory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		factory:     factory,
		mode:        model.ModeStream,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch scans every target and returns the reports in target order.
// A failed scan does not affect the others; its failure is on its report.
// The returned error is ctx's error when the batch was interrupted.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*model.ScanReport, error) {
	return bp.process(ctx, targets, nil)
}

// ProcessBatchWithCallback is ProcessBatch with callback invoked as each
// scan finishes. callback may run on several goroutines at once.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []string,
	callback func(report *model.ScanReport, index int),
) ([]*model.ScanReport, error) {
	return bp.process(ctx, targets, callback)
}

func (bp *BatchProcessor) process(
	ctx context.Context,
	targets []string,
	callback func(report *model.ScanReport, index int),
) ([]*model.ScanReport, error) {
	bp.logger.Debug("starting batch", "targets", len(targets), "concurrency", bp.concurrency)
	start := time.Now()

	// Each goroutine writes only its own index.
	results := make([]*model.ScanReport, len(targets))

	var g errgroup.Group
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		report := model.NewScanReport(target, bp.mode)
		results[i] = report

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				report.Cancelled = true
				report.Finish()
				return nil
			}

			if err := bp.factory(i).Execute(ctx, report); err != nil {
				bp.logger.Warn("scan ended early", "target", target, "error", err)
			}
			if callback != nil {
				callback(report, i)
			}
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	bp.logger.Debug("batch complete", "targets", len(targets), "elapsed", time.Since(start))
	return results, ctx.Err()
}
