package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/privacypulse/internal/model"
)

// Step is one stage of a scan.
type Step interface {
	// Do runs the step against report. Failures that should not stop the
	// scan are returned as plain errors and recorded by the pipeline;
	// failures that should stop it are wrapped with Halt.
	Do(ctx context.Context, report *model.ScanReport) error

	// Name returns the step's name for logs and reports.
	Name() string
}

// Pipeline runs steps in order.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New returns an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps in order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against report and stamps its finish time.
//
// A step error is recorded on the report and the next step runs. Execution
// stops early, returning the error, when a step halts the pipeline or ctx
// is done; in the latter case the report is marked cancelled.
func (p *Pipeline) Execute(ctx context.Context, report *model.ScanReport) error {
	defer report.Finish()

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled", "step", step.Name(), "reason", err)
			report.Cancelled = true
			return err
		}

		p.logger.Debug("executing step", "step", step.Name(), "target", report.Target)
		err := step.Do(ctx, report)
		report.Steps = append(report.Steps, step.Name())
		if err == nil {
			p.logger.Debug("step completed", "step", step.Name(), "target", report.Target)
			continue
		}

		report.AddError(step.Name(), err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			report.Cancelled = true
			return ctxErr
		}
		if IsHalt(err) {
			p.logger.Warn("step halted scan", "step", step.Name(), "target", report.Target, "error", err)
			return stepError(step.Name(), err)
		}
		p.logger.Warn("step failed", "step", step.Name(), "target", report.Target, "error", err)
	}
	return nil
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
