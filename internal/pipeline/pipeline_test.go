package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/nao1215/privacypulse/internal/model"
)

// mockStep is a Step driven by doFunc.
type mockStep struct {
	name   string
	doFunc func(ctx context.Context, report *model.ScanReport) error
}

func (m *mockStep) Name() string { return m.name }

func (m *mockStep) Do(ctx context.Context, report *model.ScanReport) error {
	if m.doFunc == nil {
		return nil
	}
	return m.doFunc(ctx, report)
}

func TestPipeline_Execute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		record := func(name string) *mockStep {
			return &mockStep{name: name, doFunc: func(context.Context, *model.ScanReport) error {
				order = append(order, name)
				return nil
			}}
		}

		p := New()
		p.AddSteps(record("a"), record("b"), record("c"))
		report := model.NewScanReport("https://example.com", model.ModeStream)

		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if len(order) != 3 || order[0] != "a" || order[2] != "c" {
			t.Errorf("order = %v", order)
		}
		if len(report.Steps) != 3 {
			t.Errorf("Steps = %v", report.Steps)
		}
		if report.FinishedAt.IsZero() {
			t.Error("report should be finished")
		}
	})

	t.Run("plain errors are recorded and execution continues", func(t *testing.T) {
		t.Parallel()

		ran := false
		p := New()
		p.AddStep(&mockStep{name: "flaky", doFunc: func(context.Context, *model.ScanReport) error {
			return errors.New("page unavailable")
		}})
		p.AddStep(&mockStep{name: "after", doFunc: func(context.Context, *model.ScanReport) error {
			ran = true
			return nil
		}})
		report := model.NewScanReport("https://example.com", model.ModeStream)

		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if !ran {
			t.Error("step after a plain failure should run")
		}
		if len(report.Errors) != 1 || report.Errors[0] != "flaky: page unavailable" {
			t.Errorf("Errors = %v", report.Errors)
		}
	})

	t.Run("halt stops execution", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("backend unreachable")
		ran := false
		p := New()
		p.AddStep(&mockStep{name: "backend", doFunc: func(context.Context, *model.ScanReport) error {
			return Halt(cause)
		}})
		p.AddStep(&mockStep{name: "after", doFunc: func(context.Context, *model.ScanReport) error {
			ran = true
			return nil
		}})
		report := model.NewScanReport("https://example.com", model.ModeStream)

		err := p.Execute(context.Background(), report)
		if !errors.Is(err, cause) {
			t.Fatalf("Execute = %v, want %v", err, cause)
		}
		if ran {
			t.Error("step after a halt should not run")
		}
		if len(report.Errors) != 1 || report.Errors[0] != "backend: backend unreachable" {
			t.Errorf("Errors = %v", report.Errors)
		}
	})

	t.Run("cancellation between steps", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		ran := false
		p := New()
		p.AddStep(&mockStep{name: "cancel", doFunc: func(context.Context, *model.ScanReport) error {
			cancel()
			return nil
		}})
		p.AddStep(&mockStep{name: "after", doFunc: func(context.Context, *model.ScanReport) error {
			ran = true
			return nil
		}})
		report := model.NewScanReport("https://example.com", model.ModeStream)

		if err := p.Execute(ctx, report); !errors.Is(err, context.Canceled) {
			t.Fatalf("Execute = %v, want context.Canceled", err)
		}
		if ran || !report.Cancelled {
			t.Errorf("ran = %v, Cancelled = %v", ran, report.Cancelled)
		}
	})
}

func TestPipeline_StepNames(t *testing.T) {
	t.Parallel()

	p := NewScanPipeline(Options{})
	want := []string{StepFetchPage, StepPolicyLink, StepBackendScan, StepDetectTrackers}
	got := p.StepNames()
	if p.StepCount() != len(want) {
		t.Fatalf("StepCount = %d", p.StepCount())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("StepNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHalt(t *testing.T) {
	t.Parallel()

	if Halt(nil) != nil {
		t.Error("Halt(nil) should be nil")
	}
	cause := errors.New("x")
	err := Halt(cause)
	if !IsHalt(err) || !errors.Is(err, cause) || err.Error() != "x" {
		t.Errorf("Halt(%v) = %v", cause, err)
	}
	if IsHalt(cause) {
		t.Error("plain error should not halt")
	}
}
