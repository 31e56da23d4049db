package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/nao1215/privacypulse/internal/crawler"
	"github.com/nao1215/privacypulse/internal/model"
	"github.com/nao1215/privacypulse/internal/stream"
)

type fakeFetcher struct {
	page *model.Page
	err  error
}

func (f fakeFetcher) Fetch(context.Context, string) (*model.Page, error) {
	return f.page, f.err
}

// fakeScanner records the policy URL it was asked about.
type fakeScanner struct {
	result  stream.Result
	summary model.ScanSummary
	err     error
	asked   string
}

func (f *fakeScanner) StreamScan(_ context.Context, policyURL string, obs stream.Observer) stream.Result {
	f.asked = policyURL
	if obs != nil {
		obs.OnPartial(f.result.Summary)
		obs.OnFinal(f.result)
	}
	return f.result
}

func (f *fakeScanner) Scan(_ context.Context, policyURL string) (model.ScanSummary, error) {
	f.asked = policyURL
	return f.summary, f.err
}

type fixedPolicies map[string]string

func (f fixedPolicies) PolicyURLFor(host string) string { return f[host] }

func shopPage() *model.Page {
	return &model.Page{
		URL:         "https://shop.example.com/",
		Host:        "shop.example.com",
		StatusCode:  200,
		ContentType: "text/html",
		Scripts: []model.Element{
			{Source: "https://www.googletagmanager.com/gtag/js?id=G-1"},
			{Source: "https://shop.example.com/app.js"},
		},
		Images: []model.Element{
			{Source: "https://px.hotjar.com/p.gif"},
		},
		Anchors: []model.Element{
			{Source: "https://shop.example.com/help", Text: "Help"},
			{Source: "https://shop.example.com/privacy", Text: "Privacy Notice"},
		},
	}
}

func jsonResult(trackers ...model.TrackerRecord) stream.Result {
	s := model.NewScanSummary()
	s.Summary = "Shares purchase history."
	s.Score = 48
	s.Trackers = trackers
	return stream.Result{Summary: s, Outcome: model.OutcomeJSON}
}

func TestScanPipeline_Stream(t *testing.T) {
	t.Parallel()

	scanner := &fakeScanner{result: jsonResult(model.TrackerRecord{Name: "googletagmanager", Domain: "www.googletagmanager.com"})}
	var partials, finals int
	obs := stream.ObserverFunc(func(s stream.Snapshot) {
		if s.Final {
			finals++
		} else {
			partials++
		}
	})

	p := NewScanPipeline(Options{
		Fetcher:  fakeFetcher{page: shopPage()},
		Scanner:  scanner,
		Observer: obs,
	})
	report := model.NewScanReport("https://shop.example.com/", model.ModeStream)

	if err := p.Execute(context.Background(), report); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if scanner.asked != "https://shop.example.com/privacy" {
		t.Errorf("backend asked about %q", scanner.asked)
	}
	if report.Outcome != model.OutcomeJSON || report.Failed {
		t.Errorf("Outcome = %v, Failed = %v", report.Outcome, report.Failed)
	}
	if partials != 1 || finals != 1 {
		t.Errorf("partials = %d, finals = %d", partials, finals)
	}

	// Backend record first, then the one local tracker it did not know.
	got := report.Summary.Trackers
	if len(got) != 2 {
		t.Fatalf("Trackers = %+v", got)
	}
	if got[0].Name != "googletagmanager" || got[1].Name != "px" || got[1].Domain != "px.hotjar.com" {
		t.Errorf("Trackers = %+v", got)
	}
	if len(report.AddedTrackers) != 1 || report.AddedTrackers[0].Name != "px" {
		t.Errorf("AddedTrackers = %+v", report.AddedTrackers)
	}
	if report.Page == nil || report.Page.Scripts != 2 {
		t.Errorf("Page = %+v", report.Page)
	}
}

func TestScanPipeline_StreamNetworkFailureHalts(t *testing.T) {
	t.Parallel()

	failure := stream.Result{
		Summary: model.NewErrorSummary(),
		Outcome: model.OutcomeNetworkFailure,
		Warning: stream.WarnFetchFailed,
		Err:     stream.ErrNetworkFailure,
	}
	p := NewScanPipeline(Options{
		Fetcher: fakeFetcher{page: shopPage()},
		Scanner: &fakeScanner{result: failure},
	})
	report := model.NewScanReport("https://shop.example.com/", model.ModeStream)

	err := p.Execute(context.Background(), report)
	if !errors.Is(err, stream.ErrNetworkFailure) {
		t.Fatalf("Execute = %v, want ErrNetworkFailure", err)
	}
	if !report.Failed {
		t.Error("report should be failed")
	}
	if report.Summary.Summary != model.FetchFailedText {
		t.Errorf("Summary = %q", report.Summary.Summary)
	}
	if len(report.Summary.Trackers) != 0 {
		t.Errorf("detection should not run: %+v", report.Summary.Trackers)
	}
	for _, s := range report.Steps {
		if s == StepDetectTrackers {
			t.Error("detect_trackers should not have run")
		}
	}
	if len(report.Warnings) != 1 || report.Warnings[0] != stream.WarnFetchFailed {
		t.Errorf("Warnings = %v", report.Warnings)
	}
}

func TestScanPipeline_FetchFailureKeepsBackendResult(t *testing.T) {
	t.Parallel()

	scanner := &fakeScanner{result: jsonResult()}
	p := NewScanPipeline(Options{
		Fetcher: fakeFetcher{err: errors.New("connection reset")},
		Scanner: scanner,
	})
	report := model.NewScanReport("https://shop.example.com/", model.ModeStream)

	if err := p.Execute(context.Background(), report); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if scanner.asked != "https://shop.example.com/" {
		t.Errorf("backend asked about %q, want the target", scanner.asked)
	}
	if report.Summary.Score != 48 || report.Document != nil {
		t.Errorf("report = %+v", report)
	}
	if len(report.Errors) != 1 || len(report.Steps) != 4 {
		t.Errorf("Errors = %v, Steps = %v", report.Errors, report.Steps)
	}
}

func TestScanPipeline_OneShot(t *testing.T) {
	t.Parallel()

	t.Run("backend failure still detects trackers", func(t *testing.T) {
		t.Parallel()

		scanner := &fakeScanner{
			summary: model.NewBackendFailedSummary("https://shop.example.com/privacy"),
			err:     errors.New("backend scan failed: status 500"),
		}
		p := NewScanPipeline(Options{Fetcher: fakeFetcher{page: shopPage()}, Scanner: scanner})
		report := model.NewScanReport("https://shop.example.com/", model.ModeOneShot)

		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if !report.Failed || report.Summary.Summary != model.BackendFailedText {
			t.Errorf("report = %+v", report)
		}
		if report.Summary.Classification != model.ClassificationUnknown {
			t.Errorf("Classification = %q", report.Summary.Classification)
		}
		if len(report.Summary.Trackers) != 2 {
			t.Errorf("Trackers = %+v", report.Summary.Trackers)
		}
	})

	t.Run("no policy link halts with the error summary", func(t *testing.T) {
		t.Parallel()

		page := shopPage()
		page.Anchors = []model.Element{{Source: "https://shop.example.com/help", Text: "Help"}}
		scanner := &fakeScanner{}
		p := NewScanPipeline(Options{Fetcher: fakeFetcher{page: page}, Scanner: scanner})
		report := model.NewScanReport("https://shop.example.com/", model.ModeOneShot)

		err := p.Execute(context.Background(), report)
		if !errors.Is(err, crawler.ErrNoPolicyLink) {
			t.Fatalf("Execute = %v, want ErrNoPolicyLink", err)
		}
		if scanner.asked != "" {
			t.Error("backend should not be called")
		}
		if report.Summary.Error != model.NoPolicyLinkText {
			t.Errorf("Summary = %+v", report.Summary)
		}
		if len(report.Summary.Trackers) != 0 || len(report.Summary.Cookies) != 0 {
			t.Errorf("Summary lists should be empty: %+v", report.Summary)
		}
	})
}

func TestPolicyLinkStep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		opts        []PolicyLinkOption
		page        *model.Page
		target      string
		want        string
		wantWarning bool
	}{
		{
			name:   "first policy anchor",
			page:   shopPage(),
			target: "https://shop.example.com/",
			want:   "https://shop.example.com/privacy",
		},
		{
			name:   "per-host policy wins",
			opts:   []PolicyLinkOption{WithPolicyResolver(fixedPolicies{"shop.example.com": "https://example.com/legal"})},
			page:   shopPage(),
			target: "https://shop.example.com/",
			want:   "https://example.com/legal",
		},
		{
			name:   "per-host policy without a page",
			opts:   []PolicyLinkOption{WithPolicyResolver(fixedPolicies{"shop.example.com": "https://example.com/legal"})},
			target: "shop.example.com",
			want:   "https://example.com/legal",
		},
		{
			name:   "override rewrites target without a page",
			target: "https://grok.com/c/abc123",
			want:   "https://x.ai/legal",
		},
		{
			name: "no link falls back to target in stream mode",
			page: &model.Page{
				Host:    "shop.example.com",
				Anchors: []model.Element{{Source: "https://shop.example.com/faq", Text: "FAQ"}},
			},
			target:      "https://shop.example.com/",
			want:        "https://shop.example.com/",
			wantWarning: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			report := model.NewScanReport(tt.target, model.ModeStream)
			report.Document = tt.page
			if err := NewPolicyLinkStep(tt.opts...).Do(context.Background(), report); err != nil {
				t.Fatalf("Do: %v", err)
			}
			if report.PolicyURL != tt.want {
				t.Errorf("PolicyURL = %q, want %q", report.PolicyURL, tt.want)
			}
			if got := len(report.Warnings) > 0; got != tt.wantWarning {
				t.Errorf("warnings = %v", report.Warnings)
			}
		})
	}
}

func TestBackendScanStep_Cancelled(t *testing.T) {
	t.Parallel()

	partial := model.NewScanSummary()
	partial.Summary = "Partial text"
	scanner := &fakeScanner{result: stream.Result{Summary: partial, Outcome: model.OutcomeCancelled, Err: context.Canceled}}
	report := model.NewScanReport("https://shop.example.com/", model.ModeStream)

	err := NewBackendScanStep(scanner, nil).Do(context.Background(), report)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do = %v", err)
	}
	if !report.Cancelled || report.Failed {
		t.Errorf("Cancelled = %v, Failed = %v", report.Cancelled, report.Failed)
	}
	if report.Summary.Summary != "Partial text" {
		t.Errorf("Summary = %q", report.Summary.Summary)
	}
	if IsHalt(err) {
		t.Error("cancellation is not a halt")
	}
}

func TestBackendScanStep_DegradedWarning(t *testing.T) {
	t.Parallel()

	s := model.NewScanSummary()
	s.Summary = "cut off"
	scanner := &fakeScanner{result: stream.Result{Summary: s, Outcome: model.OutcomeMalformed, Warning: stream.WarnMalformed}}
	report := model.NewScanReport("https://shop.example.com/", model.ModeStream)

	if err := NewBackendScanStep(scanner, nil).Do(context.Background(), report); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if report.Outcome != model.OutcomeMalformed || len(report.Warnings) != 1 {
		t.Errorf("Outcome = %v, Warnings = %v", report.Outcome, report.Warnings)
	}
}

func TestFetchPageStep_EmptyTarget(t *testing.T) {
	t.Parallel()

	report := model.NewScanReport(" ", model.ModeStream)
	if err := NewFetchPageStep(fakeFetcher{page: shopPage()}).Do(context.Background(), report); !errors.Is(err, ErrEmptyTarget) {
		t.Errorf("Do = %v, want ErrEmptyTarget", err)
	}
}
